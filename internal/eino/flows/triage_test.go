package flows

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/eino/callbacks"
	"pharma-triage/internal/eino/config"
	"pharma-triage/internal/eino/nodes"
	"pharma-triage/pkg/logger"
)

// fakeClassifier 可配置的分类服务
type fakeClassifier struct {
	label      models.Label
	proba      []float64
	supported  bool
	predictErr error
	panicMsg   string
	classes    []string
	calls      atomic.Int32
}

func (f *fakeClassifier) Predict(models.FeatureVector) (models.Label, error) {
	f.calls.Add(1)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.label, f.predictErr
}

func (f *fakeClassifier) PredictConfidence(models.FeatureVector) ([]float64, bool, error) {
	if !f.supported {
		return nil, false, nil
	}
	return f.proba, true, nil
}

func (f *fakeClassifier) Classes() []string {
	return f.classes
}

func strPtr(s string) *string { return &s }

func testArtifacts(clf *fakeClassifier) *Artifacts {
	kb := models.NewKnowledgeBase(
		[]string{"common_cold"},
		[]string{"pneumonia"},
		map[string]models.OTCEntry{
			"common_cold": {
				Medications: []string{"paracetamol", "kids_syrup", "adult_only"},
				Dosage:      strPtr("500mg every 6 hours"),
				Duration:    strPtr("3 days"),
			},
		},
		map[string]string{"pneumonia": "Visit a pulmonologist"},
		map[string]models.MedicationSafety{
			"kids_syrup": {MinAge: 5, MaxAge: 12},
			"adult_only": {MinAge: 18, MaxAge: 120},
		},
	)
	return &Artifacts{
		Vocabulary: models.NewVocabulary([]models.SymptomToken{"fever", "cough", "runny_nose"}),
		Knowledge:  kb,
		Classifier: clf,
	}
}

func newTestPipeline(t *testing.T, clf *fakeClassifier) *TriagePipeline {
	t.Helper()

	graph, err := NewTriageGraph(testArtifacts(clf), config.DefaultTriageConfig())
	if err != nil {
		t.Fatalf("new graph: %v", err)
	}

	cfg := config.DefaultTriageConfig().Callbacks
	factory := callbacks.NewFactory(&cfg, logger.NewNop())
	pipeline, err := NewTriagePipeline(context.Background(), graph, logger.NewNop(), factory.CreateHandlers()...)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}
	return pipeline
}

func TestTriageGreenScenario(t *testing.T) {
	clf := &fakeClassifier{
		label:     models.IndexLabel(0),
		proba:     []float64{0.7, 0.2, 0.1},
		supported: true,
		classes:   []string{"common_cold", "pneumonia", "flu"},
	}
	p := newTestPipeline(t, clf)

	result, err := p.Handle(context.Background(), &models.TriageRequest{
		Age:      8,
		Symptoms: []string{"Runny Nose", "cough"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.UsedFallback {
		t.Fatalf("unexpected fallback: %v", result.Features)
	}
	if result.Prediction == nil || *result.Prediction != "common_cold" {
		t.Errorf("expected common_cold, got %v", result.Prediction)
	}
	if result.Category != models.CategoryGreen || result.Advice != models.AdviceOTCAvailable {
		t.Errorf("unexpected category/advice %s %q", result.Category, result.Advice)
	}
	expectedMeds := []string{"paracetamol", "kids_syrup"}
	if len(result.RecommendedMeds) != len(expectedMeds) {
		t.Fatalf("expected meds %v, got %v", expectedMeds, result.RecommendedMeds)
	}
	for i := range expectedMeds {
		if result.RecommendedMeds[i] != expectedMeds[i] {
			t.Errorf("expected meds %v, got %v", expectedMeds, result.RecommendedMeds)
		}
	}
	if result.Dosage == nil || *result.Dosage != "500mg every 6 hours" {
		t.Errorf("unexpected dosage %v", result.Dosage)
	}
	if result.Risk == nil || *result.Risk != 0.7 {
		t.Errorf("expected risk 0.7, got %v", result.Risk)
	}
	if result.Features[models.FeatureVectorLen] != 3 || result.Features[models.FeatureAge] != 8 {
		t.Errorf("unexpected features %v", result.Features)
	}
}

func TestTriageRedScenario(t *testing.T) {
	clf := &fakeClassifier{
		label:   models.NameLabel("1"),
		classes: []string{"common_cold", "pneumonia"},
	}
	p := newTestPipeline(t, clf)

	result, err := p.Handle(context.Background(), &models.TriageRequest{Age: 70, Symptoms: []string{"fever"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Category != models.CategoryRed || result.Advice != "Visit a pulmonologist" {
		t.Errorf("unexpected category/advice %s %q", result.Category, result.Advice)
	}
	if result.RecommendedMeds != nil {
		t.Errorf("red category must not recommend meds, got %v", result.RecommendedMeds)
	}
	if result.Risk != nil {
		t.Errorf("risk must be null without confidence support, got %v", *result.Risk)
	}
}

func TestTriageUnknownDisease(t *testing.T) {
	clf := &fakeClassifier{label: models.NameLabel("  mystery_disease ")}
	p := newTestPipeline(t, clf)

	result, err := p.Handle(context.Background(), &models.TriageRequest{Age: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *result.Prediction != "mystery_disease" || result.Category != models.CategoryUnknown {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Advice != models.AdviceNoOTC || result.RecommendedMeds != nil {
		t.Errorf("unexpected advice %q / meds %v", result.Advice, result.RecommendedMeds)
	}
}

func TestTriageFallback(t *testing.T) {
	tests := []struct {
		name      string
		clf       *fakeClassifier
		errSubstr string
	}{
		{
			name:      "predictor error",
			clf:       &fakeClassifier{predictErr: errors.New("model exploded")},
			errSubstr: "model exploded",
		},
		{
			name:      "predictor panic",
			clf:       &fakeClassifier{panicMsg: "nil weights"},
			errSubstr: "nil weights",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(t, tt.clf)
			req := &models.TriageRequest{Age: 30, Symptoms: []string{"fever", "cough"}}

			result, err := p.Handle(context.Background(), req)
			if err != nil {
				t.Fatalf("fallback must not return an error: %v", err)
			}

			if !result.UsedFallback || result.Prediction != nil {
				t.Errorf("expected fallback result, got %+v", result)
			}
			if result.Category != models.CategoryUnknown || result.Advice != models.AdviceModelFailure {
				t.Errorf("unexpected category/advice %s %q", result.Category, result.Advice)
			}
			expectedRisk := nodes.ScoreFromHeuristic(30, 2)
			if result.Risk == nil || *result.Risk != expectedRisk {
				t.Errorf("expected risk %v, got %v", expectedRisk, result.Risk)
			}

			errText, _ := result.Features[models.FeatureError].(string)
			if !strings.Contains(errText, tt.errSubstr) {
				t.Errorf("expected error feature to mention %q, got %q", tt.errSubstr, errText)
			}
			if _, ok := result.Features[models.FeatureVectorLen]; ok {
				t.Error("fallback features must not carry vector_len")
			}

			if stats := p.Stats(); stats.Fallbacks != 1 || stats.Requests != 1 {
				t.Errorf("unexpected stats %+v", stats)
			}
		})
	}
}

func TestTriageAgeBoundary(t *testing.T) {
	tests := []struct {
		age     int
		wantErr bool
	}{
		{-1, true},
		{0, false},
		{120, false},
		{121, true},
	}

	for _, tt := range tests {
		clf := &fakeClassifier{label: models.NameLabel("common_cold")}
		p := newTestPipeline(t, clf)

		result, err := p.Handle(context.Background(), &models.TriageRequest{Age: tt.age, Symptoms: []string{"fever"}})
		if tt.wantErr {
			if !errors.Is(err, ErrAgeOutOfRange) {
				t.Errorf("age %d: expected ErrAgeOutOfRange, got %v", tt.age, err)
			}
			if clf.calls.Load() != 0 {
				t.Errorf("age %d: classifier must not run", tt.age)
			}
			if p.Stats().Rejected != 1 {
				t.Errorf("age %d: expected one rejected request", tt.age)
			}
			continue
		}
		if err != nil || result.UsedFallback {
			t.Errorf("age %d: expected normal result, got %v / %+v", tt.age, err, result)
		}
	}
}

func TestTriageNilRequestRejected(t *testing.T) {
	clf := &fakeClassifier{label: models.NameLabel("common_cold")}
	p := newTestPipeline(t, clf)

	result, err := p.Handle(context.Background(), nil)
	if !errors.Is(err, ErrAgeOutOfRange) {
		t.Fatalf("expected ErrAgeOutOfRange, got %v", err)
	}
	if result != nil {
		t.Errorf("expected no result, got %+v", result)
	}
	if clf.calls.Load() != 0 {
		t.Error("classifier must not run")
	}
	if p.Stats().Rejected != 1 {
		t.Errorf("expected one rejected request, got %+v", p.Stats())
	}
}

func TestTriageResultWireShape(t *testing.T) {
	clf := &fakeClassifier{label: models.NameLabel("pneumonia")}
	p := newTestPipeline(t, clf)

	result, err := p.Handle(context.Background(), &models.TriageRequest{Age: 40, Symptoms: []string{"cough"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	keys := []string{"prediction", "category", "advice", "recommended_meds", "dosage",
		"duration", "safety_notes", "risk", "used_fallback", "features"}
	for _, k := range keys {
		if _, ok := decoded[k]; !ok {
			t.Errorf("missing key %q in %s", k, raw)
		}
	}
	if decoded["recommended_meds"] != nil || decoded["risk"] != nil {
		t.Errorf("expected null meds and risk, got %s", raw)
	}

	features := decoded["features"].(map[string]any)
	if symptoms, ok := features["symptoms_passed"].([]any); !ok || len(symptoms) != 1 || symptoms[0] != "cough" {
		t.Errorf("unexpected symptoms echo %v", features["symptoms_passed"])
	}
}

func TestNewTriageGraphRejectsMissingArtifacts(t *testing.T) {
	tests := []struct {
		name      string
		artifacts *Artifacts
	}{
		{"nil", nil},
		{"no vocabulary", &Artifacts{Knowledge: models.NewKnowledgeBase(nil, nil, nil, nil, nil), Classifier: &fakeClassifier{}}},
		{"no classifier", &Artifacts{
			Vocabulary: models.NewVocabulary([]models.SymptomToken{"fever"}),
			Knowledge:  models.NewKnowledgeBase(nil, nil, nil, nil, nil),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTriageGraph(tt.artifacts, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}
