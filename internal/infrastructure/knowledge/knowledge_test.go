package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pharma-triage/configs"
	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/infrastructure/artifacts"
	"pharma-triage/pkg/logger"
)

func TestLoadVocabulary(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []models.SymptomToken
		wantErr  bool
	}{
		{
			name:     "list of strings",
			raw:      `["Fever", "dry cough", "skin-rash"]`,
			expected: []models.SymptomToken{"fever", "dry_cough", "skin_rash"},
		},
		{
			name:     "mapping keeps document order",
			raw:      `{"rash": 2, "Fever": 0, "cough": 1}`,
			expected: []models.SymptomToken{"rash", "fever", "cough"},
		},
		{
			name:    "non string item",
			raw:     `["fever", 3]`,
			wantErr: true,
		},
		{
			name:    "scalar",
			raw:     `"fever"`,
			wantErr: true,
		},
		{
			name:    "invalid json",
			raw:     `["fever"`,
			wantErr: true,
		},
		{
			name:    "empty list",
			raw:     `[]`,
			wantErr: true,
		},
		{
			name:    "duplicates after normalization",
			raw:     `["Runny Nose", "runny-nose"]`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vocab, err := LoadVocabulary([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrLoad) {
					t.Fatalf("expected ErrLoad, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := vocab.Tokens()
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("position %d: expected %q, got %q", i, tt.expected[i], got[i])
				}
			}
		})
	}
}

func TestLoadClasses(t *testing.T) {
	classes, err := LoadClasses([]byte(`["common_cold", "flu", 7]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(classes) != 3 || classes[0] != "common_cold" || classes[2] != "7" {
		t.Errorf("unexpected classes %v", classes)
	}

	if _, err := LoadClasses([]byte(`{"a": 1}`)); !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad for object, got %v", err)
	}
	if _, err := LoadClasses([]byte(`[["nested"]]`)); !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad for nested list, got %v", err)
	}
}

const (
	categoriesJSON = `{"green": ["common_cold", "flu"], "red": ["pneumonia", "flu"]}`
	otcJSON        = `{
		"comprehensive_otc_database": {
			"common_cold": {
				"medications": ["paracetamol", "kids_syrup"],
				"dosage": "500mg",
				"duration": "3 days",
				"safety_notes": null
			}
		},
		"red_category_consultations": {"pneumonia": "See a pulmonologist"}
	}`
	safetyJSON = `{
		"enhanced_beers_criteria": {
			"kids_syrup": {"min_age": 5, "max_age": 12},
			"zero_max": {"min_age": 18, "max_age": 0},
			"null_min": {"min_age": null, "max_age": 65},
			"empty": {}
		}
	}`
)

func TestLoadKnowledgeBase(t *testing.T) {
	kb, err := LoadKnowledgeBase([]byte(categoriesJSON), []byte(otcJSON), []byte(safetyJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !kb.IsGreen("common_cold") || !kb.IsRed("pneumonia") {
		t.Error("category sets not loaded")
	}

	entry, ok := kb.OTC("common_cold")
	if !ok || len(entry.Medications) != 2 || entry.Dosage == nil || *entry.Dosage != "500mg" {
		t.Errorf("unexpected otc entry %+v", entry)
	}
	if entry.SafetyNotes != nil {
		t.Errorf("expected nil safety notes, got %v", *entry.SafetyNotes)
	}

	if msg, ok := kb.Consultation("pneumonia"); !ok || msg != "See a pulmonologist" {
		t.Errorf("unexpected consultation %q", msg)
	}

	tests := []struct {
		med     string
		present bool
		min     float64
		max     float64
	}{
		{"kids_syrup", true, 5, 12},
		{"zero_max", true, 18, 120},
		{"null_min", true, 0, 65},
		{"empty", false, 0, 0},
		{"paracetamol", false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.med, func(t *testing.T) {
			s, ok := kb.Safety(tt.med)
			if ok != tt.present {
				t.Fatalf("expected present=%v, got %v", tt.present, ok)
			}
			if ok && (s.MinAge != tt.min || s.MaxAge != tt.max) {
				t.Errorf("expected [%v,%v], got [%v,%v]", tt.min, tt.max, s.MinAge, s.MaxAge)
			}
		})
	}

	conflicts := kb.ConflictingDiseases()
	if len(conflicts) != 1 || conflicts[0] != "flu" {
		t.Errorf("expected flu conflict, got %v", conflicts)
	}
}

func TestLoadKnowledgeBaseMalformed(t *testing.T) {
	_, err := LoadKnowledgeBase([]byte(`{"green": "oops"}`), []byte(otcJSON), []byte(safetyJSON))
	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}

	_, err = LoadKnowledgeBase([]byte(categoriesJSON), []byte(`not json`), []byte(safetyJSON))
	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}

func writeFixtures(t *testing.T, dir string, withClasses bool) configs.ArtifactFiles {
	t.Helper()

	files := configs.DefaultConfig().Artifacts.Files
	fixtures := map[string]string{
		files.Vocabulary: `["fever", "cough", "rash"]`,
		files.Categories: categoriesJSON,
		files.OTC:        otcJSON,
		files.Safety:     safetyJSON,
	}
	if withClasses {
		fixtures[files.Classes] = `["common_cold", "pneumonia"]`
	}
	for name, content := range fixtures {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return files
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	files := writeFixtures(t, dir, true)

	bundle, err := NewLoader(artifacts.NewFileSource(dir), files, logger.NewNop()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bundle.Vocabulary.Len() != 3 {
		t.Errorf("expected 3 tokens, got %d", bundle.Vocabulary.Len())
	}
	if len(bundle.Classes) != 2 {
		t.Errorf("expected 2 classes, got %v", bundle.Classes)
	}
}

func TestLoaderClassesOptional(t *testing.T) {
	dir := t.TempDir()
	files := writeFixtures(t, dir, false)

	bundle, err := NewLoader(artifacts.NewFileSource(dir), files, logger.NewNop()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bundle.Classes != nil {
		t.Errorf("expected no classes, got %v", bundle.Classes)
	}
}

func TestLoaderMissingRequiredArtifact(t *testing.T) {
	dir := t.TempDir()
	files := writeFixtures(t, dir, false)
	if err := os.Remove(filepath.Join(dir, files.Safety)); err != nil {
		t.Fatalf("remove fixture: %v", err)
	}

	_, err := NewLoader(artifacts.NewFileSource(dir), files, logger.NewNop()).Load(context.Background())
	if !errors.Is(err, ErrLoad) {
		t.Errorf("expected ErrLoad, got %v", err)
	}
}
