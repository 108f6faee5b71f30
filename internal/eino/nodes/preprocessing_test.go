package nodes

import (
	"testing"

	"pharma-triage/internal/domain/models"
)

func TestNormalizeSymptom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected models.SymptomToken
	}{
		{
			name:     "lowercase and trim",
			input:    "  Fever  ",
			expected: "fever",
		},
		{
			name:     "space to underscore",
			input:    "Runny Nose",
			expected: "runny_nose",
		},
		{
			name:     "hyphen to underscore",
			input:    "short-breath",
			expected: "short_breath",
		},
		{
			name:     "collapse mixed separators",
			input:    "sore -  throat",
			expected: "sore_throat",
		},
		{
			name:     "fullwidth characters",
			input:    "ＦＥＶＥＲ",
			expected: "fever",
		},
		{
			name:     "control chars removed",
			input:    "cou\x00gh",
			expected: "cough",
		},
		{
			name:     "tabs and newlines",
			input:    "chest\t\npain",
			expected: "chest_pain",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only separators",
			input:    " - ",
			expected: "_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSymptom(tt.input)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestNormalizeSymptomIdempotent(t *testing.T) {
	inputs := []string{
		"", " ", "Fever", "  High   Fever ", "skin-rash", "--", "_a_", "ＦＥＶＥＲ",
		"ǅemal", "ℌeadache", "İstanbul flu", "cou\x00gh", "a b", "ﬁbrosis", "\t-\n",
	}

	for _, s := range inputs {
		once := NormalizeSymptom(s)
		twice := NormalizeSymptom(string(once))
		if once != twice {
			t.Errorf("normalize not idempotent for %q: %q -> %q", s, once, twice)
		}
	}
}

func TestVectorizer(t *testing.T) {
	vocab := models.NewVocabulary([]models.SymptomToken{"fever", "cough", "rash"})
	v := NewVectorizer(vocab)

	tests := []struct {
		name     string
		symptoms []string
		expected models.FeatureVector
	}{
		{
			name:     "two matches",
			symptoms: []string{"Fever", "cough"},
			expected: models.FeatureVector{1, 1, 0},
		},
		{
			name:     "no symptoms",
			symptoms: nil,
			expected: models.FeatureVector{0, 0, 0},
		},
		{
			name:     "unknown symptoms ignored",
			symptoms: []string{"headache", "nausea", "dizziness", "chills"},
			expected: models.FeatureVector{0, 0, 0},
		},
		{
			name:     "duplicates counted once",
			symptoms: []string{"rash", " RASH ", "rash"},
			expected: models.FeatureVector{0, 0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.Vectorize(tt.symptoms)
			if len(got) != vocab.Len() {
				t.Fatalf("expected length %d, got %d", vocab.Len(), len(got))
			}
			for i := range tt.expected {
				if got[i] != tt.expected[i] {
					t.Errorf("position %d: expected %v, got %v", i, tt.expected[i], got[i])
				}
			}
		})
	}
}
