package nodes

import (
	"math"
	"testing"
)

func TestScoreFromConfidence(t *testing.T) {
	tests := []struct {
		name     string
		probs    []float64
		expected float64
	}{
		{name: "top class", probs: []float64{0.1, 0.7, 0.2}, expected: 0.7},
		{name: "single class", probs: []float64{1.0}, expected: 1.0},
		{name: "empty", probs: nil, expected: 0},
		{name: "overflow clamped", probs: []float64{1.2, 0.1}, expected: 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreFromConfidence(tt.probs)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestScoreFromHeuristic(t *testing.T) {
	if got := ScoreFromHeuristic(30, 2); math.Abs(got-0.64) > 1e-9 {
		t.Errorf("expected 0.64, got %v", got)
	}
	if got := ScoreFromHeuristic(0, 0); got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
	if got := ScoreFromHeuristic(120, 40); got != 1 {
		t.Errorf("expected cap at 1, got %v", got)
	}
}

func TestScoreFromHeuristicMonotonic(t *testing.T) {
	for age := 0; age <= 120; age++ {
		for n := 0; n <= 60; n++ {
			s := ScoreFromHeuristic(age, n)
			if s < 0 || s > 1 {
				t.Fatalf("score out of range for age=%d n=%d: %v", age, n, s)
			}
			if age > 0 && ScoreFromHeuristic(age-1, n) > s {
				t.Fatalf("score decreased with age at age=%d n=%d", age, n)
			}
			if n > 0 && ScoreFromHeuristic(age, n-1) > s {
				t.Fatalf("score decreased with symptom count at age=%d n=%d", age, n)
			}
		}
	}
}
