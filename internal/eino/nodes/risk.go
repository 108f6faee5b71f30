package nodes

import "math"

const (
	heuristicAgeWeight     = 0.02
	heuristicSymptomWeight = 0.02
)

// ScoreFromConfidence 以最高类别概率作为风险分数，结果限制在 [0,1]
func ScoreFromConfidence(probabilities []float64) float64 {
	if len(probabilities) == 0 {
		return 0
	}
	top := math.Inf(-1)
	for _, p := range probabilities {
		if p > top {
			top = p
		}
	}
	return clamp01(top)
}

// ScoreFromHeuristic 模型不可用时的降级风险估计：min(1, 0.02*age + 0.02*symptomCount)。
// 它只是随年龄和症状数单调不减的有界代理值，不是校准过的概率，不能当作模型输出展示。
func ScoreFromHeuristic(age, symptomCount int) float64 {
	return clamp01(heuristicAgeWeight*float64(age) + heuristicSymptomWeight*float64(symptomCount))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
