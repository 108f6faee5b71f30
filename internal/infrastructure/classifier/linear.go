package classifier

import (
	"encoding/json"
	"fmt"
	"math"

	"pharma-triage/internal/domain/models"
)

// LinearModel 多项逻辑回归权重，字段名与 scikit-learn 一致
type LinearModel struct {
	Coef      [][]float64       `json:"coef"`
	Intercept []float64         `json:"intercept"`
	ClassList []json.RawMessage `json:"classes"`
}

// LinearPredictor 纯计算，只读权重，可并发调用
type LinearPredictor struct {
	coef      [][]float64
	intercept []float64
	classes   []string
}

// NewLinearPredictor 校验权重形状
func NewLinearPredictor(m LinearModel) (*LinearPredictor, error) {
	if len(m.Coef) == 0 {
		return nil, fmt.Errorf("%w: linear model has no coefficients", ErrUnsupportedArtifact)
	}
	width := len(m.Coef[0])
	for i, row := range m.Coef {
		if len(row) != width {
			return nil, fmt.Errorf("%w: coefficient row %d has %d columns, expected %d",
				ErrUnsupportedArtifact, i, len(row), width)
		}
	}

	intercept := m.Intercept
	if intercept == nil {
		intercept = make([]float64, len(m.Coef))
	}
	if len(intercept) != len(m.Coef) {
		return nil, fmt.Errorf("%w: %d intercepts for %d classes",
			ErrUnsupportedArtifact, len(intercept), len(m.Coef))
	}

	// 二分类时 scikit-learn 只保存一行系数
	numClasses := len(m.Coef)
	if numClasses == 1 {
		numClasses = 2
	}

	classes, err := decodeClassValues(m.ClassList)
	if err != nil {
		return nil, err
	}
	if classes != nil && len(classes) != numClasses {
		return nil, fmt.Errorf("%w: %d class names for %d classes",
			ErrUnsupportedArtifact, len(classes), numClasses)
	}

	return &LinearPredictor{
		coef:      m.Coef,
		intercept: intercept,
		classes:   classes,
	}, nil
}

// Predict 取得分最高的类别；带类别名时返回名称，否则返回下标
func (p *LinearPredictor) Predict(vector models.FeatureVector) (models.Label, error) {
	scores, err := p.decision(vector)
	if err != nil {
		return models.Label{}, err
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}

	if p.classes != nil {
		return models.NameLabel(p.classes[best]), nil
	}
	return models.IndexLabel(best), nil
}

// PredictProba softmax 概率
func (p *LinearPredictor) PredictProba(vector models.FeatureVector) ([]float64, error) {
	scores, err := p.decision(vector)
	if err != nil {
		return nil, err
	}
	return softmax(scores), nil
}

// Classes 模型自带的类别列表
func (p *LinearPredictor) Classes() []string {
	if p.classes == nil {
		return nil
	}
	out := make([]string, len(p.classes))
	copy(out, p.classes)
	return out
}

// ConcurrentSafe 权重只读
func (p *LinearPredictor) ConcurrentSafe() bool {
	return true
}

func (p *LinearPredictor) decision(vector models.FeatureVector) ([]float64, error) {
	if len(vector) != len(p.coef[0]) {
		return nil, fmt.Errorf("feature vector length %d does not match model width %d",
			len(vector), len(p.coef[0]))
	}

	scores := make([]float64, len(p.coef))
	for c, row := range p.coef {
		s := p.intercept[c]
		for i, w := range row {
			s += w * float64(vector[i])
		}
		scores[c] = s
	}
	if len(scores) == 1 {
		return []float64{0, scores[0]}, nil
	}
	return scores, nil
}

func softmax(scores []float64) []float64 {
	maxScore := math.Inf(-1)
	for _, s := range scores {
		maxScore = math.Max(maxScore, s)
	}

	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
