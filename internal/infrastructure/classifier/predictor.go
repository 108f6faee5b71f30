// Package classifier 封装不透明的分类模型制品，对推理流程只暴露标签预测与可选的置信度
package classifier

import (
	"errors"

	"pharma-triage/internal/domain/models"
)

// ErrUnsupportedArtifact 制品既不是可识别的预测器，也不是带已知键的模型包
var ErrUnsupportedArtifact = errors.New("unsupported model artifact")

// Predictor 所有模型族都必须具备的能力
type Predictor interface {
	Predict(vector models.FeatureVector) (models.Label, error)
}

// ConfidenceScorer 可选能力：输出各类别概率。通过类型断言检测，不实现即视为不支持
type ConfidenceScorer interface {
	PredictProba(vector models.FeatureVector) ([]float64, error)
}

// ConcurrencySafe 可选声明：预测器可被多个 goroutine 同时调用
type ConcurrencySafe interface {
	ConcurrentSafe() bool
}

// ClassProvider 可选能力：预测器自身携带类别列表
type ClassProvider interface {
	Classes() []string
}

func isConcurrentSafe(p Predictor) bool {
	cs, ok := p.(ConcurrencySafe)
	return ok && cs.ConcurrentSafe()
}

// confidenceSupport 预测器在运行期才知道是否有概率输出时实现该接口
type confidenceSupport interface {
	SupportsConfidence() bool
}

func asConfidenceScorer(p Predictor) (ConfidenceScorer, bool) {
	scorer, ok := p.(ConfidenceScorer)
	if !ok {
		return nil, false
	}
	if cs, ok := p.(confidenceSupport); ok && !cs.SupportsConfidence() {
		return nil, false
	}
	return scorer, true
}
