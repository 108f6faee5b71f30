package classifier

import (
	"fmt"
	"io"
	"sync"

	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/domain/services"
)

var _ services.ClassifierService = (*Adapter)(nil)

// Adapter 将预测器适配为分类服务。
// 未声明并发安全的预测器由适配器串行调用。
type Adapter struct {
	predictor Predictor
	scorer    ConfidenceScorer
	classes   []string
	mu        *sync.Mutex
}

// NewAdapter 创建适配器，classes 为最终生效的类别列表，可以为空
func NewAdapter(predictor Predictor, classes []string) (*Adapter, error) {
	if predictor == nil {
		return nil, fmt.Errorf("%w: nil predictor", ErrUnsupportedArtifact)
	}

	a := &Adapter{
		predictor: predictor,
		classes:   append([]string(nil), classes...),
	}
	if scorer, ok := asConfidenceScorer(predictor); ok {
		a.scorer = scorer
	}
	if !isConcurrentSafe(predictor) {
		a.mu = &sync.Mutex{}
	}
	return a, nil
}

// Predict 预测原始标签
func (a *Adapter) Predict(vector models.FeatureVector) (models.Label, error) {
	a.lock()
	defer a.unlock()
	return a.predictor.Predict(vector)
}

// PredictConfidence 预测概率，不支持时返回 supported=false
func (a *Adapter) PredictConfidence(vector models.FeatureVector) ([]float64, bool, error) {
	if a.scorer == nil {
		return nil, false, nil
	}

	a.lock()
	defer a.unlock()

	proba, err := a.scorer.PredictProba(vector)
	if err != nil {
		return nil, true, err
	}
	return proba, true, nil
}

// Classes 类别列表
func (a *Adapter) Classes() []string {
	return a.classes
}

// SupportsConfidence 是否具备置信度能力
func (a *Adapter) SupportsConfidence() bool {
	return a.scorer != nil
}

// Close 释放预测器持有的资源
func (a *Adapter) Close() error {
	if c, ok := a.predictor.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (a *Adapter) lock() {
	if a.mu != nil {
		a.mu.Lock()
	}
}

func (a *Adapter) unlock() {
	if a.mu != nil {
		a.mu.Unlock()
	}
}
