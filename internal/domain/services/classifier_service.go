package services

import (
	"pharma-triage/internal/domain/models"
)

// ClassifierService 分类模型能力接口
// 屏蔽具体模型族（线性模型、ONNX 等），推理流程只依赖"能预测标签"与"可选的置信度"
type ClassifierService interface {
	// Predict 预测原始标签，错误直接返回给调用方，不在此处恢复
	Predict(vector models.FeatureVector) (models.Label, error)

	// PredictConfidence 预测各类别概率
	// 模型不支持概率输出时返回 supported=false，这不是错误
	PredictConfidence(vector models.FeatureVector) (probabilities []float64, supported bool, err error)

	// Classes 显式类别列表，可能为空
	Classes() []string
}
