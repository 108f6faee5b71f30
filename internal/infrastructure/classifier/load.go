package classifier

import (
	"context"
	"fmt"

	"pharma-triage/configs"
	"pharma-triage/internal/infrastructure/artifacts"
	"pharma-triage/pkg/logger"
)

// Load 读取并解析模型制品，构建分类适配器。
// 类别列表优先级：模型包 classes_（单独的预测器取自带类别） > fileClasses > label_encoder 类别。
// 模型包内预测器自带的类别不参与选择，整数编码的类别由 fileClasses 映射为疾病名。
func Load(ctx context.Context, source artifacts.Source, modelName string, onnx configs.ONNXConfig,
	fileClasses []string, log logger.Logger) (*Adapter, error) {
	raw, err := source.Read(ctx, modelName)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}

	unwrapper := NewUnwrapper(source.Read, onnx)
	predictor, decoder, classes, err := unwrapper.Unwrap(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source.Describe(modelName), err)
	}

	adapter, err := NewAdapter(predictor, ChooseClasses(classes, fileClasses, decoder.Classes()))
	if err != nil {
		return nil, err
	}

	log.InfoContext(ctx, "模型加载完成",
		"artifact", source.Describe(modelName),
		"predictor", fmt.Sprintf("%T", predictor),
		"classes", len(adapter.Classes()),
		"confidence", adapter.SupportsConfidence(),
		"concurrent_safe", isConcurrentSafe(predictor))

	return adapter, nil
}
