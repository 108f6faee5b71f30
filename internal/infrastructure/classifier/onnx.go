package classifier

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"pharma-triage/configs"
	"pharma-triage/internal/domain/models"
)

var (
	ortInitMu sync.Mutex
)

// InitONNXRuntime 初始化进程级 onnxruntime 环境，重复调用无副作用
func InitONNXRuntime(sharedLibraryPath string) error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()

	if ort.IsInitialized() {
		return nil
	}
	if sharedLibraryPath != "" {
		ort.SetSharedLibraryPath(sharedLibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// ShutdownONNXRuntime 释放 onnxruntime 环境
func ShutdownONNXRuntime() error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()

	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// ONNXPredictor 基于 onnxruntime 的预测器，例如 skl2onnx 导出且关闭 zipmap 的分类器。
// 会话不声明并发安全，由自身互斥锁串行化。
type ONNXPredictor struct {
	mu          sync.Mutex
	session     *ort.DynamicAdvancedSession
	inputName   string
	outputNames []string
	hasProba    bool
}

// NewONNXPredictor 从模型字节创建会话。概率输出不存在时预测器不具备置信度能力
func NewONNXPredictor(data []byte, cfg configs.ONNXConfig) (*ONNXPredictor, error) {
	if err := InitONNXRuntime(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	_, outputs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: inspect onnx model: %v", ErrUnsupportedArtifact, err)
	}

	hasProba, err := checkOutputs(outputs, cfg)
	if err != nil {
		return nil, err
	}

	outputNames := []string{cfg.LabelOutput}
	if hasProba {
		outputNames = append(outputNames, cfg.ProbabilityOutput)
	}

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(data,
		[]string{cfg.InputName}, outputNames, nil)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &ONNXPredictor{
		session:     session,
		inputName:   cfg.InputName,
		outputNames: outputNames,
		hasProba:    hasProba,
	}, nil
}

// checkOutputs 校验标签输出为 int64 张量、概率输出（如存在）为 float32 张量。
// 字符串标签或开启 zipmap 的导出在加载时即被拒绝
func checkOutputs(outputs []ort.InputOutputInfo, cfg configs.ONNXConfig) (bool, error) {
	hasLabel, hasProba := false, false
	for _, info := range outputs {
		switch {
		case info.Name == cfg.LabelOutput:
			if info.OrtValueType != ort.ONNXTypeTensor || info.DataType != ort.TensorElementDataTypeInt64 {
				return false, fmt.Errorf("%w: onnx label output %q must be an int64 tensor, got %v/%v",
					ErrUnsupportedArtifact, info.Name, info.OrtValueType, info.DataType)
			}
			hasLabel = true
		case cfg.ProbabilityOutput != "" && info.Name == cfg.ProbabilityOutput:
			if info.OrtValueType != ort.ONNXTypeTensor || info.DataType != ort.TensorElementDataTypeFloat {
				return false, fmt.Errorf("%w: onnx probability output %q must be a float32 tensor, got %v",
					ErrUnsupportedArtifact, info.Name, info.OrtValueType)
			}
			hasProba = true
		}
	}
	if !hasLabel {
		return false, fmt.Errorf("%w: onnx model has no output %q", ErrUnsupportedArtifact, cfg.LabelOutput)
	}
	return hasProba, nil
}

// Predict 读取 int64 标签输出
func (p *ONNXPredictor) Predict(vector models.FeatureVector) (models.Label, error) {
	outputs, err := p.run(vector)
	if err != nil {
		return models.Label{}, err
	}
	defer destroyAll(outputs)

	labels, ok := outputs[0].(*ort.Tensor[int64])
	if !ok {
		return models.Label{}, fmt.Errorf("onnx label output %q is not an int64 tensor", p.outputNames[0])
	}
	data := labels.GetData()
	if len(data) == 0 {
		return models.Label{}, fmt.Errorf("onnx label output %q is empty", p.outputNames[0])
	}
	return models.IndexLabel(int(data[0])), nil
}

// PredictProba 读取 float32 概率输出的第一行
func (p *ONNXPredictor) PredictProba(vector models.FeatureVector) ([]float64, error) {
	if !p.hasProba {
		return nil, fmt.Errorf("onnx model has no probability output")
	}

	outputs, err := p.run(vector)
	if err != nil {
		return nil, err
	}
	defer destroyAll(outputs)

	proba, ok := outputs[1].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("onnx probability output %q is not a float32 tensor", p.outputNames[1])
	}

	data := proba.GetData()
	result := make([]float64, len(data))
	for i, v := range data {
		result[i] = float64(v)
	}
	return result, nil
}

// Close 释放会话
func (p *ONNXPredictor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil
	}
	err := p.session.Destroy()
	p.session = nil
	return err
}

func (p *ONNXPredictor) run(vector models.FeatureVector) ([]ort.Value, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == nil {
		return nil, fmt.Errorf("onnx session is closed")
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(len(vector))), []float32(vector))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	// nil 输出由 onnxruntime 分配，调用方负责释放
	outputs := make([]ort.Value, len(p.outputNames))
	if err := p.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("run onnx session: %w", err)
	}
	return outputs, nil
}

func destroyAll(values []ort.Value) {
	for _, v := range values {
		if v != nil {
			_ = v.Destroy()
		}
	}
}

// SupportsConfidence 模型是否导出了概率输出
func (p *ONNXPredictor) SupportsConfidence() bool {
	return p.hasProba
}
