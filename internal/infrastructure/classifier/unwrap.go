package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"pharma-triage/configs"
)

// bundleKeys 模型包中预测器所在的键，按顺序检查
var bundleKeys = []string{"model", "clf", "classifier", "estimator"}

// ReadFunc 按名称读取被模型包引用的其他制品
type ReadFunc func(ctx context.Context, name string) ([]byte, error)

// LabelDecoder 模型包中的标签编码器，只保留类别列表
type LabelDecoder struct {
	classes []string
}

// Classes 编码器的类别列表
func (d *LabelDecoder) Classes() []string {
	if d == nil {
		return nil
	}
	return d.classes
}

// Unwrapper 解析模型制品
type Unwrapper struct {
	read ReadFunc
	onnx configs.ONNXConfig
}

// NewUnwrapper 创建解析器，read 用于加载模型包中按名称引用的 ONNX 文件
func NewUnwrapper(read ReadFunc, onnx configs.ONNXConfig) *Unwrapper {
	return &Unwrapper{
		read: read,
		onnx: onnx,
	}
}

// Unwrap 识别制品形态：
//   - 非 JSON 字节视为 ONNX 模型
//   - 带 coef 或 type 的 JSON 对象视为单独的预测器
//   - 含 model/clf/classifier/estimator 任一键（按此顺序）的 JSON 对象视为模型包，
//     可附带 label_encoder 与 classes_
//
// 返回的类别列表：单独的预测器为其自带类别，模型包只取显式的 classes_
func (u *Unwrapper) Unwrap(ctx context.Context, raw []byte) (Predictor, *LabelDecoder, []string, error) {
	if !gjson.ValidBytes(raw) {
		predictor, err := NewONNXPredictor(raw, u.onnx)
		if err != nil {
			return nil, nil, nil, err
		}
		return predictor, nil, nil, nil
	}

	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, nil, nil, fmt.Errorf("%w: json model artifact must be an object", ErrUnsupportedArtifact)
	}

	if isPredictorSpec(root) {
		predictor, err := u.buildPredictor(ctx, root)
		if err != nil {
			return nil, nil, nil, err
		}
		return predictor, nil, ownClasses(predictor), nil
	}

	for _, key := range bundleKeys {
		inner := root.Get(key)
		if !inner.Exists() {
			continue
		}

		predictor, err := u.buildPredictor(ctx, inner)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("bundle key %q: %w", key, err)
		}

		decoder, err := parseLabelDecoder(root.Get("label_encoder"))
		if err != nil {
			return nil, nil, nil, err
		}

		classes, err := parseClassField(root.Get("classes_"))
		if err != nil {
			return nil, nil, nil, err
		}
		return predictor, decoder, classes, nil
	}

	return nil, nil, nil, fmt.Errorf("%w: object has none of the keys %v", ErrUnsupportedArtifact, bundleKeys)
}

func isPredictorSpec(v gjson.Result) bool {
	return v.Get("coef").Exists() || v.Get("type").Exists()
}

// buildPredictor 模型包中的预测器可以是内联的线性模型，也可以是 ONNX 制品名
func (u *Unwrapper) buildPredictor(ctx context.Context, v gjson.Result) (Predictor, error) {
	if v.Type == gjson.String {
		return u.loadONNX(ctx, v.String())
	}
	if !v.IsObject() {
		return nil, fmt.Errorf("%w: predictor must be an object or an onnx artifact name", ErrUnsupportedArtifact)
	}

	switch kind := v.Get("type").String(); kind {
	case "", "linear":
		var m LinearModel
		if err := json.Unmarshal([]byte(v.Raw), &m); err != nil {
			return nil, fmt.Errorf("%w: linear model: %v", ErrUnsupportedArtifact, err)
		}
		return NewLinearPredictor(m)
	case "onnx":
		path := v.Get("path").String()
		if path == "" {
			return nil, fmt.Errorf("%w: onnx predictor needs a path", ErrUnsupportedArtifact)
		}
		return u.loadONNX(ctx, path)
	default:
		return nil, fmt.Errorf("%w: unknown predictor type %q", ErrUnsupportedArtifact, kind)
	}
}

func (u *Unwrapper) loadONNX(ctx context.Context, name string) (Predictor, error) {
	if u.read == nil {
		return nil, fmt.Errorf("%w: cannot resolve onnx artifact %q", ErrUnsupportedArtifact, name)
	}
	data, err := u.read(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read onnx artifact %q: %w", name, err)
	}
	return NewONNXPredictor(data, u.onnx)
}

func parseLabelDecoder(v gjson.Result) (*LabelDecoder, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	classes, err := parseClassField(v.Get("classes"))
	if err != nil {
		return nil, fmt.Errorf("label_encoder: %w", err)
	}
	return &LabelDecoder{classes: classes}, nil
}

// parseClassField 字段不存在或为 null 时返回 nil
func parseClassField(v gjson.Result) ([]string, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("%w: class list must be an array", ErrUnsupportedArtifact)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal([]byte(v.Raw), &raws); err != nil {
		return nil, fmt.Errorf("%w: class list: %v", ErrUnsupportedArtifact, err)
	}
	return decodeClassValues(raws)
}

// decodeClassValues 类别值为字符串或数字，数字保留其 JSON 文本
func decodeClassValues(raws []json.RawMessage) ([]string, error) {
	if raws == nil {
		return nil, nil
	}

	classes := make([]string, 0, len(raws))
	for i, r := range raws {
		v := gjson.ParseBytes(r)
		switch v.Type {
		case gjson.String:
			classes = append(classes, v.String())
		case gjson.Number:
			if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
				classes = append(classes, strconv.FormatInt(n, 10))
			} else {
				classes = append(classes, v.Raw)
			}
		default:
			return nil, fmt.Errorf("%w: class %d must be a string or number", ErrUnsupportedArtifact, i)
		}
	}
	return classes, nil
}

func ownClasses(p Predictor) []string {
	if cp, ok := p.(ClassProvider); ok {
		return cp.Classes()
	}
	return nil
}

// ChooseClasses 返回第一个非空的类别列表
func ChooseClasses(candidates ...[]string) []string {
	for _, c := range candidates {
		if len(c) > 0 {
			return c
		}
	}
	return nil
}
