package models

import (
	"strconv"
	"strings"
)

// Category 分诊类别
type Category string

const (
	// CategoryGreen 可自行用药处理
	CategoryGreen Category = "green"
	// CategoryRed 需要专业医疗处理
	CategoryRed Category = "red"
	// CategoryUnknown 不在任何类别集合中
	CategoryUnknown Category = "unknown"
)

// 固定建议文本，属于对外的响应契约，不可修改
const (
	AdviceConsultDoctor = "Consult doctor immediately"
	AdviceOTCAvailable  = "OTC meds available"
	AdviceNoOTC         = "No OTC recommendation available"
	AdviceModelFailure  = "Heuristic risk computed (model failure)"
)

// 年龄边界
const (
	MinPatientAge     = 0
	MaxPatientAge     = 120
	DefaultMinSafeAge = 0
	DefaultMaxSafeAge = 120
)

// features 回显字段
const (
	FeatureAge       = "age"
	FeatureSymptoms  = "symptoms_passed"
	FeatureVectorLen = "vector_len"
	FeatureError     = "error"
)

// SymptomToken 规范化后的症状标识
type SymptomToken string

// FeatureVector 与词表对齐的特征向量，第 i 位为 1 表示词表第 i 个症状出现
type FeatureVector []float32

// Label 模型输出的原始标签。
// 可能是类别下标，也可能是已经解析好的名称，两种形态显式区分，不做运行时类型探测。
type Label struct {
	name    string
	index   int
	isIndex bool
}

// IndexLabel 创建下标形式的标签
func IndexLabel(i int) Label {
	return Label{index: i, isIndex: true}
}

// NameLabel 创建名称形式的标签
func NameLabel(name string) Label {
	return Label{name: name}
}

// IsIndex 是否为下标标签
func (l Label) IsIndex() bool {
	return l.isIndex
}

// Index 尝试将标签转换为整数下标。
// 名称标签在去除首尾空白后能解析为整数时同样视为下标。
func (l Label) Index() (int, bool) {
	if l.isIndex {
		return l.index, true
	}
	i, err := strconv.Atoi(strings.TrimSpace(l.name))
	if err != nil {
		return 0, false
	}
	return i, true
}

// String 标签的字符串形式
func (l Label) String() string {
	if l.isIndex {
		return strconv.Itoa(l.index)
	}
	return l.name
}

// ModelOutput 单次推理的模型输出。
// Probabilities 为 nil 表示模型不支持概率输出。
type ModelOutput struct {
	Label         Label
	Probabilities []float64
}

// MedicationSafety 药物的年龄安全区间（闭区间）
type MedicationSafety struct {
	MinAge float64
	MaxAge float64
}

// Allows 判断给定年龄是否落在安全区间内
func (s MedicationSafety) Allows(age int) bool {
	a := float64(age)
	return s.MinAge <= a && a <= s.MaxAge
}

// OTCEntry 某疾病对应的非处方药条目
type OTCEntry struct {
	Medications []string `json:"medications"`
	Dosage      *string  `json:"dosage"`
	Duration    *string  `json:"duration"`
	SafetyNotes *string  `json:"safety_notes"`
}

// AdviceBundle 分诊建议
// RecommendedMeds 为 nil 表示不提供药物建议；非 nil 的空切片表示全部被年龄过滤掉。
type AdviceBundle struct {
	Advice          string
	RecommendedMeds []string
	Dosage          *string
	Duration        *string
	SafetyNotes     *string
}

// TriageRequest 分诊请求
type TriageRequest struct {
	Age      int      `json:"age"`
	Symptoms []string `json:"symptoms"`
}

// TriageResult 分诊结果，字段与线上消费者的响应格式逐字段一致
type TriageResult struct {
	Prediction      *string        `json:"prediction"`
	Category        Category       `json:"category"`
	Advice          string         `json:"advice"`
	RecommendedMeds []string       `json:"recommended_meds"`
	Dosage          *string        `json:"dosage"`
	Duration        *string        `json:"duration"`
	SafetyNotes     *string        `json:"safety_notes"`
	Risk            *float64       `json:"risk"`
	UsedFallback    bool           `json:"used_fallback"`
	Features        map[string]any `json:"features"`
}
