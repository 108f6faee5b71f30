package nodes

import (
	"strings"

	"pharma-triage/internal/domain/models"
)

// ResolveDisease 将模型原始标签解析为疾病名称。
// 有显式类别列表时按下标取名；标签不是整数或下标越界时退化为标签本身的字符串形式，从不报错。
// 无类别列表时直接使用标签的字符串形式。结果总是去除首尾空白。
func ResolveDisease(label models.Label, classes []string) string {
	name := label.String()
	if len(classes) > 0 {
		if i, ok := label.Index(); ok && i >= 0 && i < len(classes) {
			name = classes[i]
		}
	}
	return strings.TrimSpace(name)
}

// Categorize 根据知识库确定疾病类别。
// 红色集合优先判断：同时出现在两个集合中的疾病按需要就医处理。
func Categorize(disease string, kb *models.KnowledgeBase) models.Category {
	switch {
	case kb.IsRed(disease):
		return models.CategoryRed
	case kb.IsGreen(disease):
		return models.CategoryGreen
	default:
		return models.CategoryUnknown
	}
}

// BuildAdvice 根据类别生成分诊建议
func BuildAdvice(category models.Category, disease string, age int, kb *models.KnowledgeBase) models.AdviceBundle {
	switch category {
	case models.CategoryRed:
		advice := models.AdviceConsultDoctor
		if msg, ok := kb.Consultation(disease); ok {
			advice = msg
		}
		return models.AdviceBundle{Advice: advice}

	case models.CategoryGreen:
		entry, _ := kb.OTC(disease)
		return models.AdviceBundle{
			Advice:          models.AdviceOTCAvailable,
			RecommendedMeds: FilterMedications(entry.Medications, age, kb),
			Dosage:          entry.Dosage,
			Duration:        entry.Duration,
			SafetyNotes:     entry.SafetyNotes,
		}

	default:
		return models.AdviceBundle{Advice: models.AdviceNoOTC}
	}
}

// FilterMedications 按年龄过滤候选药物。
// 安全表中没有记录的药物视为无条件安全；不满足年龄区间的药物被静默丢弃。
// 返回值总是非 nil，过滤后可能为空。
func FilterMedications(medications []string, age int, kb *models.KnowledgeBase) []string {
	safe := make([]string, 0, len(medications))
	for _, med := range medications {
		safety, ok := kb.Safety(med)
		if !ok || safety.Allows(age) {
			safe = append(safe, med)
		}
	}
	return safe
}
