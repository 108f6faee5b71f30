package models

import "sort"

// KnowledgeBase 三张只读参考表：疾病类别、非处方药库、药物年龄安全表。
// 启动时加载一次，之后不再修改。
type KnowledgeBase struct {
	green         map[string]struct{}
	red           map[string]struct{}
	otc           map[string]OTCEntry
	consultations map[string]string
	safety        map[string]MedicationSafety
}

// NewKnowledgeBase 创建知识库，传入的数据会被复制
func NewKnowledgeBase(
	green, red []string,
	otc map[string]OTCEntry,
	consultations map[string]string,
	safety map[string]MedicationSafety,
) *KnowledgeBase {
	kb := &KnowledgeBase{
		green:         toSet(green),
		red:           toSet(red),
		otc:           make(map[string]OTCEntry, len(otc)),
		consultations: make(map[string]string, len(consultations)),
		safety:        make(map[string]MedicationSafety, len(safety)),
	}
	for k, v := range otc {
		meds := make([]string, len(v.Medications))
		copy(meds, v.Medications)
		v.Medications = meds
		kb.otc[k] = v
	}
	for k, v := range consultations {
		kb.consultations[k] = v
	}
	for k, v := range safety {
		kb.safety[k] = v
	}
	return kb
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// IsRed 疾病是否属于需要就医的集合
func (kb *KnowledgeBase) IsRed(disease string) bool {
	_, ok := kb.red[disease]
	return ok
}

// IsGreen 疾病是否属于可自行用药的集合
func (kb *KnowledgeBase) IsGreen(disease string) bool {
	_, ok := kb.green[disease]
	return ok
}

// OTC 返回疾病的非处方药条目
func (kb *KnowledgeBase) OTC(disease string) (OTCEntry, bool) {
	entry, ok := kb.otc[disease]
	if !ok {
		return OTCEntry{}, false
	}
	meds := make([]string, len(entry.Medications))
	copy(meds, entry.Medications)
	entry.Medications = meds
	return entry, true
}

// Consultation 返回红色类别疾病的专门就医提示
func (kb *KnowledgeBase) Consultation(disease string) (string, bool) {
	msg, ok := kb.consultations[disease]
	return msg, ok
}

// Safety 返回药物的年龄安全区间，不存在表示无条件安全
func (kb *KnowledgeBase) Safety(medication string) (MedicationSafety, bool) {
	s, ok := kb.safety[medication]
	return s, ok
}

// ConflictingDiseases 同时出现在红绿两个集合中的疾病（数据完整性问题）
func (kb *KnowledgeBase) ConflictingDiseases() []string {
	var out []string
	for name := range kb.red {
		if _, ok := kb.green[name]; ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// CategorySizes 返回绿、红集合的大小
func (kb *KnowledgeBase) CategorySizes() (green, red int) {
	return len(kb.green), len(kb.red)
}
