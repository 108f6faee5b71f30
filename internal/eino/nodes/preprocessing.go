// Package nodes 提供分诊 Graph 中使用的节点逻辑：症状向量化、疾病解析与风险评估
package nodes

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"pharma-triage/internal/domain/models"
)

// maxNormalizeRounds 规范化收敛的最大轮数，正常输入一轮即稳定
const maxNormalizeRounds = 4

// NormalizeSymptom 将任意症状文本规范化为词表可比较的标识。
// 依次执行 NFKC 归一、移除控制字符、去除首尾空白、转小写，并把连续的空白或连字符折叠为一个下划线。
// 对任意输入都有定义（空串得到空标识），且幂等。
func NormalizeSymptom(s string) models.SymptomToken {
	for i := 0; i < maxNormalizeRounds; i++ {
		next := normalizeOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return models.SymptomToken(s)
}

// NormalizeSymptoms 批量规范化，返回去重后的症状集合
func NormalizeSymptoms(symptoms []string) map[models.SymptomToken]struct{} {
	set := make(map[models.SymptomToken]struct{}, len(symptoms))
	for _, s := range symptoms {
		set[NormalizeSymptom(s)] = struct{}{}
	}
	return set
}

func normalizeOnce(s string) string {
	s = norm.NFKC.String(s)
	s = removeControlChars(s)
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return collapseSeparators(s)
}

// collapseSeparators 将连续的空白字符与连字符折叠为单个下划线
func collapseSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSep := false
	for _, r := range s {
		if unicode.IsSpace(r) || r == '-' {
			if !inSep {
				b.WriteRune('_')
				inSep = true
			}
			continue
		}
		inSep = false
		b.WriteRune(r)
	}
	return b.String()
}

// removeControlChars 移除不可打印控制字符（保留空白，交给后续折叠处理）
func removeControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Vectorizer 将症状列表转换为与词表对齐的特征向量
type Vectorizer struct {
	vocab *models.Vocabulary
}

// NewVectorizer 创建向量化器
func NewVectorizer(vocab *models.Vocabulary) *Vectorizer {
	return &Vectorizer{vocab: vocab}
}

// Vectorize 生成特征向量，长度恒等于词表长度，未命中的症状被忽略
func (v *Vectorizer) Vectorize(symptoms []string) models.FeatureVector {
	vec := make(models.FeatureVector, v.vocab.Len())
	for token := range NormalizeSymptoms(symptoms) {
		if i, ok := v.vocab.Index(token); ok {
			vec[i] = 1
		}
	}
	return vec
}

// Dimension 特征维度
func (v *Vectorizer) Dimension() int {
	return v.vocab.Len()
}
