package models

// Vocabulary 有序且唯一的症状词表，决定特征向量的维度与下标含义。
// 加载完成后只读，可被并发请求无锁共享。
type Vocabulary struct {
	tokens []SymptomToken
	index  map[SymptomToken]int
}

// NewVocabulary 根据已规范化、已去重的词条创建词表
func NewVocabulary(tokens []SymptomToken) *Vocabulary {
	v := &Vocabulary{
		tokens: make([]SymptomToken, len(tokens)),
		index:  make(map[SymptomToken]int, len(tokens)),
	}
	copy(v.tokens, tokens)
	for i, t := range v.tokens {
		v.index[t] = i
	}
	return v
}

// Len 词表长度
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Index 返回词条下标
func (v *Vocabulary) Index(token SymptomToken) (int, bool) {
	i, ok := v.index[token]
	return i, ok
}

// Tokens 返回词条副本
func (v *Vocabulary) Tokens() []SymptomToken {
	out := make([]SymptomToken, len(v.tokens))
	copy(out, v.tokens)
	return out
}
