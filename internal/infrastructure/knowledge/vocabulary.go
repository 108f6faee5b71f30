// Package knowledge 负责解析词表与三张知识库参考表
package knowledge

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"pharma-triage/internal/domain/models"
	"pharma-triage/internal/eino/nodes"
)

// ErrLoad 制品缺失或格式错误，属于启动期致命错误
var ErrLoad = errors.New("artifact load failed")

// LoadVocabulary 解析症状词表。
// 支持字符串数组，或以键为词条的 JSON 对象（按文档中的键顺序）。
// 每个词条都经过与请求症状相同的规范化；规范化后重复的词条视为格式错误。
func LoadVocabulary(raw []byte) (*models.Vocabulary, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: vocabulary is not valid json", ErrLoad)
	}

	var entries []string
	var parseErr error
	root := gjson.ParseBytes(raw)

	switch {
	case root.IsArray():
		root.ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.String {
				parseErr = fmt.Errorf("%w: vocabulary item %d is not a string", ErrLoad, key.Int())
				return false
			}
			entries = append(entries, value.String())
			return true
		})
	case root.IsObject():
		root.ForEach(func(key, _ gjson.Result) bool {
			entries = append(entries, key.String())
			return true
		})
	default:
		return nil, fmt.Errorf("%w: vocabulary must be a list or mapping of strings", ErrLoad)
	}
	if parseErr != nil {
		return nil, parseErr
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: vocabulary is empty", ErrLoad)
	}

	tokens := make([]models.SymptomToken, 0, len(entries))
	seen := make(map[models.SymptomToken]string, len(entries))
	for _, entry := range entries {
		token := nodes.NormalizeSymptom(entry)
		if prev, ok := seen[token]; ok {
			return nil, fmt.Errorf("%w: vocabulary entries %q and %q normalize to the same token %q",
				ErrLoad, prev, entry, token)
		}
		seen[token] = entry
		tokens = append(tokens, token)
	}

	return models.NewVocabulary(tokens), nil
}

// LoadClasses 解析显式类别列表。
// 列表元素为字符串或数字，数字按其文本形式作为类别名。
func LoadClasses(raw []byte) ([]string, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: class list is not valid json", ErrLoad)
	}

	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: class list must be a json array", ErrLoad)
	}

	var classes []string
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String, gjson.Number:
			classes = append(classes, value.String())
			return true
		default:
			parseErr = fmt.Errorf("%w: class %d must be a string or number", ErrLoad, key.Int())
			return false
		}
	})
	if parseErr != nil {
		return nil, parseErr
	}

	return classes, nil
}
