package knowledge

import (
	"encoding/json"
	"fmt"

	"pharma-triage/internal/domain/models"
)

// categoriesFile disease_categories.json
type categoriesFile struct {
	Green []string `json:"green"`
	Red   []string `json:"red"`
}

// otcFile otc_database.json
type otcFile struct {
	Diseases      map[string]models.OTCEntry `json:"comprehensive_otc_database"`
	Consultations map[string]string          `json:"red_category_consultations"`
}

// safetyFile safety_data.json
type safetyFile struct {
	Criteria map[string]*safetyEntry `json:"enhanced_beers_criteria"`
}

type safetyEntry struct {
	MinAge *float64 `json:"min_age"`
	MaxAge *float64 `json:"max_age"`
}

// LoadKnowledgeBase 解析三张参考表并构建只读知识库
func LoadKnowledgeBase(categoriesRaw, otcRaw, safetyRaw []byte) (*models.KnowledgeBase, error) {
	var categories categoriesFile
	if err := json.Unmarshal(categoriesRaw, &categories); err != nil {
		return nil, fmt.Errorf("%w: disease categories: %v", ErrLoad, err)
	}

	var otc otcFile
	if err := json.Unmarshal(otcRaw, &otc); err != nil {
		return nil, fmt.Errorf("%w: otc database: %v", ErrLoad, err)
	}

	var safety safetyFile
	if err := json.Unmarshal(safetyRaw, &safety); err != nil {
		return nil, fmt.Errorf("%w: safety data: %v", ErrLoad, err)
	}

	return models.NewKnowledgeBase(
		categories.Green,
		categories.Red,
		otc.Diseases,
		otc.Consultations,
		toSafetyTable(safety.Criteria),
	), nil
}

// toSafetyTable 转换年龄安全表。
// 空记录视为不存在（无条件安全）；缺失或为 0 的 min_age 取 0，缺失或为 0 的 max_age 取 120。
func toSafetyTable(criteria map[string]*safetyEntry) map[string]models.MedicationSafety {
	table := make(map[string]models.MedicationSafety, len(criteria))
	for med, entry := range criteria {
		if entry == nil || (entry.MinAge == nil && entry.MaxAge == nil) {
			continue
		}
		s := models.MedicationSafety{
			MinAge: models.DefaultMinSafeAge,
			MaxAge: models.DefaultMaxSafeAge,
		}
		if entry.MinAge != nil && *entry.MinAge != 0 {
			s.MinAge = *entry.MinAge
		}
		if entry.MaxAge != nil && *entry.MaxAge != 0 {
			s.MaxAge = *entry.MaxAge
		}
		table[med] = s
	}
	return table
}
