package domain

// ProductRecord is the subset of an OpenFoodFacts product used for assessment.
// Absent fields are empty strings.
type ProductRecord struct {
	Code            string          `json:"code,omitempty"`
	ProductName     string          `json:"product_name,omitempty"`
	GenericName     string          `json:"generic_name,omitempty"`
	Brands          string          `json:"brands,omitempty"`
	Categories      string          `json:"categories,omitempty"`
	IngredientsText string          `json:"ingredients_text,omitempty"`
	NutriScoreGrade string          `json:"nutriscore_grade,omitempty"`
	NutriScoreData  *NutriScoreData `json:"nutriscore_data,omitempty"`
	ImageURL        string          `json:"image_url,omitempty"`
}

// NutriScoreData holds the nested Nutri-Score block some records carry
// instead of a top-level grade.
type NutriScoreData struct {
	Grade string `json:"grade,omitempty"`
}

// Grade returns the direct Nutri-Score grade, falling back to the nested one.
func (p *ProductRecord) Grade() string {
	if p == nil {
		return ""
	}
	if p.NutriScoreGrade != "" {
		return p.NutriScoreGrade
	}
	if p.NutriScoreData != nil {
		return p.NutriScoreData.Grade
	}
	return ""
}
