package openfoodfacts

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nichefood/backend/internal/domain"
)

// productResponse is the envelope of GET /api/v2/product/{barcode}.json
type productResponse struct {
	Code          string      `json:"code"`
	Status        int         `json:"status"`
	StatusVerbose string      `json:"status_verbose"`
	Product       *offProduct `json:"product"`
}

type offProduct struct {
	Code              string          `json:"code"`
	ProductName       string          `json:"product_name"`
	ProductNameEn     string          `json:"product_name_en"`
	GenericName       string          `json:"generic_name"`
	Brands            string          `json:"brands"`
	Categories        string          `json:"categories"`
	IngredientsText   string          `json:"ingredients_text"`
	IngredientsTextEn string          `json:"ingredients_text_en"`
	NutriScoreGrade   string          `json:"nutriscore_grade"`
	NutriScoreData    *nutriScoreData `json:"nutriscore_data"`
	ImageURL          string          `json:"image_url"`
}

type nutriScoreData struct {
	Grade string `json:"grade"`
}

// MapToProductRecord converts an OpenFoodFacts product to our domain record.
// Names fall back product_name → product_name_en → generic_name, and
// ingredients fall back to the English text.
func MapToProductRecord(barcode string, p *offProduct) *domain.ProductRecord {
	code := strings.TrimSpace(p.Code)
	if code == "" {
		code = barcode
	}

	record := &domain.ProductRecord{
		Code:            code,
		ProductName:     firstNonEmpty(p.ProductName, p.ProductNameEn, p.GenericName),
		GenericName:     strings.TrimSpace(p.GenericName),
		Brands:          strings.TrimSpace(p.Brands),
		Categories:      strings.TrimSpace(p.Categories),
		IngredientsText: firstNonEmpty(p.IngredientsText, p.IngredientsTextEn),
		NutriScoreGrade: strings.ToLower(strings.TrimSpace(p.NutriScoreGrade)),
		ImageURL:        strings.TrimSpace(p.ImageURL),
	}

	if p.NutriScoreData != nil && p.NutriScoreData.Grade != "" {
		record.NutriScoreData = &domain.NutriScoreData{
			Grade: strings.ToLower(strings.TrimSpace(p.NutriScoreData.Grade)),
		}
	}

	return record
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// DecodeProduct parses a product document saved from OpenFoodFacts. Both the
// API envelope ({"status":1,"product":{...}}) and a bare product object are
// accepted.
func DecodeProduct(r io.Reader) (*domain.ProductRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading product: %w", err)
	}

	var envelope productResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: invalid product JSON: %v", domain.ErrInvalidRequest, err)
	}
	if envelope.Product != nil {
		return MapToProductRecord(envelope.Code, envelope.Product), nil
	}

	var product offProduct
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("%w: invalid product JSON: %v", domain.ErrInvalidRequest, err)
	}
	return MapToProductRecord("", &product), nil
}
