package scoring

import (
	"strings"

	"github.com/nichefood/backend/internal/domain"
)

var (
	catKeywords     = []string{"cat", "kitten", "feline"}
	dogKeywords     = []string{"dog", "puppy", "canine"}
	petFoodKeywords = []string{"cat", "dog", "pet", "animal", "kitten", "puppy", "feline", "canine"}
)

// metadataText joins categories, product name and generic name in lowercase.
func metadataText(product *domain.ProductRecord) string {
	if product == nil {
		return ""
	}
	return strings.ToLower(strings.Join([]string{
		product.Categories,
		product.ProductName,
		product.GenericName,
	}, " "))
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// DetectSpecies infers the target species from product metadata. Cat
// keywords are checked before dog keywords; the zero Species means unknown.
func DetectSpecies(product *domain.ProductRecord) domain.Species {
	text := metadataText(product)
	if containsAny(text, catKeywords) {
		return domain.SpeciesCat
	}
	if containsAny(text, dogKeywords) {
		return domain.SpeciesDog
	}
	return ""
}

// DetectLifeStage returns the first life stage, in table order, whose
// keywords appear in the product metadata. Defaults to adult.
func DetectLifeStage(product *domain.ProductRecord) domain.LifeStage {
	text := metadataText(product)
	for _, stage := range lifeStages {
		if containsAny(text, stage.Keywords) {
			return stage.Stage
		}
	}
	return domain.LifeStageAdult
}

// DetectAllergens returns every allergen category found in the raw
// ingredient text, in allergen table order.
func DetectAllergens(ingredientsText string) []string {
	detected := []string{}
	for _, allergen := range allergens {
		if allergen.Pattern.MatchString(ingredientsText) {
			detected = append(detected, allergen.Name)
		}
	}
	return detected
}

// IsPetFood reports whether the product metadata mentions a pet keyword.
// Callers use it to skip assessment of non-pet products.
func IsPetFood(product *domain.ProductRecord) bool {
	return containsAny(metadataText(product), petFoodKeywords)
}
