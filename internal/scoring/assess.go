// Package scoring implements the pet-food quality engine: rule tables,
// ingredient tokenization, species and life-stage detection and score
// aggregation. All functions are pure and safe for concurrent use.
package scoring

import (
	"fmt"
	"strings"

	"github.com/nichefood/backend/internal/domain"
)

// assessment accumulates score and messages while the rule passes run.
type assessment struct {
	score     int
	positives []string
	warnings  []string
}

func (a *assessment) positive(delta int, message string) {
	a.score += delta
	if message != "" {
		a.positives = append(a.positives, message)
	}
}

func (a *assessment) warning(delta int, message string) {
	a.score += delta
	if message != "" {
		a.warnings = append(a.warnings, message)
	}
}

// Assess scores a product. Overrides in opts take precedence over detection;
// unsupported override values fall back to the detectors. A nil product is
// treated as an empty record.
func Assess(product *domain.ProductRecord, opts domain.AssessOptions) domain.AssessmentResult {
	if product == nil {
		product = &domain.ProductRecord{}
	}

	ingredientsText := product.IngredientsText
	tokens := Tokenize(ingredientsText)

	species := opts.Species
	if !species.Valid() {
		species = DetectSpecies(product)
	}
	lifeStage := opts.LifeStage
	if !lifeStage.Valid() {
		lifeStage = DetectLifeStage(product)
	}
	detectedAllergens := DetectAllergens(ingredientsText)

	a := &assessment{
		score:     baseScore,
		positives: []string{},
		warnings:  []string{},
	}

	for _, rule := range harmfulIngredients {
		if !rule.Matches(ingredientsText) || !rule.AppliesTo(species) {
			continue
		}
		a.warning(weightedScore(rule.Score, matchWeight(rule, tokens)), rule.Message)
	}

	for _, rule := range qualityIngredients {
		if !rule.Matches(ingredientsText) {
			continue
		}
		delta := 0
		if !rule.Info {
			delta = weightedScore(rule.Score, matchWeight(rule, tokens))
		}
		a.positive(delta, rule.Message)
	}

	if reqs := rulesForSpecies(species); reqs != nil {
		// absence of a required nutrient is scored too
		for _, rule := range reqs.Required {
			if rule.Matches(ingredientsText) {
				a.positive(rule.Score, rule.Message)
			} else {
				a.warning(rule.MissingScore, rule.MissingMessage)
			}
		}
		for _, rule := range reqs.Harmful {
			if rule.Matches(ingredientsText) {
				a.warning(rule.Score, rule.Message)
			}
		}
	}

	if stage := rulesForLifeStage(lifeStage); stage != nil {
		for _, rule := range stage.Quality {
			if rule.Matches(ingredientsText) {
				a.positive(rule.Score, rule.Message)
			}
		}
		for _, rule := range stage.Warnings {
			if rule.Matches(ingredientsText) {
				a.warning(rule.Score, rule.Message)
			}
		}
	}

	nutriScore := strings.ToLower(product.Grade())
	if bonus, ok := nutriScoreBonus(nutriScore); ok {
		switch nutriScore {
		case "a", "b":
			a.positive(bonus, fmt.Sprintf("✓ Good Nutri-Score (%s)", strings.ToUpper(nutriScore)))
		case "d", "e":
			a.warning(bonus, fmt.Sprintf("⚠️ Poor Nutri-Score (%s)", strings.ToUpper(nutriScore)))
		default:
			a.score += bonus
		}
	}

	score := ClampScore(a.score)
	result := domain.AssessmentResult{
		Score:             score,
		Rating:            Classify(score),
		Positives:         a.positives,
		Warnings:          a.warnings,
		AllergyWarnings:   []string{},
		DetectedAllergens: detectedAllergens,
		Species:           species,
		LifeStage:         lifeStage,
		NutriScore:        nutriScore,
		IngredientCount:   len(tokens),
	}

	for _, allergy := range opts.Allergies {
		if result.HasAllergen(allergy) {
			result.AllergyWarnings = append(result.AllergyWarnings,
				fmt.Sprintf("⚠️ Contains %s (flagged allergen)", allergy))
		}
	}

	result.Details = make([]string, 0, len(a.positives)+len(a.warnings)+len(result.AllergyWarnings))
	result.Details = append(result.Details, a.positives...)
	result.Details = append(result.Details, a.warnings...)
	result.Details = append(result.Details, result.AllergyWarnings...)

	return result
}
