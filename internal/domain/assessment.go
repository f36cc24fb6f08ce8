package domain

import "strings"

// Species is the animal a product is formulated for. The zero value means unknown.
type Species string

const (
	SpeciesCat Species = "cat"
	SpeciesDog Species = "dog"
)

// Valid reports whether s is a supported species.
func (s Species) Valid() bool {
	return s == SpeciesCat || s == SpeciesDog
}

// ParseSpecies normalizes user input. Unsupported values yield the zero Species.
func ParseSpecies(s string) Species {
	species := Species(strings.ToLower(strings.TrimSpace(s)))
	if !species.Valid() {
		return ""
	}
	return species
}

// LifeStage is the developmental category of the pet.
type LifeStage string

const (
	LifeStagePuppy  LifeStage = "puppy"
	LifeStageKitten LifeStage = "kitten"
	LifeStageAdult  LifeStage = "adult"
	LifeStageSenior LifeStage = "senior"
)

// Valid reports whether l is a supported life stage.
func (l LifeStage) Valid() bool {
	switch l {
	case LifeStagePuppy, LifeStageKitten, LifeStageAdult, LifeStageSenior:
		return true
	}
	return false
}

// ParseLifeStage normalizes user input. Unsupported values yield the zero LifeStage.
func ParseLifeStage(s string) LifeStage {
	stage := LifeStage(strings.ToLower(strings.TrimSpace(s)))
	if !stage.Valid() {
		return ""
	}
	return stage
}

// Rating is the qualitative band of an assessment score.
type Rating string

const (
	RatingExcellent Rating = "Excellent"
	RatingGood      Rating = "Good"
	RatingAverage   Rating = "Average"
	RatingPoor      Rating = "Poor"
)

// AssessOptions carries caller-supplied overrides for an assessment.
type AssessOptions struct {
	Species   Species   `json:"species,omitempty"`
	LifeStage LifeStage `json:"lifeStage,omitempty"`
	Allergies []string  `json:"allergies,omitempty"`
}

// AssessmentResult is the outcome of scoring one product.
type AssessmentResult struct {
	Score             int       `json:"score"` // 0-100
	Rating            Rating    `json:"rating"`
	Details           []string  `json:"details"` // positives, warnings, then allergy warnings
	Positives         []string  `json:"positives"`
	Warnings          []string  `json:"warnings"`
	AllergyWarnings   []string  `json:"allergyWarnings"`
	DetectedAllergens []string  `json:"detectedAllergens"`
	Species           Species   `json:"species,omitempty"`
	LifeStage         LifeStage `json:"lifeStage"`
	NutriScore        string    `json:"nutriScore,omitempty"`
	IngredientCount   int       `json:"ingredientCount"`
}

// HasAllergen reports whether name was detected, ignoring case.
func (r *AssessmentResult) HasAllergen(name string) bool {
	name = strings.ToLower(name)
	for _, allergen := range r.DetectedAllergens {
		if allergen == name {
			return true
		}
	}
	return false
}

// ProductAssessment bundles a product with its assessment as returned by the service.
type ProductAssessment struct {
	Barcode    string            `json:"barcode,omitempty"`
	Product    ProductRecord     `json:"product"`
	IsPetFood  bool              `json:"isPetFood"`
	Assessment *AssessmentResult `json:"assessment,omitempty"`
	Source     string            `json:"source,omitempty"` // "OpenFoodFacts", "Cache" or "Request"
}
