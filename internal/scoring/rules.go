package scoring

import (
	"regexp"
	"slices"

	"github.com/nichefood/backend/internal/domain"
)

// Severity tags how serious a warning rule is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Rule is a single entry of a rule table. The same record covers every rule
// shape: plain matches, species-restricted matches, display-only info rules
// and present/absent requirement rules (MissingMessage set).
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Score    int
	Message  string
	Severity Severity
	Species  []domain.Species // empty means any species
	Info     bool             // message only, no score change

	MissingMessage string
	MissingScore   int
}

// Matches reports whether the rule's pattern occurs in text.
func (r Rule) Matches(text string) bool {
	return r.Pattern.MatchString(text)
}

// AppliesTo reports whether the rule is enabled for the given species.
func (r Rule) AppliesTo(species domain.Species) bool {
	return len(r.Species) == 0 || slices.Contains(r.Species, species)
}

// Allergen is a named allergen category with its detection pattern.
type Allergen struct {
	Name    string
	Pattern *regexp.Regexp
}

// LifeStageRules groups the keywords and rules of one life stage.
type LifeStageRules struct {
	Stage    domain.LifeStage
	Keywords []string
	Quality  []Rule
	Warnings []Rule
}

// SpeciesRules groups the required nutrients and toxic ingredients of one species.
type SpeciesRules struct {
	Species  domain.Species
	Required []Rule
	Harmful  []Rule
}

type gradeBonus struct {
	Grade string
	Score int
}

func pattern(expr string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + expr)
}

var harmfulIngredients = []Rule{
	{
		Name:     "preservatives",
		Pattern:  pattern(`\b(?:bha|bht|ethoxyquin|tbhq|propyl gallate)\b`),
		Score:    -20,
		Message:  "⚠️ Contains potentially harmful preservatives",
		Severity: SeverityHigh,
	},
	{
		Name:     "propyleneGlycol",
		Pattern:  pattern(`\bpropylene glycol\b`),
		Score:    -15,
		Message:  "⚠️ Contains propylene glycol (toxic to cats)",
		Severity: SeverityHigh,
		Species:  []domain.Species{domain.SpeciesCat}, // unknown species skips this rule too
	},
	{
		Name:     "artificialColors",
		Pattern:  pattern(`\b(?:red 40|yellow 5|yellow 6|blue 2|caramel color)\b`),
		Score:    -10,
		Message:  "✗ Contains artificial colors",
		Severity: SeverityMedium,
	},
	{
		Name:     "addedSugars",
		Pattern:  pattern(`\b(?:corn syrup|sugar|fructose|sucrose|dextrose|molasses)\b`),
		Score:    -10,
		Message:  "✗ Contains added sugars",
		Severity: SeverityMedium,
	},
	{
		Name:     "cheapFillers",
		Pattern:  pattern(`\b(?:corn gluten|wheat gluten|soy protein|cellulose)\b`),
		Score:    -8,
		Message:  "✗ Contains cheap fillers",
		Severity: SeverityLow,
	},
	{
		Name:     "meatByProducts",
		Pattern:  pattern(`\b(?:by-?products?|meat meal|bone meal|animal digest)\b`),
		Score:    -15,
		Message:  "✗ Contains meat by-products or low-quality protein",
		Severity: SeverityMedium,
	},
}

var qualityIngredients = []Rule{
	{
		Name:    "freshMeat",
		Pattern: pattern(`\b(?:fresh |deboned |raw )?(?:chicken|turkey|beef|lamb|salmon|duck|venison|rabbit)\b`),
		Score:   15,
		Message: "✓ Contains quality meat protein",
	},
	{
		Name:    "namedMeatMeal",
		Pattern: pattern(`\b(?:chicken|turkey|beef|lamb|salmon|duck|fish) meal\b`),
		Score:   8,
		Message: "✓ Contains named meat meal",
	},
	{
		Name:    "wholeGrains",
		Pattern: pattern(`\b(?:whole grain|brown rice|oatmeal|barley|quinoa)\b`),
		Score:   8,
		Message: "✓ Contains whole grains",
	},
	{
		Name:    "healthyFats",
		Pattern: pattern(`\b(?:salmon oil|fish oil|flaxseed|coconut oil|chicken fat)\b`),
		Score:   8,
		Message: "✓ Contains healthy fats",
	},
	{
		// no trailing boundary so "blueberries" matches
		Name:    "vegetables",
		Pattern: pattern(`\b(?:sweet potato|pumpkin|carrots?|peas|spinach|blueberr)`),
		Score:   6,
		Message: "✓ Contains vegetables/fruits",
	},
	{
		Name:    "probiotics",
		Pattern: pattern(`\b(?:probiotics?|lactobacillus|bifidobacterium|dried fermentation)\b`),
		Score:   6,
		Message: "✓ Contains probiotics for digestive health",
	},
	{
		Name:    "organic",
		Pattern: pattern(`\borganics?\b`),
		Score:   5,
		Message: "✓ Contains organic ingredients",
	},
	{
		Name:    "grainFree",
		Pattern: pattern(`\bgrain.?free\b`),
		Message: "ℹ️ Grain-free formula",
		Info:    true,
	},
}

var allergens = []Allergen{
	{Name: "chicken", Pattern: pattern(`\bchicken\b`)},
	{Name: "beef", Pattern: pattern(`\bbeef\b`)},
	{Name: "dairy", Pattern: pattern(`\b(?:dairy|milk|cheese|lactose|whey)\b`)},
	{Name: "wheat", Pattern: pattern(`\bwheat\b`)},
	{Name: "soy", Pattern: pattern(`\bsoy\b`)},
	{Name: "corn", Pattern: pattern(`\bcorn\b`)},
	{Name: "eggs", Pattern: pattern(`\beggs?\b`)},
	{Name: "fish", Pattern: pattern(`\b(?:fish|salmon|tuna)\b`)},
}

var (
	dhaRule = Rule{
		Name:    "dha",
		Pattern: pattern(`\b(?:dha|docosahexaenoic)\b`),
		Score:   8,
		Message: "✓ Contains DHA for brain development",
	}
	highProteinRule = Rule{
		Name:    "highProtein",
		Pattern: pattern(`\b(?:high protein|protein.rich)\b`),
		Score:   5,
		Message: "✓ High protein formula for growth",
	}
	lowCaloriePattern = pattern(`\b(?:low calorie|diet|weight management|light)\b`)
)

// Declaration order is detection priority: puppy wins over kitten on the
// shared growth keywords.
var lifeStages = []LifeStageRules{
	{
		Stage:    domain.LifeStagePuppy,
		Keywords: []string{"puppy", "puppies", "junior", "growth", "starter"},
		Quality: []Rule{
			dhaRule,
			{
				Name:    "calcium",
				Pattern: pattern(`\bcalcium\b`),
				Score:   5,
				Message: "✓ Contains calcium for bone growth",
			},
			highProteinRule,
		},
		Warnings: []Rule{
			{
				Name:     "lowCalorie",
				Pattern:  lowCaloriePattern,
				Score:    -10,
				Message:  "⚠️ Low-calorie formulas not ideal for growing puppies",
				Severity: SeverityMedium,
			},
		},
	},
	{
		Stage:    domain.LifeStageKitten,
		Keywords: []string{"kitten", "kittens", "junior", "growth", "starter"},
		Quality:  []Rule{dhaRule, highProteinRule},
		Warnings: []Rule{
			{
				Name:     "lowCalorie",
				Pattern:  lowCaloriePattern,
				Score:    -10,
				Message:  "⚠️ Low-calorie formulas not ideal for growing kittens",
				Severity: SeverityMedium,
			},
		},
	},
	{
		Stage:    domain.LifeStageSenior,
		Keywords: []string{"senior", "mature", "aged", "7+", "8+", "10+", "11+", "older"},
		Quality: []Rule{
			{
				Name:    "glucosamine",
				Pattern: pattern(`\b(?:glucosamine|chondroitin|joint)\b`),
				Score:   8,
				Message: "✓ Contains joint support ingredients",
			},
			{
				Name:    "antioxidants",
				Pattern: pattern(`\b(?:antioxidant|vitamin e|vitamin c|selenium)\b`),
				Score:   5,
				Message: "✓ Contains antioxidants for immune support",
			},
			{
				Name:    "easyDigest",
				Pattern: pattern(`\b(?:easy digest|sensitive|gentle)\b`),
				Score:   5,
				Message: "✓ Easy-to-digest formula",
			},
		},
		Warnings: []Rule{
			{
				Name:     "highFat",
				Pattern:  pattern(`\b(?:high fat|extra energy)\b`),
				Score:    -5,
				Message:  "ℹ️ High-fat content may not be ideal for less active seniors",
				Severity: SeverityLow,
			},
		},
	},
	{
		Stage:    domain.LifeStageAdult,
		Keywords: []string{"adult", "maintenance"},
	},
}

var speciesRequirements = []SpeciesRules{
	{
		Species: domain.SpeciesCat,
		Required: []Rule{
			{
				Name:           "taurine",
				Pattern:        pattern(`\btaurine\b`),
				Score:          10,
				Message:        "✓ Contains taurine (essential for cats)",
				MissingMessage: "⚠️ No taurine listed (essential for cats)",
				MissingScore:   -15,
				Severity:       SeverityHigh,
			},
			{
				Name:           "animalProtein",
				Pattern:        pattern(`\b(?:chicken|turkey|beef|lamb|salmon|duck|fish|meat)\b`),
				MissingMessage: "⚠️ Cats require animal protein as primary ingredient",
				MissingScore:   -20,
				Severity:       SeverityHigh,
			},
		},
		Harmful: []Rule{
			{
				Name:     "onion",
				Pattern:  pattern(`\bonions?\b`),
				Score:    -25,
				Message:  "☠️ Contains onion (toxic to cats)",
				Severity: SeverityHigh,
			},
			{
				Name:     "garlic",
				Pattern:  pattern(`\bgarlic\b`),
				Score:    -15,
				Message:  "⚠️ Contains garlic (harmful to cats)",
				Severity: SeverityMedium,
			},
		},
	},
	{
		Species: domain.SpeciesDog,
		Harmful: []Rule{
			{
				Name:     "xylitol",
				Pattern:  pattern(`\bxylitol\b`),
				Score:    -30,
				Message:  "☠️ Contains xylitol (extremely toxic to dogs)",
				Severity: SeverityHigh,
			},
			{
				Name:     "grapes",
				Pattern:  pattern(`\b(?:grapes?|raisins?)\b`),
				Score:    -25,
				Message:  "☠️ Contains grapes/raisins (toxic to dogs)",
				Severity: SeverityHigh,
			},
			{
				Name:     "onion",
				Pattern:  pattern(`\bonions?\b`),
				Score:    -20,
				Message:  "⚠️ Contains onion (harmful to dogs)",
				Severity: SeverityMedium,
			},
			{
				Name:     "garlic",
				Pattern:  pattern(`\bgarlic\b`),
				Score:    -5,
				Message:  "ℹ️ Contains garlic (small amounts may be okay for dogs)",
				Severity: SeverityLow,
			},
		},
	},
}

var nutriScoreBonuses = []gradeBonus{
	{Grade: "a", Score: 10},
	{Grade: "b", Score: 5},
	{Grade: "c", Score: 0},
	{Grade: "d", Score: -5},
	{Grade: "e", Score: -10},
}

// rulesForSpecies returns the species table, or nil for unknown species.
func rulesForSpecies(species domain.Species) *SpeciesRules {
	for i := range speciesRequirements {
		if speciesRequirements[i].Species == species {
			return &speciesRequirements[i]
		}
	}
	return nil
}

// rulesForLifeStage returns the life-stage table, or nil for unknown stages.
func rulesForLifeStage(stage domain.LifeStage) *LifeStageRules {
	for i := range lifeStages {
		if lifeStages[i].Stage == stage {
			return &lifeStages[i]
		}
	}
	return nil
}

// nutriScoreBonus returns the score delta for a lowercase grade.
func nutriScoreBonus(grade string) (int, bool) {
	for _, b := range nutriScoreBonuses {
		if b.Grade == grade {
			return b.Score, true
		}
	}
	return 0, false
}
