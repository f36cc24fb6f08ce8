package scoring

import (
	"math"
	"regexp"
	"strings"
)

var ingredientSeparator = regexp.MustCompile(`[,;]`)

// IngredientToken is one entry of an ingredient list.
type IngredientToken struct {
	Text     string `json:"text"`     // lowercase, trimmed
	Position int    `json:"position"` // 1-based
}

// Tokenize splits raw ingredient text on commas and semicolons.
// Empty fragments are kept so positions match the source list.
func Tokenize(ingredientsText string) []IngredientToken {
	if ingredientsText == "" {
		return nil
	}

	parts := ingredientSeparator.Split(strings.ToLower(ingredientsText), -1)
	tokens := make([]IngredientToken, 0, len(parts))
	for i, part := range parts {
		tokens = append(tokens, IngredientToken{
			Text:     strings.TrimSpace(part),
			Position: i + 1,
		})
	}
	return tokens
}

// PositionWeight returns the multiplier for an ingredient at the given
// 1-based position. Earlier ingredients weigh more.
func PositionWeight(position int) float64 {
	switch {
	case position <= 3:
		return 1.5
	case position <= 5:
		return 1.2
	case position <= 10:
		return 1.0
	default:
		return 0.7
	}
}

// matchWeight returns the weight of the first token matching the rule, or 1
// when only the full text matched.
func matchWeight(rule Rule, tokens []IngredientToken) float64 {
	for _, token := range tokens {
		if rule.Matches(token.Text) {
			return PositionWeight(token.Position)
		}
	}
	return 1
}

// weightedScore scales delta and rounds halves toward positive infinity,
// so -22.5 becomes -22 and 22.5 becomes 23.
func weightedScore(delta int, weight float64) int {
	return int(math.Floor(float64(delta)*weight + 0.5))
}
