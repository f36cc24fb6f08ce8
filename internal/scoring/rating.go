package scoring

import "github.com/nichefood/backend/internal/domain"

const (
	baseScore = 50
	minScore  = 0
	maxScore  = 100
)

// ClampScore bounds a raw score to [0,100].
func ClampScore(score int) int {
	return max(minScore, min(maxScore, score))
}

// Classify maps a clamped score to its rating band. Lower bounds are inclusive.
func Classify(score int) domain.Rating {
	switch {
	case score >= 80:
		return domain.RatingExcellent
	case score >= 60:
		return domain.RatingGood
	case score >= 40:
		return domain.RatingAverage
	default:
		return domain.RatingPoor
	}
}
