package scoring

import (
	"github.com/opensource-finance/heron/internal/domain"
)

// Recommend maps a score and its key risk flags to an advisory decision
// with a confidence percentage. First matching branch wins. The result
// never transitions a demand's workflow status; a human decision step
// remains authoritative.
func Recommend(score int, f domain.FeatureSet) (domain.Recommendation, float64) {
	hasDefaults := f.DefaultPayments > 0
	highDebt := f.DebtRatio > 50

	switch {
	case score >= 800 && !hasDefaults:
		return domain.RecommendAutoApprove, 95
	case score >= 700 && !hasDefaults && !highDebt:
		return domain.RecommendManualReview, 85
	case score >= 550 && !hasDefaults:
		return domain.RecommendManualReview, 75
	case score < 400 || f.DefaultPayments >= 2 || highDebt:
		return domain.RecommendAutoReject, 90
	default:
		return domain.RecommendManualReview, 65
	}
}
