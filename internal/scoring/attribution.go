package scoring

import (
	"math/rand"

	"github.com/opensource-finance/heron/internal/domain"
)

// SimulateAttribution produces per-feature attribution values for display.
// The values are deliberately randomized approximations, not the output of
// a real attribution algorithm, and are excluded from the determinism
// guarantees of the scoring pipeline.
func SimulateAttribution(f domain.FeatureSet) map[string]int {
	attr := make(map[string]int, 5)

	if f.MonthlyIncome > 300_000 {
		attr["monthly_income"] = randBetween(80, 150)
	} else {
		attr["monthly_income"] = randBetween(-80, 40)
	}

	if f.DebtRatio > 40 {
		attr["debt_ratio"] = randBetween(-200, -100)
	} else {
		attr["debt_ratio"] = randBetween(50, 120)
	}

	if f.SeniorityYears > 5 {
		attr["seniority_years"] = randBetween(40, 80)
	} else {
		attr["seniority_years"] = randBetween(-40, 30)
	}

	if f.LatePayments > 0 {
		attr["payment_history"] = randBetween(-250, -80)
	} else {
		attr["payment_history"] = randBetween(100, 200)
	}

	attr["bank_seniority"] = randBetween(10, 50)

	return attr
}

// randBetween returns a value in [lo, hi).
func randBetween(lo, hi int) int {
	return lo + rand.Intn(hi-lo)
}
