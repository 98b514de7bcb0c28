package scoring

import (
	"github.com/opensource-finance/heron/internal/domain"
)

// Calculator computes the integer credit score from a feature set. The
// function is deterministic: same features, same score.
type Calculator struct {
	policy domain.ScoringPolicy
}

// NewCalculator creates a calculator with the given policy.
func NewCalculator(policy domain.ScoringPolicy) *Calculator {
	return &Calculator{policy: policy}
}

// Compute applies the ordered adjustment categories to the base score and
// clamps the result to [0, 1000]. All adjustments are additive; the
// category order is preserved for auditability.
func (c *Calculator) Compute(f domain.FeatureSet) int {
	score := c.policy.BaseScore

	// Income and professional stability.
	switch income := f.MonthlyIncome; {
	case income >= 1_000_000:
		score += 150
	case income >= 500_000:
		score += 120
	case income >= 300_000:
		score += 90
	case income >= 150_000:
		score += 60
	case income >= 75_000:
		score += 30
	default:
		score -= 50
	}

	switch seniority := f.SeniorityYears; {
	case seniority >= 10:
		score += 80
	case seniority >= 5:
		score += 60
	case seniority >= 3:
		score += 40
	case seniority >= 1:
		score += 20
	default:
		score -= 30
	}

	switch domain.EmploymentStatus(f.EmploymentStatus) {
	case domain.EmploymentCivilServant:
		score += 50
	case domain.EmploymentEmployee:
		score += 30
	case domain.EmploymentSelfEmployed:
		score += 10
	default:
		score -= 100
	}

	// Indebtedness.
	switch ratio := f.DebtRatio; {
	case ratio < 15:
		score += 125
	case ratio < 25:
		score += 100
	case ratio < 33:
		score += 50
	case ratio < 40:
		score -= 50
	case ratio < 50:
		score -= 100
	default:
		score -= 200
	}

	switch capacity := f.PaymentCapacity; {
	case capacity < 20:
		score += 80
	case capacity < 30:
		score += 50
	case capacity < 40:
		score += 20
	case capacity < 60:
		score -= 30
	default:
		score -= 100
	}

	// Payment history.
	switch defaults := f.DefaultPayments; {
	case defaults >= 3:
		score -= 400
	case defaults == 2:
		score -= 300
	case defaults == 1:
		score -= 200
	}

	if f.TotalPayments > 0 {
		switch rate := f.OnTimeRate; {
		case rate >= 95:
			score += 150
		case rate >= 85:
			score += 100
		case rate >= 75:
			score += 50
		case rate >= 60:
			score -= 50
		default:
			score -= 150
		}
	} else {
		// No history is penalized, not neutral.
		score -= 50
	}

	switch late := f.AvgDaysLate; {
	case late > 30:
		score -= 100
	case late > 15:
		score -= 50
	case late > 7:
		score -= 20
	}

	// Bank relationship seniority.
	switch months := f.BankSeniorityMonths; {
	case months >= 60:
		score += 60
	case months >= 36:
		score += 45
	case months >= 24:
		score += 30
	case months >= 12:
		score += 15
	default:
		score -= 20
	}

	// Loan characteristics.
	switch lti := f.LoanToIncome; {
	case lti < 0.2:
		score += 40
	case lti < 0.4:
		score += 20
	case lti < 0.6:
		// neutral band
	case lti < 0.8:
		score -= 30
	default:
		score -= 80
	}

	switch ratio := f.AmountToAnnualIncome; {
	case ratio < 0.5:
		score += 30
	case ratio < 1:
		score += 15
	case ratio < 2:
		// neutral band
	case ratio < 4:
		score -= 40
	default:
		score -= 100
	}

	switch domain.CreditType(f.CreditType) {
	case domain.CreditRealEstate:
		score += 20
	case domain.CreditAuto:
		score += 10
	}

	// Banking behavior.
	switch balance := f.AvgBalance; {
	case balance > 1_000_000:
		score += 40
	case balance > 500_000:
		score += 25
	case balance > 200_000:
		score += 15
	}

	// Age band, peaking at 30-50.
	switch age := f.Age; {
	case age >= 30 && age <= 50:
		score += 20
	case (age >= 25 && age < 30) || (age > 50 && age <= 55):
		score += 10
	case age < 25:
		score -= 30
	case age > 60:
		score -= 40
	}

	// Family load.
	switch deps := f.Dependents; {
	case deps == 0:
		score += 10
	case deps <= 2:
		// neutral band
	case deps <= 4:
		score -= 20
	default:
		score -= 40
	}

	return clamp(score, 0, 1000)
}

// ClassifyRisk maps a score value to its risk tier. Band boundaries are
// inclusive on the lower edge.
func ClassifyRisk(score int) domain.RiskLevel {
	switch {
	case score >= 750:
		return domain.RiskLow
	case score >= 550:
		return domain.RiskMedium
	case score >= 350:
		return domain.RiskHigh
	default:
		return domain.RiskVeryHigh
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
