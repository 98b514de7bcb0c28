// Package scoring implements the credit scoring pipeline: feature
// extraction, weighted score computation, risk classification, factor
// explanation and recommendation generation.
package scoring

import (
	"time"

	"github.com/opensource-finance/heron/internal/domain"
)

// Extractor converts a (profile, demand, history) triple into the fixed
// feature bundle consumed by the calculator and the explainer.
type Extractor struct {
	policy domain.ScoringPolicy
}

// NewExtractor creates a feature extractor with the given policy.
func NewExtractor(policy domain.ScoringPolicy) *Extractor {
	return &Extractor{policy: policy}
}

// Extract builds the feature set for a demand as of the given time.
// The caller guarantees profile is non-nil; the missing-profile fallback is
// handled one level up (see Service.ScoreDemand).
func (e *Extractor) Extract(profile *domain.ClientProfile, demand *domain.CreditDemand, payments domain.PaymentStatistics, transactions domain.TransactionStatistics, now time.Time) domain.FeatureSet {
	income := profile.MonthlyIncome

	// Ratios guard against non-positive income with the policy sentinel
	// instead of dividing by zero.
	loanToIncome := e.policy.RatioSentinel
	amountToAnnual := e.policy.RatioSentinel
	if income > 0 {
		loanToIncome = demand.Amount / float64(demand.DurationMonths) / income
		amountToAnnual = demand.Amount / (income * 12)
	}

	installment := demand.Amount / float64(demand.DurationMonths) * e.policy.InstallmentFactor
	available := income - profile.MonthlyDebtPayment
	capacity := e.policy.CapacitySentinel
	if available > 0 {
		capacity = installment / available * 100
	}

	return domain.FeatureSet{
		Age:           profile.Age(now),
		Dependents:    profile.Dependents,
		MaritalStatus: string(profile.MaritalStatus),

		EmploymentStatus: string(profile.EmploymentStatus),
		MonthlyIncome:    income,
		SeniorityYears:   profile.SeniorityYears,
		Sector:           profile.Sector,

		DebtRatio:           profile.DebtRatio(),
		ExistingCredits:     profile.ExistingCredits,
		MonthlyDebtPayment:  profile.MonthlyDebtPayment,
		BankSeniorityMonths: profile.BankSeniorityMonths,
		AvailableIncome:     available,
		PaymentCapacity:     capacity,

		RequestedAmount:      demand.Amount,
		DurationMonths:       demand.DurationMonths,
		LoanToIncome:         loanToIncome,
		AmountToAnnualIncome: amountToAnnual,
		CreditType:           string(demand.CreditType),

		TotalPayments:   payments.Total,
		LatePayments:    payments.LateCount,
		DefaultPayments: payments.DefaultCount,
		AvgDaysLate:     payments.AvgDaysLate,
		OnTimeRate:      payments.OnTimeRate,

		AvgBalance:       transactions.AvgBalance,
		TotalCredits:     transactions.TotalCredits,
		TotalDebits:      transactions.TotalDebits,
		TransactionCount: transactions.TransactionCount,
	}
}
