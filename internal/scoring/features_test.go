package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/opensource-finance/heron/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.0001
}

func TestExtractRatios(t *testing.T) {
	extractor := NewExtractor(domain.DefaultScoringPolicy())
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	profile := &domain.ClientProfile{
		ClientID:      "c1",
		BirthDate:     now.AddDate(-40, 0, 0),
		MonthlyIncome: 1_000_000,
	}
	demand := &domain.CreditDemand{
		ID:             "d1",
		ClientID:       "c1",
		Amount:         1_200_000,
		DurationMonths: 12,
	}

	f := extractor.Extract(profile, demand, domain.PaymentStatistics{}, domain.TransactionStatistics{}, now)

	if !almostEqual(f.LoanToIncome, 0.1) {
		t.Errorf("expected loan-to-income 0.1, got %f", f.LoanToIncome)
	}
	if !almostEqual(f.AmountToAnnualIncome, 0.1) {
		t.Errorf("expected amount-to-annual 0.1, got %f", f.AmountToAnnualIncome)
	}
	// Installment is amount/months inflated by the interest factor:
	// 100000 * 1.08 = 108000, so capacity is 10.8% of the 1M available.
	if !almostEqual(f.PaymentCapacity, 10.8) {
		t.Errorf("expected payment capacity 10.8, got %f", f.PaymentCapacity)
	}
	if math.Abs(f.Age-40) > 0.1 {
		t.Errorf("expected age ~40, got %f", f.Age)
	}
}

func TestExtractZeroIncomeSentinels(t *testing.T) {
	policy := domain.DefaultScoringPolicy()
	extractor := NewExtractor(policy)
	now := time.Now().UTC()

	profile := &domain.ClientProfile{
		ClientID:      "c1",
		BirthDate:     now.AddDate(-30, 0, 0),
		MonthlyIncome: 0,
	}
	demand := &domain.CreditDemand{
		ID:             "d1",
		ClientID:       "c1",
		Amount:         500_000,
		DurationMonths: 12,
	}

	f := extractor.Extract(profile, demand, domain.PaymentStatistics{}, domain.TransactionStatistics{}, now)

	if f.LoanToIncome != policy.RatioSentinel {
		t.Errorf("expected ratio sentinel %f, got %f", policy.RatioSentinel, f.LoanToIncome)
	}
	if f.AmountToAnnualIncome != policy.RatioSentinel {
		t.Errorf("expected ratio sentinel %f, got %f", policy.RatioSentinel, f.AmountToAnnualIncome)
	}
	if f.PaymentCapacity != policy.CapacitySentinel {
		t.Errorf("expected capacity sentinel %f, got %f", policy.CapacitySentinel, f.PaymentCapacity)
	}
}

func TestExtractCarriesHistoryAggregates(t *testing.T) {
	extractor := NewExtractor(domain.DefaultScoringPolicy())
	now := time.Now().UTC()

	profile := &domain.ClientProfile{
		ClientID:           "c1",
		BirthDate:          now.AddDate(-35, 0, 0),
		MonthlyIncome:      500_000,
		MonthlyDebtPayment: 100_000,
	}
	demand := &domain.CreditDemand{
		ID:             "d1",
		ClientID:       "c1",
		CreditType:     domain.CreditAuto,
		Amount:         2_000_000,
		DurationMonths: 24,
	}
	payments := domain.PaymentStatistics{
		Total:        20,
		LateCount:    2,
		DefaultCount: 1,
		AvgDaysLate:  3.5,
		OnTimeRate:   85,
	}
	transactions := domain.TransactionStatistics{
		AvgBalance:       750_000,
		TotalCredits:     5_000_000,
		TotalDebits:      4_200_000,
		TransactionCount: 60,
	}

	f := extractor.Extract(profile, demand, payments, transactions, now)

	if f.TotalPayments != 20 || f.LatePayments != 2 || f.DefaultPayments != 1 {
		t.Errorf("payment aggregates not carried: %+v", f)
	}
	if f.OnTimeRate != 85 || f.AvgDaysLate != 3.5 {
		t.Errorf("payment rates not carried: %+v", f)
	}
	if f.AvgBalance != 750_000 || f.TransactionCount != 60 {
		t.Errorf("transaction aggregates not carried: %+v", f)
	}
	if !almostEqual(f.DebtRatio, 20) {
		t.Errorf("expected debt ratio 20, got %f", f.DebtRatio)
	}
	if f.CreditType != string(domain.CreditAuto) {
		t.Errorf("expected credit type AUTO, got %s", f.CreditType)
	}
}
