// Package stats provides payment and transaction history aggregation.
package stats

import (
	"context"
	"fmt"

	"github.com/opensource-finance/heron/internal/domain"
)

// AggregatePayments reduces a client's payment history into summary
// statistics. An empty history yields the zero value, not an error;
// downstream scoring treats zero history as its own penalized case.
func AggregatePayments(records []*domain.PaymentRecord) domain.PaymentStatistics {
	var s domain.PaymentStatistics
	s.Total = len(records)
	if s.Total == 0 {
		return s
	}

	onTime := 0
	daysLateSum := 0
	for _, rec := range records {
		switch rec.Status {
		case domain.PaymentOnTime:
			onTime++
		case domain.PaymentLate:
			s.LateCount++
		case domain.PaymentDefault:
			s.DefaultCount++
		}
		daysLateSum += rec.DaysLate
	}

	s.AvgDaysLate = float64(daysLateSum) / float64(s.Total)
	s.OnTimeRate = float64(onTime) / float64(s.Total) * 100
	return s
}

// AggregateTransactions reduces a client's bank transactions into summary
// statistics. Missing transactions yield zero values.
func AggregateTransactions(records []*domain.TransactionRecord) domain.TransactionStatistics {
	var s domain.TransactionStatistics
	s.TransactionCount = len(records)
	if s.TransactionCount == 0 {
		return s
	}

	balanceSum := 0.0
	for _, rec := range records {
		balanceSum += rec.BalanceAfter
		switch rec.Type {
		case domain.TransactionCredit:
			s.TotalCredits += rec.Amount
		case domain.TransactionDebit:
			s.TotalDebits += rec.Amount
		}
	}

	s.AvgBalance = balanceSum / float64(s.TransactionCount)
	return s
}

// Service fetches a client's historical records from the repository and
// aggregates them. It has no side effects.
type Service struct {
	repo domain.Repository
}

// NewService creates a new statistics service.
func NewService(repo domain.Repository) *Service {
	return &Service{repo: repo}
}

// PaymentStatistics returns the payment-history aggregate for a client.
func (s *Service) PaymentStatistics(ctx context.Context, clientID string) (domain.PaymentStatistics, error) {
	if clientID == "" {
		return domain.PaymentStatistics{}, fmt.Errorf("clientID is required")
	}

	records, err := s.repo.ListPaymentRecords(ctx, clientID)
	if err != nil {
		return domain.PaymentStatistics{}, fmt.Errorf("failed to list payment records: %w", err)
	}
	return AggregatePayments(records), nil
}

// TransactionStatistics returns the bank-transaction aggregate for a client.
func (s *Service) TransactionStatistics(ctx context.Context, clientID string) (domain.TransactionStatistics, error) {
	if clientID == "" {
		return domain.TransactionStatistics{}, fmt.Errorf("clientID is required")
	}

	records, err := s.repo.ListTransactionRecords(ctx, clientID)
	if err != nil {
		return domain.TransactionStatistics{}, fmt.Errorf("failed to list transaction records: %w", err)
	}
	return AggregateTransactions(records), nil
}
