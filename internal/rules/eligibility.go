package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/repository"
)

// CheckProduct verifies a demand against a product's constraints and
// returns every violated constraint. profile may be nil (its checks are
// reported as an issue) and score may be nil (the score floor is skipped,
// mirroring the advisory nature of the score).
func CheckProduct(demand *domain.CreditDemand, profile *domain.ClientProfile, score *domain.Score, product *domain.CreditProduct) domain.EligibilityResult {
	issues := []string{}

	if demand.Amount < product.MinAmount || demand.Amount > product.MaxAmount {
		issues = append(issues, fmt.Sprintf("Montant non conforme (plage: %s - %s)",
			domain.FormatFCFA(product.MinAmount), domain.FormatFCFA(product.MaxAmount)))
	}

	if demand.DurationMonths < product.MinDurationMonths || demand.DurationMonths > product.MaxDurationMonths {
		issues = append(issues, fmt.Sprintf("Durée non conforme (plage: %d-%d mois)",
			product.MinDurationMonths, product.MaxDurationMonths))
	}

	if profile == nil {
		issues = append(issues, "Profil client manquant")
	} else {
		if profile.MonthlyIncome < product.MinIncomeRequired {
			issues = append(issues, fmt.Sprintf("Revenu insuffisant (requis: ≥ %s)",
				domain.FormatFCFA(product.MinIncomeRequired)))
		}
		if profile.DebtRatio() > product.MaxDebtRatio {
			issues = append(issues, fmt.Sprintf("Taux d'endettement trop élevé (max: %.0f%%)",
				product.MaxDebtRatio))
		}
	}

	if score != nil && score.ScoreValue < product.MinScoreRequired {
		issues = append(issues, fmt.Sprintf("Score insuffisant (requis: ≥ %d)", product.MinScoreRequired))
	}

	return domain.EligibilityResult{
		Eligible: len(issues) == 0,
		Issues:   issues,
	}
}

// CheckProductEligibility loads the demand, its client profile, its stored
// score and the product, then runs the product constraint checks.
func (e *Engine) CheckProductEligibility(ctx context.Context, demandID, productID string) (*domain.EligibilityResult, error) {
	demand, err := e.repo.GetDemand(ctx, demandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand %s: %w", demandID, err)
	}

	product, err := e.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	var profile *domain.ClientProfile
	p, err := e.repo.GetProfile(ctx, demand.ClientID)
	switch {
	case err == nil:
		profile = p
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load profile for client %s: %w", demand.ClientID, err)
	}

	var score *domain.Score
	s, err := e.repo.GetScore(ctx, demandID)
	switch {
	case err == nil:
		score = s
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, fmt.Errorf("failed to load score for demand %s: %w", demandID, err)
	}

	result := CheckProduct(demand, profile, score, product)
	return &result, nil
}
