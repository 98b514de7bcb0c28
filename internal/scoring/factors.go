package scoring

import (
	"fmt"

	"github.com/opensource-finance/heron/internal/domain"
)

// ExplainFactors derives the displayed positive and negative contributing
// factors from a feature set. It re-examines the same feature dimensions as
// the calculator but with its own coarser thresholds; the impact values are
// display magnitudes only and are never summed back into the score.
func ExplainFactors(f domain.FeatureSet) (positive, negative []domain.Factor) {
	positive = []domain.Factor{}
	negative = []domain.Factor{}

	switch income := f.MonthlyIncome; {
	case income >= 500_000:
		positive = append(positive, domain.Factor{
			Factor: "Revenu mensuel très élevé",
			Value:  domain.FormatFCFA(income),
			Impact: 120,
		})
	case income >= 300_000:
		positive = append(positive, domain.Factor{
			Factor: "Bon revenu mensuel",
			Value:  domain.FormatFCFA(income),
			Impact: 90,
		})
	case income < 100_000:
		negative = append(negative, domain.Factor{
			Factor: "Revenu mensuel insuffisant",
			Value:  domain.FormatFCFA(income),
			Impact: -100,
		})
	}

	switch seniority := f.SeniorityYears; {
	case seniority >= 5:
		positive = append(positive, domain.Factor{
			Factor: "Excellente stabilité professionnelle",
			Value:  fmt.Sprintf("%.1f années", seniority),
			Impact: 60,
		})
	case seniority < 1:
		negative = append(negative, domain.Factor{
			Factor: "Ancienneté professionnelle faible",
			Value:  fmt.Sprintf("%.1f année(s)", seniority),
			Impact: -80,
		})
	}

	switch ratio := f.DebtRatio; {
	case ratio < 25:
		positive = append(positive, domain.Factor{
			Factor: "Excellent taux d'endettement",
			Value:  fmt.Sprintf("%.1f%%", ratio),
			Impact: 100,
		})
	case ratio > 40:
		negative = append(negative, domain.Factor{
			Factor: "Taux d'endettement très élevé",
			Value:  fmt.Sprintf("%.1f%%", ratio),
			Impact: -200,
		})
	case ratio > 33:
		negative = append(negative, domain.Factor{
			Factor: "Taux d'endettement élevé",
			Value:  fmt.Sprintf("%.1f%%", ratio),
			Impact: -50,
		})
	}

	if f.TotalPayments > 0 {
		switch rate := f.OnTimeRate; {
		case rate >= 95:
			positive = append(positive, domain.Factor{
				Factor: "Excellent historique de paiements",
				Value:  fmt.Sprintf("%.1f%% à temps (%d paiements)", rate, f.TotalPayments),
				Impact: 150,
			})
		case rate < 75:
			negative = append(negative, domain.Factor{
				Factor: "Historique de retards fréquents",
				Value:  fmt.Sprintf("%.1f%% à temps", rate),
				Impact: -150,
			})
		}
	}

	if defaults := f.DefaultPayments; defaults > 0 {
		negative = append(negative, domain.Factor{
			Factor: "Historique de défauts de paiement",
			Value:  fmt.Sprintf("%d défaut(s)", defaults),
			Impact: -defaults * 200,
		})
	}

	switch months := f.BankSeniorityMonths; {
	case months >= 36:
		positive = append(positive, domain.Factor{
			Factor: "Client fidèle de longue date",
			Value:  fmt.Sprintf("%d mois (%d ans)", months, months/12),
			Impact: 45,
		})
	case months < 12:
		negative = append(negative, domain.Factor{
			Factor: "Relation bancaire récente",
			Value:  fmt.Sprintf("%d mois", months),
			Impact: -20,
		})
	}

	switch capacity := f.PaymentCapacity; {
	case capacity < 30:
		positive = append(positive, domain.Factor{
			Factor: "Excellente capacité de remboursement",
			Value:  fmt.Sprintf("%.1f%% du revenu disponible", capacity),
			Impact: 50,
		})
	case capacity > 60:
		negative = append(negative, domain.Factor{
			Factor: "Capacité de remboursement limitée",
			Value:  fmt.Sprintf("%.1f%% du revenu disponible", capacity),
			Impact: -100,
		})
	}

	if domain.EmploymentStatus(f.EmploymentStatus) == domain.EmploymentCivilServant {
		positive = append(positive, domain.Factor{
			Factor: "Statut fonctionnaire (stabilité)",
			Value:  "Fonctionnaire",
			Impact: 50,
		})
	}

	if balance := f.AvgBalance; balance > 500_000 {
		positive = append(positive, domain.Factor{
			Factor: "Solde bancaire confortable",
			Value:  domain.FormatFCFA(balance) + " en moyenne",
			Impact: 25,
		})
	}

	return positive, negative
}
