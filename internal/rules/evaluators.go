package rules

import (
	"encoding/json"
	"fmt"

	"github.com/opensource-finance/heron/internal/domain"
)

// decodeCondition fills cond from the rule's condition payload, keeping
// the preset defaults for absent keys.
func decodeCondition(rule *domain.BusinessRule, cond any) {
	if len(rule.Condition) == 0 {
		return
	}
	// Authoring-time validation belongs to the rule-management layer; a
	// malformed payload here just keeps the defaults.
	_ = json.Unmarshal(rule.Condition, cond)
}

// threshold returns the rule's threshold_value when set, else the given
// condition-derived fallback.
func threshold(rule *domain.BusinessRule, fallback float64) float64 {
	if rule.ThresholdValue != nil {
		return *rule.ThresholdValue
	}
	return fallback
}

func failMissingProfile(rule *domain.BusinessRule) Outcome {
	return Outcome{
		Passed:  false,
		Message: fmt.Sprintf("Règle %s: profil client manquant", rule.Name),
	}
}

func evaluateAge(rule *domain.BusinessRule, in *Input) Outcome {
	if in.Profile == nil {
		return failMissingProfile(rule)
	}

	cond := domain.AgeCondition{MinAge: 21, MaxAge: 65}
	decodeCondition(rule, &cond)

	age := in.Profile.Age(in.Now)
	passed := age >= cond.MinAge && age <= cond.MaxAge

	msg := fmt.Sprintf("Âge: %.0f ans (requis: %.0f-%.0f ans)", age, cond.MinAge, cond.MaxAge)
	if !passed {
		msg = fmt.Sprintf("Âge non conforme: %.0f ans (requis: %.0f-%.0f ans)", age, cond.MinAge, cond.MaxAge)
	}
	return Outcome{Passed: passed, ComputedValue: &age, Message: msg}
}

func evaluateIncome(rule *domain.BusinessRule, in *Input) Outcome {
	if in.Profile == nil {
		return failMissingProfile(rule)
	}

	var cond domain.IncomeCondition
	decodeCondition(rule, &cond)
	minIncome := threshold(rule, cond.MinIncome)

	income := in.Profile.MonthlyIncome
	passed := income >= minIncome

	msg := fmt.Sprintf("Revenu: %s (requis: ≥ %s)", domain.FormatFCFA(income), domain.FormatFCFA(minIncome))
	if !passed {
		msg = fmt.Sprintf("Revenu insuffisant: %s (requis: ≥ %s)", domain.FormatFCFA(income), domain.FormatFCFA(minIncome))
	}
	return Outcome{Passed: passed, ComputedValue: &income, Message: msg}
}

func evaluateDebtRatio(rule *domain.BusinessRule, in *Input) Outcome {
	if in.Profile == nil {
		return failMissingProfile(rule)
	}

	cond := domain.DebtRatioCondition{MaxRatio: 40}
	decodeCondition(rule, &cond)
	maxRatio := threshold(rule, cond.MaxRatio)

	ratio := in.Profile.DebtRatio()
	passed := ratio <= maxRatio

	msg := fmt.Sprintf("Taux d'endettement: %.1f%% (max: %.1f%%)", ratio, maxRatio)
	if !passed {
		msg = fmt.Sprintf("Taux d'endettement trop élevé: %.1f%% (max: %.1f%%)", ratio, maxRatio)
	}
	return Outcome{Passed: passed, ComputedValue: &ratio, Message: msg}
}

func evaluateAmount(rule *domain.BusinessRule, in *Input) Outcome {
	cond := domain.AmountCondition{MinAmount: 0, MaxAmount: 999_999_999}
	decodeCondition(rule, &cond)

	amount := in.Demand.Amount
	passed := amount >= cond.MinAmount && amount <= cond.MaxAmount

	msg := fmt.Sprintf("Montant: %s (plage: %s - %s)",
		domain.FormatFCFA(amount), domain.FormatFCFA(cond.MinAmount), domain.FormatFCFA(cond.MaxAmount))
	if !passed {
		msg = fmt.Sprintf("Montant non conforme: %s (plage: %s - %s)",
			domain.FormatFCFA(amount), domain.FormatFCFA(cond.MinAmount), domain.FormatFCFA(cond.MaxAmount))
	}
	return Outcome{Passed: passed, ComputedValue: &amount, Message: msg}
}

func evaluateDuration(rule *domain.BusinessRule, in *Input) Outcome {
	cond := domain.DurationCondition{MinDuration: 0, MaxDuration: 999}
	decodeCondition(rule, &cond)

	duration := in.Demand.DurationMonths
	passed := duration >= cond.MinDuration && duration <= cond.MaxDuration
	value := float64(duration)

	msg := fmt.Sprintf("Durée: %d mois (plage: %d-%d mois)", duration, cond.MinDuration, cond.MaxDuration)
	if !passed {
		msg = fmt.Sprintf("Durée non conforme: %d mois (plage: %d-%d mois)", duration, cond.MinDuration, cond.MaxDuration)
	}
	return Outcome{Passed: passed, ComputedValue: &value, Message: msg}
}

// evaluateScoreThreshold fails closed when no score has been computed for
// the demand: an eligibility gate on the score cannot pass blind.
func evaluateScoreThreshold(rule *domain.BusinessRule, in *Input) Outcome {
	if in.Score == nil {
		return Outcome{Passed: false, Message: "Score non calculé"}
	}

	cond := domain.ScoreCondition{MinScore: 400}
	decodeCondition(rule, &cond)
	minScore := int(threshold(rule, float64(cond.MinScore)))

	score := in.Score.ScoreValue
	passed := score >= minScore
	value := float64(score)

	msg := fmt.Sprintf("Score: %d/1000 (requis: ≥ %d)", score, minScore)
	if !passed {
		msg = fmt.Sprintf("Score insuffisant: %d/1000 (requis: ≥ %d)", score, minScore)
	}
	return Outcome{Passed: passed, ComputedValue: &value, Message: msg}
}
