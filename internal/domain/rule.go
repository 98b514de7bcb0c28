package domain

import (
	"encoding/json"
	"time"
)

// RuleType selects the evaluator a business rule is dispatched to.
type RuleType string

const (
	RuleAgeLimit          RuleType = "AGE_LIMIT"
	RuleIncomeRequirement RuleType = "INCOME_REQUIREMENT"
	RuleDebtRatio         RuleType = "DEBT_RATIO"
	RuleAmountLimit       RuleType = "AMOUNT_LIMIT"
	RuleDurationLimit     RuleType = "DURATION_LIMIT"
	RuleScoringThreshold  RuleType = "SCORING_THRESHOLD"
	RuleEligibility       RuleType = "ELIGIBILITY"
)

// BusinessRule is a stored, data-driven eligibility constraint. Rules are
// authored by the rule-management collaborator; the engine only reads and
// evaluates them.
type BusinessRule struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	RuleType RuleType `json:"ruleType"`

	// CreditType scopes the rule to one credit type. Empty applies to all.
	CreditType CreditType `json:"creditType,omitempty"`

	// Condition is the per-type configuration payload, decoded by the
	// matching evaluator into its typed condition struct.
	Condition json.RawMessage `json:"condition"`

	// ThresholdValue, when set, takes precedence over the equivalent key
	// inside Condition.
	ThresholdValue *float64 `json:"thresholdValue,omitempty"`

	Active      bool   `json:"active"`
	Priority    int    `json:"priority"` // higher evaluates first
	Description string `json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Applies reports whether the rule is in scope for the given credit type.
func (r *BusinessRule) Applies(ct CreditType) bool {
	return r.CreditType == "" || r.CreditType == ct
}

// Typed condition payloads, one per rule type.

// AgeCondition bounds the client's age in years.
type AgeCondition struct {
	MinAge float64 `json:"min_age"`
	MaxAge float64 `json:"max_age"`
}

// IncomeCondition sets the minimum monthly income.
type IncomeCondition struct {
	MinIncome float64 `json:"min_income"`
}

// DebtRatioCondition caps the debt ratio percentage.
type DebtRatioCondition struct {
	MaxRatio float64 `json:"max_ratio"`
}

// AmountCondition bounds the requested amount.
type AmountCondition struct {
	MinAmount float64 `json:"min_amount"`
	MaxAmount float64 `json:"max_amount"`
}

// DurationCondition bounds the requested duration in months.
type DurationCondition struct {
	MinDuration int `json:"min_duration"`
	MaxDuration int `json:"max_duration"`
}

// ScoreCondition sets the minimum stored score.
type ScoreCondition struct {
	MinScore int `json:"min_score"`
}

// ExpressionCondition carries a CEL expression evaluated over the demand
// and profile attributes. Used by ELIGIBILITY rules.
type ExpressionCondition struct {
	Expression string `json:"expression"`
}

// RuleEvaluation is one append-only evaluation attempt of a rule against a
// demand. Never mutated; re-evaluation creates new rows.
type RuleEvaluation struct {
	ID            string    `json:"id"`
	DemandID      string    `json:"demandId"`
	RuleID        string    `json:"ruleId"`
	RuleName      string    `json:"ruleName"`
	Passed        bool      `json:"passed"`
	ComputedValue *float64  `json:"computedValue,omitempty"`
	Message       string    `json:"message"`
	EvaluatedAt   time.Time `json:"evaluatedAt"`
}

// FailedRule names a rule that did not pass, with its explanation.
type FailedRule struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// RuleEvaluationSummary aggregates one EvaluateAll run over a demand.
type RuleEvaluationSummary struct {
	DemandID    string           `json:"demandId"`
	AllPassed   bool             `json:"allPassed"`
	Evaluations []RuleEvaluation `json:"evaluations"`
	TotalRules  int              `json:"totalRules"`
	Passed      int              `json:"passed"`
	Failed      int              `json:"failed"`
	FailedRules []FailedRule     `json:"failedRules"`
}

// CreditProduct is an externally configured loan product. The engine only
// reads it for eligibility checks.
type CreditProduct struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	CreditType        CreditType `json:"creditType"`
	MinAmount         float64    `json:"minAmount"`
	MaxAmount         float64    `json:"maxAmount"`
	MinDurationMonths int        `json:"minDurationMonths"`
	MaxDurationMonths int        `json:"maxDurationMonths"`
	BaseInterestRate  float64    `json:"baseInterestRate"`
	MinInterestRate   float64    `json:"minInterestRate"`
	MaxInterestRate   float64    `json:"maxInterestRate"`
	MinIncomeRequired float64    `json:"minIncomeRequired"`
	MaxDebtRatio      float64    `json:"maxDebtRatio"`
	MinScoreRequired  int        `json:"minScoreRequired"`
	RequiredDocuments []string   `json:"requiredDocuments"`
	Active            bool       `json:"active"`
	Description       string     `json:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EligibilityResult is the outcome of a product eligibility check. An empty
// Issues list means eligible.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Issues   []string `json:"issues"`
}
