// Package rules provides the business-rule evaluation engine.
package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/repository"
)

// Input carries the materialized entities a rule is evaluated against.
// Profile and Score may be nil; evaluators that need them decide how to
// degrade (see the per-type evaluators).
type Input struct {
	Demand  *domain.CreditDemand
	Profile *domain.ClientProfile
	Score   *domain.Score
	Now     time.Time
}

// Outcome is the result of evaluating one rule.
type Outcome struct {
	Passed        bool
	ComputedValue *float64
	Message       string
}

// EvaluatorFunc evaluates one rule of a specific type against a demand.
type EvaluatorFunc func(rule *domain.BusinessRule, in *Input) Outcome

// Engine evaluates stored business rules against demands. Rules are loaded
// from the repository and can be hot-reloaded; evaluation dispatches on
// rule type through a registry, with a fail-open default for unknown types.
type Engine struct {
	mu         sync.RWMutex
	repo       domain.Repository
	rules      []*domain.BusinessRule // sorted by descending priority
	evaluators map[domain.RuleType]EvaluatorFunc
	cel        *celEvaluator

	now func() time.Time
}

// NewEngine creates a rule engine bound to a repository.
func NewEngine(repo domain.Repository) (*Engine, error) {
	cel, err := newCELEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create expression evaluator: %w", err)
	}

	e := &Engine{
		repo: repo,
		cel:  cel,
		now:  func() time.Time { return time.Now().UTC() },
	}
	e.evaluators = map[domain.RuleType]EvaluatorFunc{
		domain.RuleAgeLimit:          evaluateAge,
		domain.RuleIncomeRequirement: evaluateIncome,
		domain.RuleDebtRatio:         evaluateDebtRatio,
		domain.RuleAmountLimit:       evaluateAmount,
		domain.RuleDurationLimit:     evaluateDuration,
		domain.RuleScoringThreshold:  evaluateScoreThreshold,
		domain.RuleEligibility:       cel.evaluate,
	}
	return e, nil
}

// LoadRules loads active rules into the engine, highest priority first,
// and returns how many were loaded. ELIGIBILITY rules are compiled up
// front; a rule whose expression fails to compile is skipped with a logged
// warning so one broken stored rule never blocks the rest of the set.
func (e *Engine) LoadRules(rules []*domain.BusinessRule) int {
	loaded := make([]*domain.BusinessRule, 0, len(rules))
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if rule.RuleType == domain.RuleEligibility {
			if err := e.cel.compile(rule); err != nil {
				slog.Warn("skipping rule with invalid expression",
					"rule_id", rule.ID,
					"rule_name", rule.Name,
					"error", err,
				)
				continue
			}
		}
		loaded = append(loaded, rule)
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].Priority > loaded[j].Priority
	})

	e.mu.Lock()
	e.rules = loaded
	e.mu.Unlock()
	return len(loaded)
}

// ReloadRules fetches active rules from the repository and replaces the
// loaded set. Enables hot reloading without restart.
func (e *Engine) ReloadRules(ctx context.Context) (int, error) {
	rules, err := e.repo.ListActiveRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list rules: %w", err)
	}
	return e.LoadRules(rules), nil
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.rules)
}

// LoadedRules returns the currently loaded rules in evaluation order.
func (e *Engine) LoadedRules() []*domain.BusinessRule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*domain.BusinessRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// ValidateRule checks a rule without loading it. For ELIGIBILITY rules this
// compiles the expression.
func (e *Engine) ValidateRule(rule *domain.BusinessRule) error {
	if rule == nil {
		return fmt.Errorf("rule is required")
	}
	if rule.RuleType == domain.RuleEligibility {
		return e.cel.check(rule)
	}
	return nil
}

// applicable returns the loaded rules in scope for a credit type, keeping
// the descending-priority order.
func (e *Engine) applicable(ct domain.CreditType) []*domain.BusinessRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]*domain.BusinessRule, 0, len(e.rules))
	for _, rule := range e.rules {
		if rule.Applies(ct) {
			out = append(out, rule)
		}
	}
	return out
}

// EvaluateAll evaluates every applicable loaded rule against a demand,
// appending one RuleEvaluation row per rule. The evaluation history is
// append-only: repeated calls add new rows. A persistence failure aborts
// and is surfaced to the caller.
func (e *Engine) EvaluateAll(ctx context.Context, demandID string) (*domain.RuleEvaluationSummary, error) {
	demand, err := e.repo.GetDemand(ctx, demandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand %s: %w", demandID, err)
	}

	in := &Input{Demand: demand, Now: e.now()}

	profile, err := e.repo.GetProfile(ctx, demand.ClientID)
	switch {
	case err == nil:
		in.Profile = profile
	case errors.Is(err, repository.ErrNotFound):
		// Evaluators that need the profile fail closed on their own.
	default:
		return nil, fmt.Errorf("failed to load profile for client %s: %w", demand.ClientID, err)
	}

	score, err := e.repo.GetScore(ctx, demandID)
	switch {
	case err == nil:
		in.Score = score
	case errors.Is(err, repository.ErrNotFound):
		// SCORING_THRESHOLD fails closed when no score exists.
	default:
		return nil, fmt.Errorf("failed to load score for demand %s: %w", demandID, err)
	}

	summary := &domain.RuleEvaluationSummary{
		DemandID:    demandID,
		AllPassed:   true,
		FailedRules: []domain.FailedRule{},
	}

	for _, rule := range e.applicable(demand.CreditType) {
		outcome := e.dispatch(rule, in)

		eval := domain.RuleEvaluation{
			ID:            uuid.New().String(),
			DemandID:      demandID,
			RuleID:        rule.ID,
			RuleName:      rule.Name,
			Passed:        outcome.Passed,
			ComputedValue: outcome.ComputedValue,
			Message:       outcome.Message,
			EvaluatedAt:   e.now(),
		}
		if err := e.repo.AppendEvaluation(ctx, &eval); err != nil {
			return nil, fmt.Errorf("failed to record evaluation of rule %s: %w", rule.ID, err)
		}

		summary.Evaluations = append(summary.Evaluations, eval)
		summary.TotalRules++
		if outcome.Passed {
			summary.Passed++
		} else {
			summary.Failed++
			summary.AllPassed = false
			summary.FailedRules = append(summary.FailedRules, domain.FailedRule{
				Name:    rule.Name,
				Message: outcome.Message,
			})
		}
	}

	slog.Info("rules evaluated",
		"demand_id", demandID,
		"total", summary.TotalRules,
		"failed", summary.Failed,
		"all_passed", summary.AllPassed,
	)

	return summary, nil
}

// dispatch routes a rule to its type-specific evaluator. Unknown rule
// types pass: a rule type rolled out ahead of engine support must never
// block a demand.
func (e *Engine) dispatch(rule *domain.BusinessRule, in *Input) Outcome {
	if eval, ok := e.evaluators[rule.RuleType]; ok {
		return eval(rule, in)
	}
	return Outcome{
		Passed:  true,
		Message: fmt.Sprintf("Règle %s non implémentée", rule.Name),
	}
}
