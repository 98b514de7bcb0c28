package rules

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"

	"github.com/opensource-finance/heron/internal/domain"
)

// celEvaluator compiles and evaluates the CEL expressions carried by
// ELIGIBILITY rules. Programs are compiled once at load time and cached by
// rule ID.
type celEvaluator struct {
	mu       sync.RWMutex
	env      *cel.Env
	programs map[string]cel.Program
}

func newCELEvaluator() (*celEvaluator, error) {
	env, err := cel.NewEnv(
		// Client profile attributes
		cel.Variable("age", cel.DoubleType),
		cel.Variable("monthly_income", cel.DoubleType),
		cel.Variable("debt_ratio", cel.DoubleType),
		cel.Variable("seniority_years", cel.DoubleType),
		cel.Variable("dependents", cel.IntType),
		cel.Variable("existing_credits", cel.IntType),
		cel.Variable("bank_seniority_months", cel.IntType),
		cel.Variable("employment_status", cel.StringType),
		// Demand attributes
		cel.Variable("amount", cel.DoubleType),
		cel.Variable("duration_months", cel.IntType),
		cel.Variable("credit_type", cel.StringType),
		// Stored score, when present
		cel.Variable("has_score", cel.BoolType),
		cel.Variable("score", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &celEvaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}, nil
}

// compile builds the rule's program and caches it under the rule ID.
func (c *celEvaluator) compile(rule *domain.BusinessRule) error {
	program, err := c.build(rule)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.programs[rule.ID] = program
	c.mu.Unlock()
	return nil
}

// check compiles the rule's expression without caching it.
func (c *celEvaluator) check(rule *domain.BusinessRule) error {
	_, err := c.build(rule)
	return err
}

func (c *celEvaluator) build(rule *domain.BusinessRule) (cel.Program, error) {
	var cond domain.ExpressionCondition
	if err := json.Unmarshal(rule.Condition, &cond); err != nil {
		return nil, fmt.Errorf("rule %s: invalid condition payload: %w", rule.ID, err)
	}
	if cond.Expression == "" {
		return nil, fmt.Errorf("rule %s: expression is required", rule.ID)
	}

	ast, issues := c.env.Compile(cond.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile rule %s: %w", rule.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("rule %s: expression must return bool, got %s", rule.ID, ast.OutputType())
	}

	program, err := c.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %s: %w", rule.ID, err)
	}
	return program, nil
}

// evaluate runs the rule's compiled program against the demand. An
// evaluation error passes the rule: a broken expression must never block a
// demand, and compile-time validation already caught everything static.
func (c *celEvaluator) evaluate(rule *domain.BusinessRule, in *Input) Outcome {
	c.mu.RLock()
	program, ok := c.programs[rule.ID]
	c.mu.RUnlock()

	if !ok {
		return Outcome{
			Passed:  true,
			Message: fmt.Sprintf("Règle %s non compilée", rule.Name),
		}
	}

	out, _, err := program.Eval(c.activation(in))
	if err != nil {
		return Outcome{
			Passed:  true,
			Message: fmt.Sprintf("Règle %s: erreur d'évaluation: %v", rule.Name, err),
		}
	}

	passed := out == types.True
	msg := fmt.Sprintf("Règle %s: condition satisfaite", rule.Name)
	if !passed {
		msg = fmt.Sprintf("Règle %s: condition non satisfaite", rule.Name)
	}
	return Outcome{Passed: passed, Message: msg}
}

// activation maps the demand, profile and score into CEL variables.
// Missing entities default to zero values; expressions can guard on
// has_score explicitly.
func (c *celEvaluator) activation(in *Input) map[string]any {
	vars := map[string]any{
		"age":                   0.0,
		"monthly_income":        0.0,
		"debt_ratio":            0.0,
		"seniority_years":       0.0,
		"dependents":            0,
		"existing_credits":      0,
		"bank_seniority_months": 0,
		"employment_status":     "",
		"amount":                in.Demand.Amount,
		"duration_months":       in.Demand.DurationMonths,
		"credit_type":           string(in.Demand.CreditType),
		"has_score":             false,
		"score":                 0,
	}

	if p := in.Profile; p != nil {
		vars["age"] = p.Age(in.Now)
		vars["monthly_income"] = p.MonthlyIncome
		vars["debt_ratio"] = p.DebtRatio()
		vars["seniority_years"] = p.SeniorityYears
		vars["dependents"] = p.Dependents
		vars["existing_credits"] = p.ExistingCredits
		vars["bank_seniority_months"] = p.BankSeniorityMonths
		vars["employment_status"] = string(p.EmploymentStatus)
	}

	if s := in.Score; s != nil {
		vars["has_score"] = true
		vars["score"] = s.ScoreValue
	}

	return vars
}
