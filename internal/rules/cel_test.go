package rules

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/opensource-finance/heron/internal/domain"
)

func exprRule(id, expression string) *domain.BusinessRule {
	cond, _ := json.Marshal(domain.ExpressionCondition{Expression: expression})
	rule := mkRule(id, domain.RuleEligibility, string(cond), 10)
	rule.Name = id
	return rule
}

func TestCELCompile(t *testing.T) {
	c, err := newCELEvaluator()
	if err != nil {
		t.Fatalf("newCELEvaluator failed: %v", err)
	}

	t.Run("ValidExpression", func(t *testing.T) {
		rule := exprRule("r-ok", "monthly_income >= 500000.0 && debt_ratio < 40.0")
		if err := c.compile(rule); err != nil {
			t.Errorf("expected valid expression to compile: %v", err)
		}
	})

	t.Run("SyntaxError", func(t *testing.T) {
		rule := exprRule("r-bad", "monthly_income >>> 100")
		if err := c.check(rule); err == nil {
			t.Error("expected syntax error")
		}
	})

	t.Run("NonBoolOutput", func(t *testing.T) {
		rule := exprRule("r-double", "amount + 1.0")
		err := c.check(rule)
		if err == nil || !strings.Contains(err.Error(), "must return bool") {
			t.Errorf("expected bool-output error, got %v", err)
		}
	})

	t.Run("EmptyExpression", func(t *testing.T) {
		rule := exprRule("r-empty", "")
		if err := c.check(rule); err == nil {
			t.Error("expected error for empty expression")
		}
	})

	t.Run("UnknownVariable", func(t *testing.T) {
		rule := exprRule("r-unknown", "shoe_size > 40")
		if err := c.check(rule); err == nil {
			t.Error("expected error for undeclared variable")
		}
	})
}

func TestCELEvaluate(t *testing.T) {
	c, err := newCELEvaluator()
	if err != nil {
		t.Fatalf("newCELEvaluator failed: %v", err)
	}

	now := time.Now().UTC()
	profile := &domain.ClientProfile{
		ClientID:            "c1",
		BirthDate:           now.AddDate(-35, 0, 0),
		EmploymentStatus:    domain.EmploymentCivilServant,
		MonthlyIncome:       800_000,
		MonthlyDebtPayment:  160_000,
		BankSeniorityMonths: 36,
	}
	demand := &domain.CreditDemand{
		ID:             "d1",
		ClientID:       "c1",
		CreditType:     domain.CreditAuto,
		Amount:         4_000_000,
		DurationMonths: 36,
	}
	in := &Input{Demand: demand, Profile: profile, Now: now}

	t.Run("Passes", func(t *testing.T) {
		rule := exprRule("r-pass", `monthly_income >= 500000.0 && employment_status == "CIVIL_SERVANT"`)
		if err := c.compile(rule); err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		out := c.evaluate(rule, in)
		if !out.Passed {
			t.Errorf("expected pass: %s", out.Message)
		}
		if out.Message != "Règle r-pass: condition satisfaite" {
			t.Errorf("unexpected message: %q", out.Message)
		}
	})

	t.Run("Fails", func(t *testing.T) {
		rule := exprRule("r-fail", "debt_ratio < 10.0")
		if err := c.compile(rule); err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		out := c.evaluate(rule, in)
		if out.Passed {
			t.Error("expected fail for debt ratio 20")
		}
		if out.Message != "Règle r-fail: condition non satisfaite" {
			t.Errorf("unexpected message: %q", out.Message)
		}
	})

	t.Run("ScoreGuard", func(t *testing.T) {
		rule := exprRule("r-guard", "!has_score || score >= 400")
		if err := c.compile(rule); err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		// No score in the input: the guard keeps the rule passing
		if out := c.evaluate(rule, in); !out.Passed {
			t.Errorf("expected pass without score: %s", out.Message)
		}

		withScore := *in
		withScore.Score = &domain.Score{ScoreValue: 300}
		if out := c.evaluate(rule, &withScore); out.Passed {
			t.Error("expected fail with score 300")
		}
	})

	t.Run("UncompiledFailsOpen", func(t *testing.T) {
		rule := exprRule("r-missing", "true")
		out := c.evaluate(rule, in)
		if !out.Passed {
			t.Error("uncompiled rule must not block a demand")
		}
		if out.Message != "Règle r-missing non compilée" {
			t.Errorf("unexpected message: %q", out.Message)
		}
	})

	t.Run("EvalErrorFailsOpen", func(t *testing.T) {
		// Integer division by zero: dependents is 0 for this profile
		rule := exprRule("r-error", "score / dependents >= 0")
		if err := c.compile(rule); err != nil {
			t.Fatalf("compile failed: %v", err)
		}
		out := c.evaluate(rule, in)
		if !out.Passed {
			t.Error("evaluation error must not block a demand")
		}
		if !strings.Contains(out.Message, "erreur d'évaluation") {
			t.Errorf("unexpected message: %q", out.Message)
		}
	})
}

func TestLoadRulesSkipsBrokenExpression(t *testing.T) {
	engine, _ := newTestEngine(t)

	// One broken stored expression must not block the rest of the set.
	broken := exprRule("r-broken", "amount >")
	valid := exprRule("r-valid", "amount > 0.0")
	if got := engine.LoadRules([]*domain.BusinessRule{broken, valid}); got != 1 {
		t.Fatalf("expected 1 loaded rule, got %d", got)
	}

	loaded := engine.LoadedRules()
	if len(loaded) != 1 || loaded[0].ID != "r-valid" {
		t.Fatalf("expected only the valid rule to survive the load, got %d rules", len(loaded))
	}
}

func TestValidateRule(t *testing.T) {
	engine, _ := newTestEngine(t)

	if err := engine.ValidateRule(nil); err == nil {
		t.Error("expected error for nil rule")
	}
	if err := engine.ValidateRule(mkRule("r-age", domain.RuleAgeLimit, `{}`, 1)); err != nil {
		t.Errorf("non-expression rules need no validation: %v", err)
	}
	if err := engine.ValidateRule(exprRule("r-expr", "amount > 0.0")); err != nil {
		t.Errorf("expected valid expression rule: %v", err)
	}
	if err := engine.ValidateRule(exprRule("r-expr-bad", "amount >")); err == nil {
		t.Error("expected invalid expression rule to be rejected")
	}
}
