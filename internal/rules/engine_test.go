package rules

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/repository"
)

func newTestEngine(t *testing.T) (*Engine, domain.Repository) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "heron-rules-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	t.Cleanup(func() { os.Remove(tmpPath) })

	repo, err := repository.New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	engine, err := NewEngine(repo)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine, repo
}

func saveTestProfile(t *testing.T, repo domain.Repository, clientID string, income, debt float64) {
	t.Helper()
	now := time.Now().UTC()
	profile := &domain.ClientProfile{
		ClientID:            clientID,
		BirthDate:           now.AddDate(-40, 0, 0),
		EmploymentStatus:    domain.EmploymentCivilServant,
		SeniorityYears:      8,
		MonthlyIncome:       income,
		MonthlyDebtPayment:  debt,
		BankSeniorityMonths: 48,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := repo.SaveProfile(context.Background(), profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
}

func saveTestDemand(t *testing.T, repo domain.Repository, clientID string, ct domain.CreditType, amount float64, months int) *domain.CreditDemand {
	t.Helper()
	now := time.Now().UTC()
	demand := &domain.CreditDemand{
		ID:             uuid.New().String(),
		Reference:      domain.NewReference(),
		ClientID:       clientID,
		CreditType:     ct,
		Amount:         amount,
		DurationMonths: months,
		Status:         domain.DemandPendingAnalyst,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := repo.SaveDemand(context.Background(), demand); err != nil {
		t.Fatalf("SaveDemand failed: %v", err)
	}
	return demand
}

func mkRule(id string, rt domain.RuleType, condition string, priority int) *domain.BusinessRule {
	now := time.Now().UTC()
	return &domain.BusinessRule{
		ID:        id,
		Name:      id,
		RuleType:  rt,
		Condition: json.RawMessage(condition),
		Active:    true,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestEvaluateAllEveryRuleType(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	saveTestProfile(t, repo, "client-001", 2_000_000, 200_000)
	demand := saveTestDemand(t, repo, "client-001", domain.CreditAuto, 3_000_000, 24)

	rules := []*domain.BusinessRule{
		mkRule("r-age", domain.RuleAgeLimit, `{"min_age": 21, "max_age": 65}`, 60),
		mkRule("r-income", domain.RuleIncomeRequirement, `{"min_income": 500000}`, 50),
		mkRule("r-debt", domain.RuleDebtRatio, `{"max_ratio": 40}`, 40),
		mkRule("r-amount", domain.RuleAmountLimit, `{"min_amount": 100000, "max_amount": 50000000}`, 30),
		mkRule("r-duration", domain.RuleDurationLimit, `{"min_duration": 6, "max_duration": 120}`, 20),
		mkRule("r-score", domain.RuleScoringThreshold, `{"min_score": 400}`, 10),
	}
	engine.LoadRules(rules)

	summary, err := engine.EvaluateAll(ctx, demand.ID)
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}

	if summary.TotalRules != 6 {
		t.Fatalf("expected 6 evaluated rules, got %d", summary.TotalRules)
	}
	// Everything passes except the score gate: no score exists yet.
	if summary.Passed != 5 || summary.Failed != 1 {
		t.Errorf("expected 5 passed / 1 failed, got %d/%d", summary.Passed, summary.Failed)
	}
	if summary.AllPassed {
		t.Error("expected AllPassed=false with a missing score")
	}
	if len(summary.FailedRules) != 1 || summary.FailedRules[0].Message != "Score non calculé" {
		t.Errorf("expected score gate failure, got %+v", summary.FailedRules)
	}

	// Evaluation order follows descending priority
	if summary.Evaluations[0].RuleID != "r-age" || summary.Evaluations[5].RuleID != "r-score" {
		t.Errorf("unexpected evaluation order: first=%s last=%s",
			summary.Evaluations[0].RuleID, summary.Evaluations[5].RuleID)
	}
}

func TestEvaluateAllScoreGateWithStoredScore(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	saveTestProfile(t, repo, "client-001", 2_000_000, 200_000)
	demand := saveTestDemand(t, repo, "client-001", domain.CreditAuto, 3_000_000, 24)

	score := &domain.Score{
		ID:              uuid.New().String(),
		DemandID:        demand.ID,
		ScoreValue:      620,
		RiskLevel:       domain.RiskMedium,
		FactorsPositive: []domain.Factor{},
		FactorsNegative: []domain.Factor{},
		Attribution:     map[string]int{},
		Recommendation:  domain.RecommendManualReview,
		CalculatedAt:    time.Now().UTC(),
	}
	if err := repo.UpsertScore(ctx, score); err != nil {
		t.Fatalf("UpsertScore failed: %v", err)
	}

	engine.LoadRules([]*domain.BusinessRule{
		mkRule("r-score", domain.RuleScoringThreshold, `{"min_score": 400}`, 10),
	})

	summary, err := engine.EvaluateAll(ctx, demand.ID)
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if !summary.AllPassed {
		t.Errorf("expected pass with score 620 >= 400: %+v", summary.FailedRules)
	}
	if summary.Evaluations[0].Message != "Score: 620/1000 (requis: ≥ 400)" {
		t.Errorf("unexpected message: %q", summary.Evaluations[0].Message)
	}
}

func TestUnknownRuleTypePasses(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	saveTestProfile(t, repo, "client-001", 500_000, 0)
	demand := saveTestDemand(t, repo, "client-001", domain.CreditAuto, 1_000_000, 12)

	rule := mkRule("r-future", domain.RuleType("GEOGRAPHIC_LIMIT"), `{}`, 10)
	rule.Name = "Zone géographique"
	engine.LoadRules([]*domain.BusinessRule{rule})

	summary, err := engine.EvaluateAll(ctx, demand.ID)
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if !summary.AllPassed {
		t.Error("unknown rule type must not block a demand")
	}
	if summary.Evaluations[0].Message != "Règle Zone géographique non implémentée" {
		t.Errorf("unexpected message: %q", summary.Evaluations[0].Message)
	}
}

func TestMissingProfileFailsClosed(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	demand := saveTestDemand(t, repo, "ghost-client", domain.CreditAuto, 1_000_000, 12)

	rule := mkRule("r-age", domain.RuleAgeLimit, `{"min_age": 21, "max_age": 65}`, 10)
	rule.Name = "Âge"
	engine.LoadRules([]*domain.BusinessRule{rule})

	summary, err := engine.EvaluateAll(ctx, demand.ID)
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if summary.AllPassed {
		t.Error("profile-dependent rule must fail without a profile")
	}
	if !strings.Contains(summary.FailedRules[0].Message, "profil client manquant") {
		t.Errorf("unexpected message: %q", summary.FailedRules[0].Message)
	}
}

func TestThresholdValueTakesPrecedence(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	saveTestProfile(t, repo, "client-001", 200_000, 0)
	demand := saveTestDemand(t, repo, "client-001", domain.CreditAuto, 1_000_000, 12)

	min := 500_000.0
	rule := mkRule("r-income", domain.RuleIncomeRequirement, `{"min_income": 100000}`, 10)
	rule.ThresholdValue = &min
	engine.LoadRules([]*domain.BusinessRule{rule})

	summary, err := engine.EvaluateAll(ctx, demand.ID)
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	// 200000 passes the condition's 100000 but not the overriding 500000
	if summary.AllPassed {
		t.Error("threshold_value must override the condition key")
	}
	if !strings.Contains(summary.FailedRules[0].Message, "500 000 FCFA") {
		t.Errorf("expected override threshold in message, got %q", summary.FailedRules[0].Message)
	}
}

func TestCreditTypeScoping(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	saveTestProfile(t, repo, "client-001", 500_000, 0)
	demand := saveTestDemand(t, repo, "client-001", domain.CreditConsumption, 1_000_000, 12)

	scoped := mkRule("r-auto-only", domain.RuleAmountLimit, `{"min_amount": 3000000}`, 20)
	scoped.CreditType = domain.CreditAuto
	global := mkRule("r-global", domain.RuleAgeLimit, `{}`, 10)
	engine.LoadRules([]*domain.BusinessRule{scoped, global})

	summary, err := engine.EvaluateAll(ctx, demand.ID)
	if err != nil {
		t.Fatalf("EvaluateAll failed: %v", err)
	}
	if summary.TotalRules != 1 {
		t.Fatalf("expected only the global rule to apply, got %d", summary.TotalRules)
	}
	if summary.Evaluations[0].RuleID != "r-global" {
		t.Errorf("expected r-global, got %s", summary.Evaluations[0].RuleID)
	}
}

func TestInactiveRulesSkipped(t *testing.T) {
	engine, _ := newTestEngine(t)

	inactive := mkRule("r-off", domain.RuleAgeLimit, `{}`, 10)
	inactive.Active = false
	active := mkRule("r-on", domain.RuleAgeLimit, `{}`, 5)

	engine.LoadRules([]*domain.BusinessRule{inactive, active})
	if engine.RulesCount() != 1 {
		t.Errorf("expected 1 loaded rule, got %d", engine.RulesCount())
	}
}

func TestReloadRulesFromRepository(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	for _, r := range []*domain.BusinessRule{
		mkRule("r-1", domain.RuleAgeLimit, `{}`, 30),
		mkRule("r-2", domain.RuleDebtRatio, `{}`, 20),
	} {
		if err := repo.SaveRule(ctx, r); err != nil {
			t.Fatalf("SaveRule failed: %v", err)
		}
	}

	count, err := engine.ReloadRules(ctx)
	if err != nil {
		t.Fatalf("ReloadRules failed: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 reloaded rules, got %d", count)
	}

	loaded := engine.LoadedRules()
	if len(loaded) != 2 || loaded[0].ID != "r-1" {
		t.Errorf("expected priority order r-1 first, got %+v", loaded)
	}
}

func TestEvaluationHistoryIsAppendOnly(t *testing.T) {
	engine, repo := newTestEngine(t)
	ctx := context.Background()

	saveTestProfile(t, repo, "client-001", 500_000, 0)
	demand := saveTestDemand(t, repo, "client-001", domain.CreditAuto, 1_000_000, 12)

	engine.LoadRules([]*domain.BusinessRule{
		mkRule("r-age", domain.RuleAgeLimit, `{}`, 10),
		mkRule("r-debt", domain.RuleDebtRatio, `{}`, 5),
	})

	for i := 0; i < 3; i++ {
		if _, err := engine.EvaluateAll(ctx, demand.ID); err != nil {
			t.Fatalf("EvaluateAll run %d failed: %v", i, err)
		}
	}

	evals, err := repo.ListEvaluations(ctx, demand.ID)
	if err != nil {
		t.Fatalf("ListEvaluations failed: %v", err)
	}
	if len(evals) != 6 {
		t.Errorf("expected 6 evaluation rows after 3 runs, got %d", len(evals))
	}
}
