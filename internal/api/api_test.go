package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/opensource-finance/heron/internal/bus"
	"github.com/opensource-finance/heron/internal/cache"
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/repository"
	"github.com/opensource-finance/heron/internal/rules"
	"github.com/opensource-finance/heron/internal/scoring"
)

type testEnv struct {
	server *Server
	repo   domain.Repository
	engine *rules.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "heron-api-test-*.db")
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

	c := cache.NewLRUCache(100)
	t.Cleanup(func() { c.Close() })

	b := bus.NewChannelBus(10)
	t.Cleanup(func() { b.Close() })

	engine, err := rules.NewEngine(repo)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}

	scorer := scoring.NewService(repo, c, domain.DefaultScoringPolicy())

	cfg := domain.ServerConfig{Host: "127.0.0.1", Port: 0, ReadTimeout: 5, WriteTimeout: 5}
	server := NewServer(cfg, repo, c, b, scorer, engine, "test")

	return &testEnv{server: server, repo: repo, engine: engine}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return out
}

func seedProfile(t *testing.T, env *testEnv, clientID string) {
	t.Helper()
	now := time.Now().UTC()
	profile := &domain.ClientProfile{
		ClientID:            clientID,
		BirthDate:           now.AddDate(-40, 0, 0),
		MaritalStatus:       domain.MaritalMarried,
		EmploymentStatus:    domain.EmploymentCivilServant,
		SeniorityYears:      8,
		MonthlyIncome:       2_000_000,
		MonthlyDebtPayment:  200_000,
		BankSeniorityMonths: 48,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := env.repo.SaveProfile(context.Background(), profile); err != nil {
		t.Fatalf("SaveProfile failed: %v", err)
	}
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode[map[string]string](t, rec)
	if resp["status"] != "healthy" {
		t.Errorf("expected healthy, got %s", resp["status"])
	}

	rec = env.do(t, http.MethodGet, "/ready", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateDemandValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body CreateDemandRequest
	}{
		{"MissingClient", CreateDemandRequest{CreditType: domain.CreditAuto, Amount: 1000, DurationMonths: 12}},
		{"ZeroAmount", CreateDemandRequest{ClientID: "c1", CreditType: domain.CreditAuto, DurationMonths: 12}},
		{"ZeroDuration", CreateDemandRequest{ClientID: "c1", CreditType: domain.CreditAuto, Amount: 1000}},
		{"BadType", CreateDemandRequest{ClientID: "c1", CreditType: "MORTGAGE", Amount: 1000, DurationMonths: 12}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/demands", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestDemandScoringFlow(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env, "client-001")

	// Create the demand
	rec := env.do(t, http.MethodPost, "/demands", CreateDemandRequest{
		ClientID:       "client-001",
		CreditType:     domain.CreditAuto,
		Amount:         3_000_000,
		DurationMonths: 24,
		Purpose:        "Achat véhicule",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	demand := decode[domain.CreditDemand](t, rec)
	if demand.Reference == "" {
		t.Error("expected generated reference")
	}
	if demand.Status != domain.DemandPendingAnalyst {
		t.Errorf("expected status %s, got %s", domain.DemandPendingAnalyst, demand.Status)
	}

	// Score does not exist before computing
	rec = env.do(t, http.MethodGet, "/demands/"+demand.ID+"/score", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before scoring, got %d", rec.Code)
	}

	// Compute synchronously
	rec = env.do(t, http.MethodPost, "/demands/"+demand.ID+"/score", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	score := decode[domain.Score](t, rec)
	if score.ScoreValue < 750 {
		t.Errorf("expected strong profile to score >= 750, got %d", score.ScoreValue)
	}
	if score.RiskLevel != domain.RiskLow {
		t.Errorf("expected LOW risk, got %s", score.RiskLevel)
	}

	// Read back (cache or store)
	rec = env.do(t, http.MethodGet, "/demands/"+demand.ID+"/score", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cached := decode[domain.Score](t, rec)
	if cached.ScoreValue != score.ScoreValue {
		t.Errorf("expected score %d, got %d", score.ScoreValue, cached.ScoreValue)
	}
}

func TestScoreUnknownDemand(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/demands/unknown/score", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRuleLifecycleAndEvaluation(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env, "client-001")

	// Create two rules through the API
	rec := env.do(t, http.MethodPost, "/rules", CreateRuleRequest{
		Name:      "Âge du demandeur",
		RuleType:  domain.RuleAgeLimit,
		Condition: json.RawMessage(`{"min_age": 21, "max_age": 65}`),
		Active:    true,
		Priority:  10,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/rules", CreateRuleRequest{
		Name:      "Endettement maximum",
		RuleType:  domain.RuleDebtRatio,
		Condition: json.RawMessage(`{"max_ratio": 40}`),
		Active:    true,
		Priority:  20,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	// Engine is empty until reload
	rec = env.do(t, http.MethodGet, "/rules", nil)
	list := decode[map[string]any](t, rec)
	if int(list["count"].(float64)) != 0 {
		t.Errorf("expected 0 loaded rules before reload, got %v", list["count"])
	}

	rec = env.do(t, http.MethodPost, "/rules/reload", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	reload := decode[map[string]any](t, rec)
	if int(reload["count"].(float64)) != 2 {
		t.Errorf("expected 2 reloaded rules, got %v", reload["count"])
	}

	// Submit a demand and evaluate
	rec = env.do(t, http.MethodPost, "/demands", CreateDemandRequest{
		ClientID:       "client-001",
		CreditType:     domain.CreditAuto,
		Amount:         3_000_000,
		DurationMonths: 24,
	})
	demand := decode[domain.CreditDemand](t, rec)

	rec = env.do(t, http.MethodPost, "/demands/"+demand.ID+"/evaluate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := decode[domain.RuleEvaluationSummary](t, rec)
	if summary.TotalRules != 2 {
		t.Errorf("expected 2 evaluated rules, got %d", summary.TotalRules)
	}
	if !summary.AllPassed {
		t.Errorf("expected all rules to pass: %+v", summary.FailedRules)
	}

	// History is append-only: evaluate again, expect 4 rows
	env.do(t, http.MethodPost, "/demands/"+demand.ID+"/evaluate", nil)

	rec = env.do(t, http.MethodGet, "/demands/"+demand.ID+"/evaluations", nil)
	history := decode[map[string]any](t, rec)
	if int(history["count"].(float64)) != 4 {
		t.Errorf("expected 4 evaluation rows, got %v", history["count"])
	}
}

func TestCreateRuleRejectsBadExpression(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/rules", CreateRuleRequest{
		Name:      "Expression cassée",
		RuleType:  domain.RuleEligibility,
		Condition: json.RawMessage(`{"expression": "monthly_income >>> 100"}`),
		Active:    true,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid expression, got %d", rec.Code)
	}
}

func TestProductEligibility(t *testing.T) {
	env := newTestEnv(t)
	seedProfile(t, env, "client-001")

	rec := env.do(t, http.MethodPost, "/products", domain.CreditProduct{
		Name:              "Crédit Auto Standard",
		CreditType:        domain.CreditAuto,
		MinAmount:         500_000,
		MaxAmount:         15_000_000,
		MinDurationMonths: 12,
		MaxDurationMonths: 60,
		MinIncomeRequired: 200_000,
		MaxDebtRatio:      40,
		Active:            true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	product := decode[domain.CreditProduct](t, rec)

	rec = env.do(t, http.MethodPost, "/demands", CreateDemandRequest{
		ClientID:       "client-001",
		CreditType:     domain.CreditAuto,
		Amount:         3_000_000,
		DurationMonths: 24,
	})
	demand := decode[domain.CreditDemand](t, rec)

	rec = env.do(t, http.MethodGet, "/demands/"+demand.ID+"/eligibility/"+product.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := decode[domain.EligibilityResult](t, rec)
	if !result.Eligible {
		t.Errorf("expected eligible, issues: %v", result.Issues)
	}

	// A demand outside the product's amount range is flagged
	rec = env.do(t, http.MethodPost, "/demands", CreateDemandRequest{
		ClientID:       "client-001",
		CreditType:     domain.CreditAuto,
		Amount:         50_000_000,
		DurationMonths: 24,
	})
	big := decode[domain.CreditDemand](t, rec)

	rec = env.do(t, http.MethodGet, "/demands/"+big.ID+"/eligibility/"+product.ID, nil)
	result = decode[domain.EligibilityResult](t, rec)
	if result.Eligible {
		t.Error("expected ineligible for out-of-range amount")
	}
	if len(result.Issues) == 0 {
		t.Error("expected at least one issue")
	}
}

func TestGetUnknownResources(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/demands/nope",
		"/rules/nope",
		"/products/nope",
	} {
		rec := env.do(t, http.MethodGet, path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("GET %s: expected 404, got %d", path, rec.Code)
		}
	}
}
