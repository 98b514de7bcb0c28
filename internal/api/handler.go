package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/repository"
	"github.com/opensource-finance/heron/internal/rules"
	"github.com/opensource-finance/heron/internal/scoring"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	repo    domain.Repository
	cache   domain.Cache
	bus     domain.EventBus
	scorer  *scoring.Service
	engine  *rules.Engine
	version string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, scorer *scoring.Service, engine *rules.Engine, version string) *Handler {
	return &Handler{
		repo:    repo,
		cache:   cache,
		bus:     bus,
		scorer:  scorer,
		engine:  engine,
		version: version,
	}
}

// CreateDemandRequest is the request body for POST /demands.
type CreateDemandRequest struct {
	ClientID       string            `json:"clientId"`
	CreditType     domain.CreditType `json:"creditType"`
	Amount         float64           `json:"amount"`
	DurationMonths int               `json:"durationMonths"`
	Purpose        string            `json:"purpose,omitempty"`
}

// CreateDemand handles POST /demands: persists the demand and publishes it
// for async scoring and rule evaluation.
func (h *Handler) CreateDemand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateDemandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.ClientID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "clientId is required",
		})
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "amount must be positive",
		})
		return
	}
	if req.DurationMonths <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "durationMonths must be positive",
		})
		return
	}
	switch req.CreditType {
	case domain.CreditConsumption, domain.CreditAuto, domain.CreditRealEstate, domain.CreditBusiness:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "unknown creditType",
		})
		return
	}

	now := time.Now().UTC()
	demand := &domain.CreditDemand{
		ID:             uuid.New().String(),
		Reference:      domain.NewReference(),
		ClientID:       req.ClientID,
		CreditType:     req.CreditType,
		Amount:         req.Amount,
		DurationMonths: req.DurationMonths,
		Purpose:        req.Purpose,
		Status:         domain.DemandPendingAnalyst,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.repo.SaveDemand(ctx, demand); err != nil {
		slog.Error("failed to save demand", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save demand",
		})
		return
	}

	// Kick off the async pipeline
	if h.bus != nil {
		payload, _ := json.Marshal(map[string]string{
			"demandId": demand.ID,
			"clientId": demand.ClientID,
			"traceId":  GetTraceID(ctx),
		})
		if err := h.bus.Publish(ctx, domain.TopicDemandSubmitted, payload); err != nil {
			slog.Error("failed to publish demand", "demand_id", demand.ID, "error", err)
		}
	}

	slog.Info("demand created",
		"demand_id", demand.ID,
		"reference", demand.Reference,
		"client_id", demand.ClientID,
	)
	writeJSON(w, http.StatusCreated, demand)
}

// GetDemand handles GET /demands/{id}.
func (h *Handler) GetDemand(w http.ResponseWriter, r *http.Request) {
	demandID := chi.URLParam(r, "id")

	demand, err := h.repo.GetDemand(r.Context(), demandID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "demand not found",
		})
		return
	}
	if err != nil {
		slog.Error("failed to get demand", "id", demandID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get demand",
		})
		return
	}

	writeJSON(w, http.StatusOK, demand)
}

// ComputeScore handles POST /demands/{id}/score: synchronously computes
// (or recomputes) the demand's score.
func (h *Handler) ComputeScore(w http.ResponseWriter, r *http.Request) {
	demandID := chi.URLParam(r, "id")

	score, err := h.scorer.ScoreDemand(r.Context(), demandID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "demand not found",
		})
		return
	}
	if err != nil {
		slog.Error("scoring failed", "demand_id", demandID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "scoring failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, score)
}

// GetScore handles GET /demands/{id}/score.
func (h *Handler) GetScore(w http.ResponseWriter, r *http.Request) {
	demandID := chi.URLParam(r, "id")

	score, err := h.scorer.GetScore(r.Context(), demandID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "score not found",
		})
		return
	}
	if err != nil {
		slog.Error("failed to get score", "demand_id", demandID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get score",
		})
		return
	}

	writeJSON(w, http.StatusOK, score)
}

// EvaluateRules handles POST /demands/{id}/evaluate: runs every applicable
// active rule against the demand and returns the summary.
func (h *Handler) EvaluateRules(w http.ResponseWriter, r *http.Request) {
	demandID := chi.URLParam(r, "id")

	summary, err := h.engine.EvaluateAll(r.Context(), demandID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "demand not found",
		})
		return
	}
	if err != nil {
		slog.Error("rule evaluation failed", "demand_id", demandID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "rule evaluation failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ListEvaluations handles GET /demands/{id}/evaluations: the append-only
// evaluation history of a demand.
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	demandID := chi.URLParam(r, "id")

	evals, err := h.repo.ListEvaluations(r.Context(), demandID)
	if err != nil {
		slog.Error("failed to list evaluations", "demand_id", demandID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list evaluations",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"demandId":    demandID,
		"evaluations": evals,
		"count":       len(evals),
	})
}

// CheckEligibility handles GET /demands/{id}/eligibility/{productId}.
func (h *Handler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	demandID := chi.URLParam(r, "id")
	productID := chi.URLParam(r, "productId")

	result, err := h.engine.CheckProductEligibility(r.Context(), demandID, productID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "demand or product not found",
		})
		return
	}
	if err != nil {
		slog.Error("eligibility check failed",
			"demand_id", demandID,
			"product_id", productID,
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "eligibility check failed",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListRules returns all rules currently loaded in the engine.
// Rules are loaded from the database at startup and can be hot-reloaded via
// POST /rules/reload.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	loaded := h.engine.LoadedRules()

	writeJSON(w, http.StatusOK, map[string]any{
		"rules":  loaded,
		"count":  len(loaded),
		"source": "database",
	})
}

// GetRule retrieves a rule by ID.
func (h *Handler) GetRule(w http.ResponseWriter, r *http.Request) {
	ruleID := chi.URLParam(r, "id")

	rule, err := h.repo.GetRule(r.Context(), ruleID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "rule not found",
		})
		return
	}
	if err != nil {
		slog.Error("failed to get rule", "id", ruleID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get rule",
		})
		return
	}

	writeJSON(w, http.StatusOK, rule)
}

// CreateRuleRequest is the request body for creating a rule.
type CreateRuleRequest struct {
	ID             string            `json:"id,omitempty"`
	Name           string            `json:"name"`
	RuleType       domain.RuleType   `json:"ruleType"`
	CreditType     domain.CreditType `json:"creditType,omitempty"`
	Condition      json.RawMessage   `json:"condition"`
	ThresholdValue *float64          `json:"thresholdValue,omitempty"`
	Active         bool              `json:"active"`
	Priority       int               `json:"priority"`
	Description    string            `json:"description,omitempty"`
}

// CreateRule creates a new rule and saves it to the database.
// After saving, call POST /rules/reload to hot-reload into the engine.
func (h *Handler) CreateRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Name == "" || req.RuleType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name and ruleType are required",
		})
		return
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if len(req.Condition) == 0 {
		req.Condition = json.RawMessage(`{}`)
	}

	now := time.Now().UTC()
	rule := &domain.BusinessRule{
		ID:             req.ID,
		Name:           req.Name,
		RuleType:       req.RuleType,
		CreditType:     req.CreditType,
		Condition:      req.Condition,
		ThresholdValue: req.ThresholdValue,
		Active:         req.Active,
		Priority:       req.Priority,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// Expression rules are validated before they are persisted
	if err := h.engine.ValidateRule(rule); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid rule: " + err.Error(),
		})
		return
	}

	if err := h.repo.SaveRule(ctx, rule); err != nil {
		slog.Error("failed to save rule", "id", rule.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save rule",
		})
		return
	}

	slog.Info("rule created", "id", rule.ID, "name", rule.Name)
	writeJSON(w, http.StatusCreated, map[string]any{
		"rule":    rule,
		"message": "Rule created. Call POST /rules/reload to apply changes.",
	})
}

// ReloadRules reloads all active rules from the database into the engine.
// This enables hot-reloading without server restart.
func (h *Handler) ReloadRules(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.ReloadRules(r.Context())
	if err != nil {
		slog.Error("failed to reload rules", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload rules: " + err.Error(),
		})
		return
	}

	slog.Info("rules reloaded from database", "count", count)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "rules reloaded successfully",
		"count":   count,
	})
}

// ListProducts handles GET /products.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListProducts(r.Context())
	if err != nil {
		slog.Error("failed to list products", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list products",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct handles GET /products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "id")

	product, err := h.repo.GetProduct(r.Context(), productID)
	if errors.Is(err, repository.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "product not found",
		})
		return
	}
	if err != nil {
		slog.Error("failed to get product", "id", productID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to get product",
		})
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles POST /products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var product domain.CreditProduct
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if product.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name is required",
		})
		return
	}
	if product.MaxAmount < product.MinAmount {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "maxAmount must be >= minAmount",
		})
		return
	}

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.RequiredDocuments == nil {
		product.RequiredDocuments = []string{}
	}

	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	if err := h.repo.SaveProduct(ctx, &product); err != nil {
		slog.Error("failed to save product", "id", product.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to save product",
		})
		return
	}

	slog.Info("product created", "id", product.ID, "name", product.Name)
	writeJSON(w, http.StatusCreated, &product)
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
