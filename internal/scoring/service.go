package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/repository"
	"github.com/opensource-finance/heron/internal/stats"
)

// scoreCacheTTL bounds how long a computed score may be served from cache.
const scoreCacheTTL = 10 * time.Minute

// Service orchestrates the scoring pipeline for a demand: fetch inputs,
// extract features, compute, classify, explain, recommend, upsert.
type Service struct {
	repo       domain.Repository
	cache      domain.Cache // optional
	stats      *stats.Service
	extractor  *Extractor
	calculator *Calculator
	policy     domain.ScoringPolicy

	// now is injected for deterministic age computation in tests.
	now func() time.Time
}

// NewService creates a scoring service. cache may be nil.
func NewService(repo domain.Repository, cache domain.Cache, policy domain.ScoringPolicy) *Service {
	return &Service{
		repo:       repo,
		cache:      cache,
		stats:      stats.NewService(repo),
		extractor:  NewExtractor(policy),
		calculator: NewCalculator(policy),
		policy:     policy,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ScoreDemand computes and upserts the Score for a demand. The stored
// record is replaced atomically; the demand's workflow status is never
// touched. A client without a profile receives the documented fallback
// score instead of an error.
func (s *Service) ScoreDemand(ctx context.Context, demandID string) (*domain.Score, error) {
	demand, err := s.repo.GetDemand(ctx, demandID)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand %s: %w", demandID, err)
	}

	profile, err := s.repo.GetProfile(ctx, demand.ClientID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.fallbackScore(ctx, demand)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for client %s: %w", demand.ClientID, err)
	}

	paymentStats, err := s.stats.PaymentStatistics(ctx, demand.ClientID)
	if err != nil {
		return nil, err
	}
	txStats, err := s.stats.TransactionStatistics(ctx, demand.ClientID)
	if err != nil {
		return nil, err
	}

	features := s.extractor.Extract(profile, demand, paymentStats, txStats, s.now())
	value := s.calculator.Compute(features)
	positive, negative := ExplainFactors(features)
	recommendation, confidence := Recommend(value, features)

	score := &domain.Score{
		ID:              uuid.New().String(),
		DemandID:        demand.ID,
		ScoreValue:      value,
		RiskLevel:       ClassifyRisk(value),
		FactorsPositive: positive,
		FactorsNegative: negative,
		ModelVersion:    s.policy.ModelVersion,
		Features:        features,
		Attribution:     SimulateAttribution(features),
		Recommendation:  recommendation,
		ConfidenceLevel: confidence,
		CalculatedAt:    s.now(),
	}

	return s.persist(ctx, score)
}

// GetScore returns the stored score for a demand, serving from cache when
// possible.
func (s *Service) GetScore(ctx context.Context, demandID string) (*domain.Score, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetScore(ctx, demandID); err == nil && cached != nil {
			return cached, nil
		}
	}

	score, err := s.repo.GetScore(ctx, demandID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetScore(ctx, demandID, score, scoreCacheTTL); err != nil {
			slog.Warn("failed to cache score", "demand_id", demandID, "error", err)
		}
	}
	return score, nil
}

// fallbackScore records the degraded score used when the client has no
// profile. This is an explicit incomplete-data policy, not an error path.
func (s *Service) fallbackScore(ctx context.Context, demand *domain.CreditDemand) (*domain.Score, error) {
	slog.Info("client profile missing, producing fallback score",
		"demand_id", demand.ID,
		"client_id", demand.ClientID,
	)

	score := &domain.Score{
		ID:              uuid.New().String(),
		DemandID:        demand.ID,
		ScoreValue:      s.policy.FallbackScore,
		RiskLevel:       domain.RiskVeryHigh,
		FactorsPositive: []domain.Factor{},
		FactorsNegative: []domain.Factor{
			{Factor: "Profil client incomplet", Value: "N/A", Impact: -200},
		},
		ModelVersion:    s.policy.FallbackModelVersion,
		Features:        domain.FeatureSet{},
		Attribution:     map[string]int{},
		Recommendation:  domain.RecommendManualReview,
		ConfidenceLevel: s.policy.FallbackConfidence,
		CalculatedAt:    s.now(),
	}

	return s.persist(ctx, score)
}

// persist invalidates the cache, upserts the score and re-caches it. On a
// persistence failure nothing is cached and the error is surfaced: callers
// never observe a partially written score.
func (s *Service) persist(ctx context.Context, score *domain.Score) (*domain.Score, error) {
	if s.cache != nil {
		if err := s.cache.Delete(ctx, "score:"+score.DemandID); err != nil {
			slog.Warn("failed to invalidate cached score", "demand_id", score.DemandID, "error", err)
		}
	}

	if err := s.repo.UpsertScore(ctx, score); err != nil {
		return nil, fmt.Errorf("failed to persist score for demand %s: %w", score.DemandID, err)
	}

	if s.cache != nil {
		if err := s.cache.SetScore(ctx, score.DemandID, score, scoreCacheTTL); err != nil {
			slog.Warn("failed to cache score", "demand_id", score.DemandID, "error", err)
		}
	}

	slog.Info("score computed",
		"demand_id", score.DemandID,
		"score", score.ScoreValue,
		"risk_level", score.RiskLevel,
		"recommendation", score.Recommendation,
	)

	return score, nil
}
