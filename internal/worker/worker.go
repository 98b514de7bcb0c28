// Package worker provides async demand processing from the EventBus.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/opensource-finance/heron/internal/domain"
	"github.com/opensource-finance/heron/internal/rules"
	"github.com/opensource-finance/heron/internal/scoring"
)

// Worker consumes submitted demands from the EventBus and runs the scoring
// and rule-evaluation pipeline asynchronously.
type Worker struct {
	bus     domain.EventBus
	scorer  *scoring.Service
	engine  *rules.Engine

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, scorer *scoring.Service, engine *rules.Engine) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:    bus,
		scorer: scorer,
		engine: engine,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start subscribes to the demand pipeline topics.
func (w *Worker) Start() error {
	sub, err := w.bus.Subscribe(w.ctx, domain.TopicDemandSubmitted, w.tracked(w.handleDemandSubmitted))
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("worker started", "topic", domain.TopicDemandSubmitted)
	return nil
}

// tracked registers a handler invocation with the shutdown WaitGroup so
// Stop waits for in-flight demands before returning.
func (w *Worker) tracked(h domain.MessageHandler) domain.MessageHandler {
	return func(ctx context.Context, msg *domain.Message) error {
		w.wg.Add(1)
		defer w.wg.Done()
		return h(ctx, msg)
	}
}

// DemandMessage is the payload published when a demand is submitted.
type DemandMessage struct {
	DemandID string `json:"demandId"`
	ClientID string `json:"clientId,omitempty"`
	TraceID  string `json:"traceId,omitempty"`
}

// ScoredMessage is the payload published after scoring completes.
type ScoredMessage struct {
	DemandID       string                `json:"demandId"`
	ScoreValue     int                   `json:"scoreValue"`
	RiskLevel      domain.RiskLevel      `json:"riskLevel"`
	Recommendation domain.Recommendation `json:"recommendation"`
	TraceID        string                `json:"traceId,omitempty"`
}

// FailureMessage is the payload published when the pipeline fails.
type FailureMessage struct {
	DemandID string `json:"demandId"`
	Stage    string `json:"stage"`
	Error    string `json:"error"`
	TraceID  string `json:"traceId,omitempty"`
}

// handleDemandSubmitted runs the full pipeline for one submitted demand:
// score, evaluate rules, publish results.
func (w *Worker) handleDemandSubmitted(ctx context.Context, msg *domain.Message) error {
	start := time.Now()

	var dm DemandMessage
	if err := json.Unmarshal(msg.Payload, &dm); err != nil {
		slog.Error("failed to parse demand message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	traceID := dm.TraceID
	if traceID == "" {
		traceID = msg.ID
	}

	slog.Debug("processing demand",
		"demand_id", dm.DemandID,
		"trace_id", traceID,
	)

	// 1. Compute the score
	score, err := w.scorer.ScoreDemand(ctx, dm.DemandID)
	if err != nil {
		slog.Error("scoring failed",
			"demand_id", dm.DemandID,
			"error", err,
		)
		w.publishFailure(ctx, dm.DemandID, "scoring", err, traceID)
		return err
	}

	scored, _ := json.Marshal(ScoredMessage{
		DemandID:       dm.DemandID,
		ScoreValue:     score.ScoreValue,
		RiskLevel:      score.RiskLevel,
		Recommendation: score.Recommendation,
		TraceID:        traceID,
	})
	if err := w.bus.Publish(ctx, domain.TopicScoreComputed, scored); err != nil {
		slog.Error("failed to publish score",
			"demand_id", dm.DemandID,
			"error", err,
		)
	}

	// 2. Evaluate business rules against the freshly scored demand
	summary, err := w.engine.EvaluateAll(ctx, dm.DemandID)
	if err != nil {
		slog.Error("rule evaluation failed",
			"demand_id", dm.DemandID,
			"error", err,
		)
		w.publishFailure(ctx, dm.DemandID, "rules", err, traceID)
		return err
	}

	evaluated, _ := json.Marshal(summary)
	if err := w.bus.Publish(ctx, domain.TopicRulesEvaluated, evaluated); err != nil {
		slog.Error("failed to publish rule summary",
			"demand_id", dm.DemandID,
			"error", err,
		)
	}

	slog.Info("demand processed",
		"demand_id", dm.DemandID,
		"score", score.ScoreValue,
		"risk_level", score.RiskLevel,
		"all_passed", summary.AllPassed,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

func (w *Worker) publishFailure(ctx context.Context, demandID, stage string, cause error, traceID string) {
	payload, _ := json.Marshal(FailureMessage{
		DemandID: demandID,
		Stage:    stage,
		Error:    cause.Error(),
		TraceID:  traceID,
	})
	if err := w.bus.Publish(ctx, domain.TopicScoringFailed, payload); err != nil {
		slog.Error("failed to publish failure",
			"demand_id", demandID,
			"error", err,
		)
	}
}

// Stop unsubscribes from all topics and waits for in-flight demands to
// finish processing.
func (w *Worker) Stop() error {
	w.cancel()

	// Unsubscribe all
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("worker stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
