package domain

import (
	"context"
	"time"
)

// Repository defines the interface for data persistence.
type Repository interface {
	// Client data (read side of the scoring pipeline)
	SaveProfile(ctx context.Context, profile *ClientProfile) error
	GetProfile(ctx context.Context, clientID string) (*ClientProfile, error)
	SavePaymentRecord(ctx context.Context, rec *PaymentRecord) error
	ListPaymentRecords(ctx context.Context, clientID string) ([]*PaymentRecord, error)
	SaveTransactionRecord(ctx context.Context, rec *TransactionRecord) error
	ListTransactionRecords(ctx context.Context, clientID string) ([]*TransactionRecord, error)

	// Demands
	SaveDemand(ctx context.Context, demand *CreditDemand) error
	GetDemand(ctx context.Context, demandID string) (*CreditDemand, error)

	// Scores: exactly one per demand, recomputation replaces.
	UpsertScore(ctx context.Context, score *Score) error
	GetScore(ctx context.Context, demandID string) (*Score, error)

	// Business rules
	SaveRule(ctx context.Context, rule *BusinessRule) error
	GetRule(ctx context.Context, ruleID string) (*BusinessRule, error)
	ListActiveRules(ctx context.Context) ([]*BusinessRule, error)

	// Rule evaluations: append-only history.
	AppendEvaluation(ctx context.Context, eval *RuleEvaluation) error
	ListEvaluations(ctx context.Context, demandID string) ([]*RuleEvaluation, error)

	// Credit products
	SaveProduct(ctx context.Context, product *CreditProduct) error
	GetProduct(ctx context.Context, productID string) (*CreditProduct, error)
	ListProducts(ctx context.Context) ([]*CreditProduct, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
