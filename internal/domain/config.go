package domain

import "time"

// Config holds the complete Heron configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Tier determines infrastructure choices
	Tier Tier `json:"tier"`

	// Component configurations
	Repository RepositoryConfig `json:"repository"`
	Cache      CacheConfig      `json:"cache"`
	EventBus   EventBusConfig   `json:"eventBus"`

	// Scoring policy knobs
	Scoring ScoringPolicy `json:"scoring"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool   `json:"enabled"`
	ServiceName  string `json:"serviceName"`
	ExporterType string `json:"exporterType"` // stdout, otlp, jaeger
	Endpoint     string `json:"endpoint"`
}

// Tier represents the deployment tier.
type Tier string

const (
	// TierCommunity is the free tier with SQLite + channels
	TierCommunity Tier = "community"

	// TierPro is the paid tier with PostgreSQL + NATS + Redis
	TierPro Tier = "pro"
)

// ScoringPolicy groups the tunable constants of the scoring pipeline.
// The sentinel values replace divisions by non-positive income with a
// "maximum unfavorable" reading instead of a division error.
type ScoringPolicy struct {
	// BaseScore is the starting point before adjustments.
	BaseScore int `json:"baseScore"`

	// RatioSentinel is the loan-to-income / amount-to-annual-income value
	// used when monthly income is not positive.
	RatioSentinel float64 `json:"ratioSentinel"`

	// CapacitySentinel is the payment-capacity percentage used when
	// available income is not positive.
	CapacitySentinel float64 `json:"capacitySentinel"`

	// InstallmentFactor inflates the raw amount/duration installment
	// estimate to account for interest and fees.
	InstallmentFactor float64 `json:"installmentFactor"`

	// Fallback score produced when the client has no profile.
	FallbackScore      int     `json:"fallbackScore"`
	FallbackConfidence float64 `json:"fallbackConfidence"`

	// Model version tags written on stored scores.
	ModelVersion         string `json:"modelVersion"`
	FallbackModelVersion string `json:"fallbackModelVersion"`
}

// DefaultScoringPolicy returns the production scoring constants.
func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		BaseScore:            500,
		RatioSentinel:        999,
		CapacitySentinel:     200,
		InstallmentFactor:    1.08,
		FallbackScore:        400,
		FallbackConfidence:   50,
		ModelVersion:         "v1.1-advanced",
		FallbackModelVersion: "v1.0-mvp",
	}
}

// DefaultConfig returns a default configuration for Community tier.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Tier: TierCommunity,
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./heron.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Scoring: DefaultScoringPolicy(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "heron",
		},
	}
}

// ProConfig returns a configuration for Pro tier.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "heron",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Tracing.Enabled = true
	return cfg
}
