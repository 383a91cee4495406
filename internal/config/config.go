package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration values for the lead intake API
type Config struct {
	// Server configuration
	Port               int      `envconfig:"PORT" default:"8080"`
	Environment        string   `envconfig:"ENVIRONMENT" default:"development"`
	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// MongoDB configuration
	MongoURI       string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase  string `envconfig:"MONGODB_DATABASE" default:"superabroad"`
	LeadCollection string `envconfig:"MONGODB_LEAD_COLLECTION" default:"leads"`

	// Redis configuration. An empty RedisURI and RedisClusterAddrs disable the
	// duplicate guard. Cluster addresses take precedence over RedisURI.
	RedisURI            string        `envconfig:"REDIS_URI"`
	RedisClusterAddrs   []string      `envconfig:"REDIS_CLUSTER_ADDRS"`
	RedisPassword       string        `envconfig:"REDIS_PASSWORD"`
	RedisDB             int           `envconfig:"REDIS_DB" default:"0"`
	LeadDuplicateWindow time.Duration `envconfig:"LEAD_DUPLICATE_WINDOW" default:"24h"`

	// Tracing configuration
	TracingEnabled  bool   `envconfig:"TRACING_ENABLED" default:"false"`
	TracingEndpoint    string  `envconfig:"TRACING_ENDPOINT" default:"localhost:4317"`
	TracingSampleRatio float64 `envconfig:"TRACING_SAMPLE_RATIO" default:"1"`

	// Lead notification email
	SendGridAPIKey        string `envconfig:"SENDGRID_API_KEY"`
	NotificationFromEmail string `envconfig:"NOTIFICATION_FROM_EMAIL" default:"no-reply@superabroad.in"`
	NotificationFromName  string `envconfig:"NOTIFICATION_FROM_NAME" default:"Super Abroad"`
	NotificationEmail     string `envconfig:"NOTIFICATION_EMAIL" default:"sandeep@superabroad.in"`
}

// ClientConfig holds configuration for the lead form client
type ClientConfig struct {
	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:8080"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	// Outbound throttling, in submissions per second
	RateLimit float64 `envconfig:"SUBMIT_RATE_LIMIT" default:"1"`
	RateBurst int     `envconfig:"SUBMIT_RATE_BURST" default:"3"`

	// Circuit breaker
	BreakerMaxFailures uint32        `envconfig:"BREAKER_MAX_FAILURES" default:"5"`
	BreakerOpenTimeout time.Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s"`
}

var (
	AppConfig *Config
)

// LoadConfig loads configuration from environment variables
func LoadConfig() error {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", cfg.Port)
	}
	if cfg.TracingSampleRatio < 0 || cfg.TracingSampleRatio > 1 {
		return fmt.Errorf("invalid TRACING_SAMPLE_RATIO: %v", cfg.TracingSampleRatio)
	}
	if cfg.LeadDuplicateWindow < 0 {
		return fmt.Errorf("invalid LEAD_DUPLICATE_WINDOW: %s", cfg.LeadDuplicateWindow)
	}

	AppConfig = &cfg
	return nil
}

// LoadClientConfig loads the lead form client configuration from environment variables
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.BackendURL == "" {
		return nil, fmt.Errorf("BACKEND_URL must not be empty")
	}
	if cfg.RateLimit <= 0 {
		return nil, fmt.Errorf("invalid SUBMIT_RATE_LIMIT: %v", cfg.RateLimit)
	}
	if cfg.RateBurst < 1 {
		return nil, fmt.Errorf("invalid SUBMIT_RATE_BURST: %d", cfg.RateBurst)
	}

	return &cfg, nil
}
