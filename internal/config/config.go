// Package config defines the complaint analyzer configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	infraconfig "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/config"
	infraes "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/elasticsearch"
	infragin "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/gin"
	infralogger "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/logger"
	infraredis "github.com/jonesrussell/north-cloud/complaint-analyzer/infrastructure/redis"
)

// Storage backends.
const (
	BackendMemory        = "memory"
	BackendElasticsearch = "elasticsearch"
	BackendPostgres      = "postgres"
)

const (
	defaultServiceName = "complaint-analyzer"
	defaultPort        = 8080
	defaultIndex       = "complaints"
	defaultAITimeout   = 15 * time.Second
	defaultAIModel     = "claude-sonnet-4-5-20250929"
	defaultAIMaxTokens = 512
	defaultAIBreakerN  = 5
	defaultAICooldown  = 30 * time.Second
	defaultCacheTTL    = 24 * time.Hour
	defaultSubmitRate  = 5.0
	defaultSubmitBurst = 10
	defaultDBHost      = "localhost"
	defaultDBPort      = "5432"
	defaultDBName      = "complaints"
	defaultDBSSLMode   = "disable"
)

// Config is the full service configuration.
type Config struct {
	Service       ServiceConfig       `yaml:"service"`
	Storage       StorageConfig       `yaml:"storage"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	AI            AIConfig            `yaml:"ai"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	CORS          infragin.CORSConfig `yaml:"cors"`
	Logging       infralogger.Config  `yaml:"logging"`
}

// ServiceConfig holds HTTP service settings.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `env:"SERVICE_VERSION" yaml:"version"`
	Port    int    `env:"PORT"            yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"       yaml:"debug"`
}

// StorageConfig selects the repository backend.
type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND" yaml:"backend"`
}

// ElasticsearchConfig holds the index name and client settings.
type ElasticsearchConfig struct {
	infraes.Config `yaml:",inline"`
	Index          string `env:"ELASTICSEARCH_INDEX" yaml:"index"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string `env:"POSTGRES_HOST"     yaml:"host"`
	Port     string `env:"POSTGRES_PORT"     yaml:"port"`
	User     string `env:"POSTGRES_USER"     yaml:"user"`
	Password string `env:"POSTGRES_PASSWORD" yaml:"password"` //nolint:gosec // G117: connection config
	DBName   string `env:"POSTGRES_DB"       yaml:"dbname"`
	SSLMode  string `env:"POSTGRES_SSLMODE"  yaml:"sslmode"`
}

// RedisConfig enables the classification cache.
type RedisConfig struct {
	infraredis.Config      `yaml:",inline"`
	Enabled                bool          `env:"REDIS_ENABLED"   yaml:"enabled"`
	ClassificationCacheTTL time.Duration `env:"REDIS_CACHE_TTL" yaml:"classification_cache_ttl"`
}

// AIConfig configures the LLM classifier. An empty APIKey disables it.
type AIConfig struct {
	APIKey    string        `env:"ANTHROPIC_API_KEY"  yaml:"api_key"` //nolint:gosec // G117: credential config
	Model     string        `env:"ANTHROPIC_MODEL"    yaml:"model"`
	BaseURL   string        `env:"ANTHROPIC_BASE_URL" yaml:"base_url"`
	MaxTokens int64         `yaml:"max_tokens"`
	Timeout   time.Duration `env:"AI_TIMEOUT"         yaml:"timeout"`
	// BreakerFailures consecutive LLM failures skip the LLM for BreakerCooldown.
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// Enabled reports whether an API key is configured.
func (c AIConfig) Enabled() bool {
	return c.APIKey != ""
}

// RateLimitConfig throttles POST /submit when Enabled.
type RateLimitConfig struct {
	Enabled         bool    `env:"RATE_LIMIT_ENABLED"           yaml:"enabled"`
	SubmitPerSecond float64 `env:"RATE_LIMIT_SUBMIT_PER_SECOND" yaml:"submit_per_second"`
	Burst           int     `env:"RATE_LIMIT_BURST"             yaml:"burst"`
}

// Load reads path (a missing file is fine), applies defaults and environment
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := infraconfig.LoadOptional(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Service.Name == "" {
		cfg.Service.Name = defaultServiceName
	}
	if cfg.Service.Port == 0 {
		cfg.Service.Port = defaultPort
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = BackendMemory
	}
	if cfg.Elasticsearch.Index == "" {
		cfg.Elasticsearch.Index = defaultIndex
	}
	setDatabaseDefaults(&cfg.Database)
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}
	if cfg.Redis.ClassificationCacheTTL == 0 {
		cfg.Redis.ClassificationCacheTTL = defaultCacheTTL
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultAIModel
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = defaultAIMaxTokens
	}
	if cfg.AI.Timeout == 0 {
		cfg.AI.Timeout = defaultAITimeout
	}
	if cfg.AI.BreakerFailures == 0 {
		cfg.AI.BreakerFailures = defaultAIBreakerN
	}
	if cfg.AI.BreakerCooldown == 0 {
		cfg.AI.BreakerCooldown = defaultAICooldown
	}
	if cfg.RateLimit.SubmitPerSecond == 0 {
		cfg.RateLimit.SubmitPerSecond = defaultSubmitRate
	}
	if cfg.RateLimit.Burst == 0 {
		cfg.RateLimit.Burst = defaultSubmitBurst
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.Enabled = true
	}
	cfg.Logging.SetDefaults()
}

func setDatabaseDefaults(db *DatabaseConfig) {
	if db.Host == "" {
		db.Host = defaultDBHost
	}
	if db.Port == "" {
		db.Port = defaultDBPort
	}
	if db.DBName == "" {
		db.DBName = defaultDBName
	}
	if db.SSLMode == "" {
		db.SSLMode = defaultDBSSLMode
	}
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error
	if err := infraconfig.ValidatePort("service.port", c.Service.Port); err != nil {
		errs = append(errs, err)
	}
	if err := infraconfig.ValidateOneOf("storage.backend", c.Storage.Backend,
		BackendMemory, BackendElasticsearch, BackendPostgres); err != nil {
		errs = append(errs, err)
	}
	if err := infraconfig.ValidateLogLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	if err := infraconfig.ValidateOneOf("logging.format", c.Logging.Format,
		infralogger.FormatJSON, infralogger.FormatConsole); err != nil {
		errs = append(errs, err)
	}
	if c.Storage.Backend == BackendPostgres {
		if err := infraconfig.ValidateRequired("database.user", c.Database.User); err != nil {
			errs = append(errs, err)
		}
	}
	if c.AI.Timeout < 0 {
		errs = append(errs, &infraconfig.ValidationError{Field: "ai.timeout", Message: "must not be negative"})
	}
	if c.RateLimit.Enabled && c.RateLimit.SubmitPerSecond <= 0 {
		errs = append(errs, &infraconfig.ValidationError{Field: "rate_limit.submit_per_second", Message: "must be positive"})
	}
	return errors.Join(errs...)
}
