package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	EntityStore EntityStoreConfig `yaml:"entity_store"`
	Database    DatabaseConfig    `yaml:"database"`
	Redis       RedisConfig       `yaml:"redis"`
	Live        LiveConfig        `yaml:"live"`
	Dashboard   DashboardConfig   `yaml:"dashboard"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the bind host, honoring SERVER_HOST and container runtimes.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// EntityStoreConfig selects and configures the source of users, departments,
// email logs and training status.
type EntityStoreConfig struct {
	Type           string `yaml:"type"` // "http" or "postgres"
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	PageSize       int    `yaml:"page_size"`

	// BreakerFailures consecutive failures open the circuit for
	// BreakerOpenSeconds.
	BreakerFailures    int `yaml:"breaker_failures"`
	BreakerOpenSeconds int `yaml:"breaker_open_seconds"`
}

// Timeout returns the per-request timeout as a duration
func (c EntityStoreConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BreakerOpen is how long the circuit stays open before a probe.
func (c EntityStoreConfig) BreakerOpen() time.Duration {
	return time.Duration(c.BreakerOpenSeconds) * time.Second
}

// DatabaseConfig holds PostgreSQL settings for the postgres entity store
type DatabaseConfig struct {
	URL                string `yaml:"url"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	StatementTimeoutMS int    `yaml:"statement_timeout_ms"`
}

// RedisConfig holds Redis settings. Redis is optional; without it the wipe
// lock falls back to a PostgreSQL advisory lock or a process-local lock.
type RedisConfig struct {
	URL            string `yaml:"url"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

// LockTTL returns the wipe lock TTL as a duration
func (c RedisConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// LiveConfig holds live refresh settings
type LiveConfig struct {
	IntervalSeconds int  `yaml:"interval_seconds"`
	StartLive       bool `yaml:"start_live"`
}

// Interval returns the live refresh period as a duration
func (c LiveConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// DashboardConfig holds view-model options
type DashboardConfig struct {
	TrendDepartment       string `yaml:"trend_department"`
	RefreshTimeoutSeconds int    `yaml:"refresh_timeout_seconds"`
	NotificationLimit     int    `yaml:"notification_limit"`
}

// RefreshTimeout bounds a single refresh cycle
func (c DashboardConfig) RefreshTimeout() time.Duration {
	return time.Duration(c.RefreshTimeoutSeconds) * time.Second
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// ShouldRedactPII defaults to true when unset
func (c LoggingConfig) ShouldRedactPII() bool {
	return c.RedactPII == nil || *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied, for running
// without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if cfg.EntityStore.Type == "" {
		cfg.EntityStore.Type = "http"
	}
	if cfg.EntityStore.BaseURL == "" {
		cfg.EntityStore.BaseURL = "http://localhost:8000"
	}
	if cfg.EntityStore.TimeoutSeconds == 0 {
		cfg.EntityStore.TimeoutSeconds = 15
	}
	if cfg.EntityStore.MaxRetries == 0 {
		cfg.EntityStore.MaxRetries = 2
	}
	if cfg.EntityStore.PageSize == 0 {
		cfg.EntityStore.PageSize = 100
	}
	if cfg.EntityStore.BreakerFailures == 0 {
		cfg.EntityStore.BreakerFailures = 5
	}
	if cfg.EntityStore.BreakerOpenSeconds == 0 {
		cfg.EntityStore.BreakerOpenSeconds = 30
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.StatementTimeoutMS == 0 {
		cfg.Database.StatementTimeoutMS = 15000
	}
	if cfg.Redis.LockTTLSeconds == 0 {
		cfg.Redis.LockTTLSeconds = 60
	}
	if cfg.Live.IntervalSeconds == 0 {
		cfg.Live.IntervalSeconds = 10
	}
	if cfg.Dashboard.TrendDepartment == "" {
		cfg.Dashboard.TrendDepartment = "IT Department"
	}
	if cfg.Dashboard.RefreshTimeoutSeconds == 0 {
		cfg.Dashboard.RefreshTimeoutSeconds = 30
	}
	if cfg.Dashboard.NotificationLimit == 0 {
		cfg.Dashboard.NotificationLimit = 50
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) before reading env vars. A missing
// config file is not an error; defaults are used instead.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if os.IsNotExist(err) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	if v := os.Getenv("ENTITY_STORE_URL"); v != "" {
		cfg.EntityStore.BaseURL = v
	}
	if v := os.Getenv("ENTITY_STORE_TYPE"); v != "" {
		cfg.EntityStore.Type = v
	}
	// A database URL implies the postgres store unless a type was forced.
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
		if os.Getenv("ENTITY_STORE_TYPE") == "" {
			cfg.EntityStore.Type = "postgres"
		}
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("LIVE_INTERVAL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Live.IntervalSeconds = n
		}
	}
	if v := os.Getenv("TREND_DEPARTMENT"); v != "" {
		cfg.Dashboard.TrendDepartment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}

	return cfg, nil
}
