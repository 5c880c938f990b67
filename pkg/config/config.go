package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Redis configuration (optional stats cache)
	Redis RedisConfig

	// Auth configuration
	Auth AuthConfig

	// Sweep configuration
	Sweep SweepConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// StorageConfig holds PostgreSQL connection configuration
type StorageConfig struct {
	PostgresURL         string
	PostgresReplicaURLs string
	MaxConns            int
	MinConns            int
	Timeout             time.Duration
	MaxLifetime         time.Duration
	MaxIdleTime         time.Duration
}

// RedisConfig holds the optional Redis cache configuration
type RedisConfig struct {
	Addr     string
	Password string
	StatsTTL time.Duration
}

// AuthConfig holds authentication settings. The admin credentials
// seed the first user on startup; existing users are never touched.
type AuthConfig struct {
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// SweepConfig controls the optional expiry sweep job. The sweep is off by
// default: enabling it changes what total_active/total_expired mean on the
// dashboard, since lapsed clients are otherwise only noticed by date-window
// queries and never re-statused.
type SweepConfig struct {
	Enabled  bool
	Schedule string
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	LogLevel       string
	MetricsEnabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Storage:       loadStorageConfig(),
		Redis:         loadRedisConfig(),
		Auth:          loadAuthConfig(),
		Sweep:         loadSweepConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("RENOVA_HOST", "0.0.0.0"),
		Port:            getEnv("RENOVA_PORT", "8080"),
		ReadTimeout:     getEnvDuration("RENOVA_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("RENOVA_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("RENOVA_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("RENOVA_SHUTDOWN_TIMEOUT", 30*time.Second),
		HealthPort:      getEnv("RENOVA_HEALTH_PORT", "9090"),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		PostgresURL:         getEnv("RENOVA_POSTGRES_URL", ""),
		PostgresReplicaURLs: getEnv("RENOVA_POSTGRES_REPLICA_URLS", ""),
		MaxConns:            getEnvInt("RENOVA_POSTGRES_MAX_CONNS", 25),
		MinConns:            getEnvInt("RENOVA_POSTGRES_MIN_CONNS", 5),
		Timeout:             getEnvDuration("RENOVA_POSTGRES_TIMEOUT", 10*time.Second),
		MaxLifetime:         getEnvDuration("RENOVA_POSTGRES_MAX_LIFETIME", time.Hour),
		MaxIdleTime:         getEnvDuration("RENOVA_POSTGRES_MAX_IDLE_TIME", 10*time.Minute),
	}
}

func loadRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     getEnv("RENOVA_REDIS_ADDR", ""),
		Password: getEnv("RENOVA_REDIS_PASSWORD", ""),
		StatsTTL: getEnvDuration("RENOVA_STATS_CACHE_TTL", 30*time.Second),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		TokenTTL:      getEnvDuration("RENOVA_TOKEN_TTL", 24*time.Hour),
		AdminEmail:    getEnv("RENOVA_ADMIN_EMAIL", "admin@admin.com"),
		AdminPassword: getEnv("RENOVA_ADMIN_PASSWORD", "admin"),
	}
}

func loadSweepConfig() SweepConfig {
	return SweepConfig{
		Enabled:  getEnvBool("RENOVA_SWEEP_ENABLED", false),
		Schedule: getEnv("RENOVA_SWEEP_SCHEDULE", "@hourly"),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:       getEnv("RENOVA_LOG_LEVEL", "info"),
		MetricsEnabled: getEnvBool("RENOVA_METRICS_ENABLED", true),
	}
}

// Validate checks configuration invariants before startup
func (c *Config) Validate() error {
	if c.Storage.PostgresURL == "" {
		return fmt.Errorf("RENOVA_POSTGRES_URL is required")
	}
	if c.Storage.MaxConns < c.Storage.MinConns {
		return fmt.Errorf("RENOVA_POSTGRES_MAX_CONNS (%d) must be >= RENOVA_POSTGRES_MIN_CONNS (%d)",
			c.Storage.MaxConns, c.Storage.MinConns)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("RENOVA_TOKEN_TTL must be positive")
	}
	if c.Auth.AdminEmail == "" || c.Auth.AdminPassword == "" {
		return fmt.Errorf("RENOVA_ADMIN_EMAIL and RENOVA_ADMIN_PASSWORD must not be empty")
	}
	switch strings.ToLower(c.Observability.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid RENOVA_LOG_LEVEL %q", c.Observability.LogLevel)
	}
	return nil
}

// ReplicaURLs returns the configured replica URLs as a slice
func (c *StorageConfig) ReplicaURLs() []string {
	if c.PostgresReplicaURLs == "" {
		return nil
	}
	parts := strings.Split(c.PostgresReplicaURLs, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	return urls
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
