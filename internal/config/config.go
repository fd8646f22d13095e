package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DatabasePostgres = "postgres"
	DatabaseSQLite   = "sqlite"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel  string
	LogFormat string

	DatabaseType string
	DatabaseURL  string
	SQLitePath   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheEnabled  bool
	CacheTTL      time.Duration

	WriteTimeout   time.Duration
	CORSOrigins    []string
	MetricsEnabled bool
}

var defaults = map[string]any{
	"app_name":        "invoice-dashboard",
	"app_version":     "0.1.0",
	"environment":     "development",
	"http_addr":       ":8080",
	"log_level":       "info",
	"log_format":      "json",
	"database_type":   DatabasePostgres,
	"database_url":    "",
	"sqlite_path":     "dashboard.db",
	"redis_addr":      "localhost:6379",
	"redis_password":  "",
	"redis_db":        0,
	"cache_enabled":   false,
	"cache_ttl":       time.Minute,
	"write_timeout":   5 * time.Second,
	"cors_origins":    "http://localhost:3000",
	"metrics_enabled": true,
}

// Load reads .env, an optional dashboard.yml and the environment, in increasing
// precedence. Extra search paths for dashboard.yml are tried before the defaults.
func Load(paths ...string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("dashboard")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("/etc/invoice-dashboard")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		AppName:        v.GetString("app_name"),
		AppVersion:     v.GetString("app_version"),
		Environment:    v.GetString("environment"),
		HTTPAddr:       v.GetString("http_addr"),
		LogLevel:       strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:      strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		DatabaseType:   strings.ToLower(strings.TrimSpace(v.GetString("database_type"))),
		DatabaseURL:    strings.TrimSpace(v.GetString("database_url")),
		SQLitePath:     v.GetString("sqlite_path"),
		RedisAddr:      v.GetString("redis_addr"),
		RedisPassword:  v.GetString("redis_password"),
		RedisDB:        v.GetInt("redis_db"),
		CacheEnabled:   v.GetBool("cache_enabled"),
		CacheTTL:       v.GetDuration("cache_ttl"),
		WriteTimeout:   v.GetDuration("write_timeout"),
		CORSOrigins:    parseList(v.GetString("cors_origins")),
		MetricsEnabled: v.GetBool("metrics_enabled"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DatabaseType {
	case DatabasePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for postgres")
		}
	case DatabaseSQLite:
	default:
		return fmt.Errorf("unsupported database type %q", c.DatabaseType)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("WRITE_TIMEOUT must be positive, got %s", c.WriteTimeout)
	}
	return nil
}

func (c Config) IsPostgres() bool {
	return c.DatabaseType == DatabasePostgres
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
