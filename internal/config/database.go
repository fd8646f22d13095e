package config

import (
	"context"
	"fmt"
	"time"

	"invoice-dashboard-backend/internal/observability/logger"

	"github.com/glebarez/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	gormprom "gorm.io/plugin/prometheus"
)

const slowQueryThreshold = 200 * time.Millisecond

// Dialect picks the gorm dialector for the configured database.
func Dialect(cfg Config) (gorm.Dialector, error) {
	switch cfg.DatabaseType {
	case DatabasePostgres:
		return postgres.Open(cfg.DatabaseURL), nil
	case DatabaseSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	default:
		return nil, fmt.Errorf("unsupported %s type", cfg.DatabaseType)
	}
}

// InitDB opens the gorm connection used by the invoice and customer repositories.
func InitDB(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if cfg.LogLevel == "debug" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.NewGormLogger(level, slowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DatabaseType, err)
	}

	if cfg.MetricsEnabled {
		err := db.Use(gormprom.New(gormprom.Config{
			DBName:          cfg.AppName,
			RefreshInterval: 15,
		}))
		if err != nil {
			return nil, fmt.Errorf("register gorm metrics: %w", err)
		}
	}

	log.Info("database connected", zap.String("type", cfg.DatabaseType))
	return db, nil
}

// InitPool opens the pgx pool behind the dashboard aggregate queries. It
// returns nil without error when the database is not postgres.
func InitPool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if !cfg.IsPostgres() {
		return nil, nil
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// NewRedisClient returns nil when the page cache is disabled.
func NewRedisClient(cfg Config, log *zap.Logger) *redis.Client {
	if !cfg.CacheEnabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	return client
}
