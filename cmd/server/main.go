package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"invoice-dashboard-backend/internal/cache"
	"invoice-dashboard-backend/internal/clock"
	"invoice-dashboard-backend/internal/config"
	handler "invoice-dashboard-backend/internal/handlers"
	"invoice-dashboard-backend/internal/migration"
	"invoice-dashboard-backend/internal/observability/logger"
	"invoice-dashboard-backend/internal/observability/metrics"
	"invoice-dashboard-backend/internal/repository"
	"invoice-dashboard-backend/internal/routes"
	"invoice-dashboard-backend/internal/services/dashboard"
	"invoice-dashboard-backend/internal/services/importer"
	"invoice-dashboard-backend/internal/services/intake"
	"invoice-dashboard-backend/internal/services/invoicing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	app := fx.New(
		fx.Provide(
			func() (config.Config, error) { return config.Load() },
			newLogger,
			newDB,
			newPool,
			newRedis,
			newMetrics,
			newPageCache,
			clock.New,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
		fx.Invoke(migration.Apply),

		fx.Provide(
			repository.NewInvoiceRepository,
			repository.NewCustomerRepository,
			intake.NewValidator,
			newInvoicingService,
			newDashboardService,
			newHealthHandler,
			func(s *invoicing.Service, log *zap.Logger) *handler.InvoiceHandler {
				return handler.NewInvoiceHandler(s, log)
			},
			func(s *invoicing.Service, clk clock.Clock, log *zap.Logger) *handler.ImportHandler {
				return handler.NewImportHandler(importer.New(s, clk, log), log)
			},
			func(s *dashboard.Service) *handler.DashboardHandler {
				return handler.NewDashboardHandler(s)
			},
			newEngine,
		),
		fx.Invoke(run),
	)
	app.Run()
}

func newLogger(lc fx.Lifecycle, cfg config.Config) (*zap.Logger, error) {
	return logger.New(lc, logger.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
}

func newDB(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := config.InitDB(cfg, log)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})
	return db, nil
}

func newPool(lc fx.Lifecycle, cfg config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := config.InitPool(ctx, cfg)
	if err != nil || pool == nil {
		return pool, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func newRedis(lc fx.Lifecycle, cfg config.Config, log *zap.Logger) *redis.Client {
	client := config.NewRedisClient(cfg, log)
	if client == nil {
		return nil
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return client.Close() },
	})
	return client
}

// newMetrics uses the default registry, where the gorm plugin also registers.
func newMetrics(cfg config.Config) (*metrics.Metrics, error) {
	if !cfg.MetricsEnabled {
		return nil, nil
	}
	return metrics.New(prometheus.DefaultRegisterer)
}

func newPageCache(cfg config.Config, client *redis.Client, log *zap.Logger) cache.Store {
	if client == nil {
		return cache.Noop{}
	}
	return cache.NewPageCache(client, cfg.CacheTTL, log)
}

func newInvoicingService(
	cfg config.Config,
	validator *intake.Validator,
	invoices *repository.InvoiceRepository,
	pages cache.Store,
	clk clock.Clock,
	m *metrics.Metrics,
	log *zap.Logger,
) *invoicing.Service {
	return invoicing.NewService(validator, invoices, pages, clk, m, invoicing.Config{
		WriteTimeout: cfg.WriteTimeout,
	}, log)
}

func newDashboardService(
	pool *pgxpool.Pool,
	invoices *repository.InvoiceRepository,
	customers *repository.CustomerRepository,
	log *zap.Logger,
) *dashboard.Service {
	var queries dashboard.Queries
	if pool != nil {
		queries = repository.NewDashboardRepository(pool)
	} else {
		log.Warn("no postgres pool; dashboard aggregates are unavailable")
	}
	return dashboard.NewService(queries, invoices, customers, log)
}

func newHealthHandler(db *gorm.DB, client *redis.Client) (*handler.HealthHandler, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	checks := map[string]handler.Pinger{"database": sqlDB}
	if client != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	return handler.NewHealthHandler(checks), nil
}

func newEngine(
	cfg config.Config,
	log *zap.Logger,
	invoices *handler.InvoiceHandler,
	imports *handler.ImportHandler,
	dash *handler.DashboardHandler,
	health *handler.HealthHandler,
	pages cache.Store,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := routes.NewEngine(log, cfg.CORSOrigins)
	deps := routes.Deps{
		Log:       log,
		Invoices:  invoices,
		Import:    imports,
		Dashboard: dash,
		Health:    health,
		PageCache: pages,
	}
	if cfg.MetricsEnabled {
		deps.Gatherer = prometheus.DefaultGatherer
	}
	routes.RegisterRoutes(r, deps)
	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
