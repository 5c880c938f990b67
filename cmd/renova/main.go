package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/renovapanel/renova/pkg/api"
	"github.com/renovapanel/renova/pkg/auth"
	"github.com/renovapanel/renova/pkg/billing"
	"github.com/renovapanel/renova/pkg/catalog"
	"github.com/renovapanel/renova/pkg/clients"
	"github.com/renovapanel/renova/pkg/config"
	"github.com/renovapanel/renova/pkg/middleware"
	"github.com/renovapanel/renova/pkg/observability"
	"github.com/renovapanel/renova/pkg/reports"
	"github.com/renovapanel/renova/pkg/storage/postgres"
	"github.com/renovapanel/renova/pkg/sweep"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "renova: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := observability.NewLogger(observability.ParseLogLevel(cfg.Observability.LogLevel), os.Stdout)
	logger.Info("starting renova panel")

	// Storage
	connMgr, err := postgres.NewConnectionManager(postgres.ConnectionConfig{
		PrimaryURL:  cfg.Storage.PostgresURL,
		ReplicaURLs: cfg.Storage.ReplicaURLs(),
		MaxConns:    cfg.Storage.MaxConns,
		MinConns:    cfg.Storage.MinConns,
		Timeout:     cfg.Storage.Timeout,
		MaxLifetime: cfg.Storage.MaxLifetime,
		MaxIdleTime: cfg.Storage.MaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db := connMgr.Primary()

	migrateCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := postgres.RunMigrations(migrateCtx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := auth.EnsureAdmin(migrateCtx, db, logger, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	// Optional Redis stats cache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
		})
		pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.WithError(err).Warn("redis unreachable, stats cache disabled")
			redisClient.Close()
			redisClient = nil
		}
		cancelPing()
	}

	// Observability
	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)
	healthChecker := observability.NewHealthChecker(connMgr, redisClient)

	// Connection pool gauges refresh on a fixed interval
	poolTicker := time.NewTicker(15 * time.Second)
	go func() {
		for range poolTicker.C {
			stats := connMgr.Stats()
			metrics.ObserveDBPool(append([]sql.DBStats{stats.Primary}, stats.Replicas...)...)
		}
	}()

	// Services
	authService := auth.NewPostgresService(db, logger, cfg.Auth.TokenTTL)
	clientService := clients.NewPostgresService(db)
	catalogService := catalog.NewPostgresService(db)
	billingService := billing.NewPostgresService(db, logger, metrics)

	var reportService reports.Service = reports.NewPostgresService(connMgr)
	if redisClient != nil {
		reportService = reports.NewCachedService(reportService, redisClient, cfg.Redis.StatsTTL, logger, metrics)
	}

	server := api.NewServer(api.Config{
		ClientService:  clientService,
		BillingService: billingService,
		CatalogService: catalogService,
		ReportService:  reportService,
		AuthService:    authService,
		Logger:         logger,
		Metrics:        metrics,
		LoginLimiter:   middleware.NewRateLimiter(middleware.LoginRateLimitConfig()),
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Separate listener for probes and metrics
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", healthChecker.Liveness)
	healthMux.HandleFunc("/readyz", healthChecker.Readiness)
	if cfg.Observability.MetricsEnabled {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("health server failed")
		}
	}()

	shutdown := observability.NewShutdownManager(logger, httpServer, cfg.Server.ShutdownTimeout)

	if cfg.Sweep.Enabled {
		sweeper := sweep.NewSweeper(db, authService, logger, metrics, cfg.Sweep.Schedule)
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start sweep: %w", err)
		}
		shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
			sweeper.Stop()
			return nil
		})
	}

	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		poolTicker.Stop()
		return nil
	})
	shutdown.RegisterShutdownFunc(healthServer.Shutdown)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		if redisClient != nil {
			return redisClient.Close()
		}
		return nil
	})
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return connMgr.Close()
	})

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("api server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("api server failed")
		}
	}()

	return shutdown.WaitForShutdown()
}
