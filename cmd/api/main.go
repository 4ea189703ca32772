package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/sijangmap/marketmap-backend/api/routes"
	"github.com/sijangmap/marketmap-backend/internal/admins"
	"github.com/sijangmap/marketmap-backend/internal/images"
	"github.com/sijangmap/marketmap-backend/internal/maps"
	"github.com/sijangmap/marketmap-backend/internal/searchlogs"
	"github.com/sijangmap/marketmap-backend/internal/stores"
	"github.com/sijangmap/marketmap-backend/pkg/auth/session"
	"github.com/sijangmap/marketmap-backend/pkg/config"
	"github.com/sijangmap/marketmap-backend/pkg/db"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
	"github.com/sijangmap/marketmap-backend/pkg/metrics"
	"github.com/sijangmap/marketmap-backend/pkg/migrate"
	"github.com/sijangmap/marketmap-backend/pkg/redis"
	"github.com/sijangmap/marketmap-backend/pkg/storage/local"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.AutoMigrate {
		sqlDB, err := dbClient.DB().DB()
		if err != nil {
			logg.Error(context.Background(), "failed to unwrap sql database", err)
			os.Exit(1)
		}
		if err := migrate.AutoRun(context.Background(), sqlDB, logg); err != nil {
			logg.Error(context.Background(), "failed to auto-migrate schema", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	sessions, err := session.NewManager(redisClient, cfg.JWT.RefreshTokenTTL(), time.Duration(cfg.JWT.ExpirationMinutes)*time.Minute)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	fileStore, err := local.New(cfg.Upload)
	if err != nil {
		logg.Error(context.Background(), "failed to prepare upload storage", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	searchMetrics := metrics.NewSearchMetrics(registry)

	storeRepo := stores.NewRepository(dbClient.DB())
	searchLogRepo := searchlogs.NewRepository(dbClient.DB())
	imageRepo := images.NewRepository(dbClient.DB())
	mapRepo := maps.NewRepository(dbClient.DB())
	adminRepo := admins.NewRepository(dbClient.DB())

	searchLogService, err := searchlogs.NewService(searchLogRepo, redisClient, logg, cfg.Search)
	if err != nil {
		logg.Error(context.Background(), "failed to create search log service", err)
		os.Exit(1)
	}
	storeService, err := stores.NewService(storeRepo, searchLogService, fileStore, logg, cfg.Search, searchMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}
	imageService, err := images.NewService(imageRepo, storeRepo, fileStore, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create image service", err)
		os.Exit(1)
	}
	mapService, err := maps.NewService(mapRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create map service", err)
		os.Exit(1)
	}
	adminService, err := admins.NewService(adminRepo, logg, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			registry,
			dbClient,
			redisClient,
			sessions,
			storeService,
			imageService,
			mapService,
			searchLogService,
			adminService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining requests")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "error during server shutdown", err)
		}
	}

	var closeErr error
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(ctx, "error closing resources", closeErr)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}
