package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ecomitechltd/ZINEB/internal/app"
	"github.com/ecomitechltd/ZINEB/internal/catalog"
	"github.com/ecomitechltd/ZINEB/internal/config"
	"github.com/ecomitechltd/ZINEB/internal/lock"
	"github.com/ecomitechltd/ZINEB/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "worker").Logger()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := app.InitTracing(ctx, cfg, "esimfly-worker")
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	redisClient, err := app.NewRedis(startCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Supplier:       app.NewSupplierClient(cfg, logger),
		Cache:          catalog.NewCache(redisClient, cfg.CatalogFreshness+cfg.CatalogStaleTolerance),
		Freshness:      cfg.CatalogFreshness,
		StaleTolerance: cfg.CatalogStaleTolerance,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	asynqOpt, err := app.AsynqRedisOpt(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task queue")
	}
	asynqLogger := obs.AsynqLogger{Logger: logger}

	mux := asynq.NewServeMux()
	mux.Handle(catalog.TaskRefresh, catalog.Refresher{
		Service: catalogSvc,
		Locker:  lock.Locker{R: redisClient, Prefix: "lock:"},
		LockTTL: cfg.CatalogRefreshLockTTL,
		Logger:  logger,
	})

	srv := asynq.NewServer(asynqOpt, asynq.Config{
		Concurrency:     cfg.WorkerConcurrency,
		Logger:          asynqLogger,
		ShutdownTimeout: 30 * time.Second,
	})

	scheduler := asynq.NewScheduler(asynqOpt, &asynq.SchedulerOpts{
		Logger:   asynqLogger,
		Location: time.UTC,
	})
	task, err := catalog.NewRefreshTask(nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("build refresh task")
	}
	spec := fmt.Sprintf("@every %s", cfg.CatalogRefreshInterval)
	if _, err := scheduler.Register(spec, task, asynq.Unique(cfg.CatalogRefreshInterval)); err != nil {
		logger.Fatal().Err(err).Str("spec", spec).Msg("register catalog refresh")
	}

	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}
	if err := scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("start scheduler")
	}
	logger.Info().Str("refresh", spec).Int("concurrency", cfg.WorkerConcurrency).Msg("worker started")

	<-ctx.Done()
	logger.Info().Msg("worker shutting down")
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}
