package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/analytics"
	"github.com/ecomitechltd/ZINEB/internal/app"
	"github.com/ecomitechltd/ZINEB/internal/audit"
	"github.com/ecomitechltd/ZINEB/internal/auth"
	"github.com/ecomitechltd/ZINEB/internal/catalog"
	"github.com/ecomitechltd/ZINEB/internal/common"
	"github.com/ecomitechltd/ZINEB/internal/config"
	dbgen "github.com/ecomitechltd/ZINEB/internal/db/gen"
	"github.com/ecomitechltd/ZINEB/internal/esim"
	"github.com/ecomitechltd/ZINEB/internal/health"
	"github.com/ecomitechltd/ZINEB/internal/obs"
	"github.com/ecomitechltd/ZINEB/internal/order"
	"github.com/ecomitechltd/ZINEB/internal/pricing"
	"github.com/ecomitechltd/ZINEB/internal/ratelimit"
	"github.com/ecomitechltd/ZINEB/internal/security"
	"github.com/ecomitechltd/ZINEB/internal/settings"
	"github.com/ecomitechltd/ZINEB/internal/user"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := app.InitTracing(ctx, cfg, "esimfly-api")
	if err != nil {
		logger.Error().Err(err).Msg("initialise tracing")
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := app.NewPool(startCtx, cfg, "esimfly-api")
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise database")
	}
	defer pool.Close()

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

	asynqOpt, err := app.AsynqRedisOpt(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise task queue")
	}
	taskClient := asynq.NewClient(asynqOpt)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	queries := dbgen.New(pool)
	settingsSvc := settings.NewService(queries)
	recorder := audit.Service{Store: queries, Enabled: true, Logger: logger}

	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Supplier:       app.NewSupplierClient(cfg, logger),
		Cache:          catalog.NewCache(redisClient, cfg.CatalogFreshness+cfg.CatalogStaleTolerance),
		Rates:          settingsSvc,
		Freshness:      cfg.CatalogFreshness,
		StaleTolerance: cfg.CatalogStaleTolerance,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}
	catalogHandler := catalog.NewHandler(catalog.HandlerConfig{
		Service: catalogSvc,
		Queue:   taskClient,
		Audit:   recorder,
		Logger:  logger,
	})

	tokens, err := auth.NewTokens(auth.TokensConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise tokens")
	}
	authMiddleware := auth.Middleware{
		Tokens:       tokens,
		Users:        queries,
		AccessCookie: cfg.AccessCookieName,
		Logger:       logger,
	}

	limiter, err := ratelimit.New(cfg.RateLimitStrategy, redisClient)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limiter")
	}
	storefrontLimit := ratelimit.Handler{
		Limiter: limiter,
		Config:  ratelimit.Config{Key: ratelimit.ByIP("storefront"), Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}
	idem := common.Idem{R: redisClient, TTL: cfg.IdempotencyTTL}

	userHandler := &user.Handler{
		Service:        user.NewService(queries, app.NewValidator()),
		Audit:          recorder,
		Logger:         logger,
		DefaultPerPage: cfg.AdminDefaultPageSize,
		MaxPerPage:     cfg.AdminMaxPageSize,
	}
	orderHandler := &order.AdminHandler{
		Service:        order.NewService(queries, settingsSvc),
		Mailer:         app.NewMailer(cfg),
		Audit:          recorder,
		Logger:         logger,
		DefaultPerPage: cfg.AdminDefaultPageSize,
		MaxPerPage:     cfg.AdminMaxPageSize,
	}
	esimHandler := esim.Handler{
		Service:        esim.NewService(queries),
		Logger:         logger,
		DefaultPerPage: cfg.AdminDefaultPageSize,
		MaxPerPage:     cfg.AdminMaxPageSize,
	}
	statsHandler := analytics.Handler{
		Svc:    &analytics.Service{Q: queries, R: redisClient, TTL: cfg.StatsCacheTTL},
		Logger: logger,
	}
	settingsHandler := settings.Handler{Service: settingsSvc, Audit: recorder, Logger: logger}
	auditHandler := audit.Handler{
		Store:          queries,
		Logger:         logger,
		DefaultPerPage: cfg.AdminDefaultPageSize,
		MaxPerPage:     cfg.AdminMaxPageSize,
	}
	pricingHandler := pricing.Handler{Markup: pricing.Markup{Source: settingsSvc}, Logger: logger}
	healthHandler := health.Handler{
		Checker:      health.Probe{DB: pool, Redis: redisClient},
		DBTimeout:    500 * time.Millisecond,
		RedisTimeout: 300 * time.Millisecond,
	}

	r := newRouter(cfg, logger)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Group(func(pub chi.Router) {
			pub.Use(security.Headers{HSTS: cfg.SecurityHSTS}.Middleware)
			pub.Use(storefrontLimit.Middleware)
			pub.Get("/packages", catalogHandler.Packages)
			pub.Get("/destinations/{country}", catalogHandler.Destination)
		})

		v.Route("/admin", func(admin chi.Router) {
			admin.Use(security.Headers{HSTS: cfg.SecurityHSTS, NoStore: true}.Middleware)
			admin.Use(authMiddleware.RequireAdmin)
			admin.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)

			admin.Get("/stats", statsHandler.Stats)

			admin.Get("/users", userHandler.List)
			admin.With(idem.Middleware).Post("/users", userHandler.Create)
			admin.Get("/users/{id}", userHandler.Get)
			admin.Patch("/users/{id}", userHandler.Update)
			admin.Delete("/users/{id}", userHandler.Delete)

			admin.Get("/orders", orderHandler.List)
			admin.Get("/orders/{id}/pdf", orderHandler.InvoicePDF)
			admin.Post("/orders/{id}/invoice/email", orderHandler.EmailInvoice)

			admin.Get("/esims", esimHandler.List)

			admin.Get("/settings", settingsHandler.Get)
			admin.Patch("/settings", settingsHandler.Update)

			admin.Get("/audit-logs", auditHandler.List)
			admin.Get("/pricing/preview", pricingHandler.Preview)
			admin.Post("/catalog/refresh", catalogHandler.Refresh)
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		health.SetReady(false)
		logger.Info().Msg("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited unexpectedly")
	}
	logger.Info().Msg("server stopped")
}

func newRouter(cfg *config.Config, logger zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	if cfg.MetricsEnabled {
		r.Use(obs.HTTPObs{Metrics: obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBucketsMS), nil)}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Disposition", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}
