// Package app builds the shared infrastructure used by the API, the worker and the tools.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/alexedwards/argon2id"
	validator "github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/ecomitechltd/ZINEB/internal/catalog"
	"github.com/ecomitechltd/ZINEB/internal/common"
	"github.com/ecomitechltd/ZINEB/internal/config"
	"github.com/ecomitechltd/ZINEB/internal/db"
	"github.com/ecomitechltd/ZINEB/internal/obs"
	"github.com/ecomitechltd/ZINEB/internal/resilience"
)

// HashPassword hashes a password the same way the admin user service does.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}

// NewValidator returns the validator shared by request payloads.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// NewPool connects to PostgreSQL with query tracing. When AUTO_MIGRATE is set the
// embedded migrations run first.
func NewPool(ctx context.Context, cfg *config.Config, appName string) (*pgxpool.Pool, error) {
	if cfg.AutoMigrate {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	if poolConfig.ConnConfig.RuntimeParams == nil {
		poolConfig.ConnConfig.RuntimeParams = map[string]string{}
	}
	poolConfig.ConnConfig.RuntimeParams["application_name"] = appName

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewRedis opens the Redis client and instruments it. Instrumentation failures are
// logged, not returned.
func NewRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if cfg.TracingEnabled {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// AsynqRedisOpt derives the asynq connection from REDIS_URL.
func AsynqRedisOpt(cfg *config.Config) (asynq.RedisConnOpt, error) {
	opt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse asynq redis uri: %w", err)
	}
	return opt, nil
}

// NewMailer returns an SMTP sender, or nil when SMTP_HOST is unset.
func NewMailer(cfg *config.Config) common.EmailSender {
	addr := cfg.SMTPAddr()
	if addr == "" {
		return nil
	}
	return common.SMTPEmail{
		Addr:     addr,
		Host:     cfg.SMTPHost,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}
}

// NewSupplierClient builds the supplier API client behind a circuit breaker and an
// instrumented transport.
func NewSupplierClient(cfg *config.Config, logger zerolog.Logger) catalog.SupplierClient {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	breaker := resilience.NewBreaker(cfg.CircuitSupplierMinRequests, cfg.CircuitSupplierFailureRatio, cfg.CircuitSupplierOpenFor).
		WithTarget("supplier").
		WithLogger(logger)
	return catalog.SupplierClient{
		BaseURL:    cfg.SupplierBaseURL,
		AccessCode: cfg.SupplierAccessCode,
		PriceScale: cfg.SupplierPriceScale,
		HTTP: resilience.HTTPClient{
			Client:      &http.Client{Transport: otelhttp.NewTransport(transport)},
			Breaker:     breaker,
			BaseBackoff: cfg.SupplierRetryBase,
			MaxAttempts: cfg.SupplierMaxAttempts,
			Jitter:      0.2,
			Timeout:     cfg.SupplierTimeout,
		},
	}
}

// InitTracing starts the OTLP exporter when tracing is enabled. The returned shutdown
// is always safe to call.
func InitTracing(ctx context.Context, cfg *config.Config, service string) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.TracingEnabled {
		return noop, nil
	}
	shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
		ServiceName:   service,
		Endpoint:      cfg.OTLPEndpoint,
		Exporter:      "otlp",
		SamplingRatio: cfg.TracingSamplingRatio,
		Environment:   cfg.AppEnv,
	})
	if err != nil {
		return noop, err
	}
	return shutdown, nil
}
