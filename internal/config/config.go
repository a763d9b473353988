// Package config loads runtime settings from the environment (and an optional
// .env file) through koanf.
package config

import (
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config is the flattened environment of the api, worker and tools binaries.
// Field tags are the environment variable names.
type Config struct {
	AppEnv             string   `koanf:"APP_ENV"`
	Port               string   `koanf:"PORT"`
	DatabaseURL        string   `koanf:"DATABASE_URL"`
	RedisURL           string   `koanf:"REDIS_URL"`
	AutoMigrate        bool     `koanf:"AUTO_MIGRATE"`
	JWTSecret          string   `koanf:"JWT_SECRET"`
	JWTIssuer          string   `koanf:"JWT_ISSUER"`
	JWTAudience        string   `koanf:"JWT_AUDIENCE"`
	AccessCookieName   string   `koanf:"ACCESS_COOKIE_NAME"`
	CORSAllowedOrigins []string `koanf:"CORS_ALLOWED_ORIGINS"`

	LogFormat            string  `koanf:"OBS_LOG_FORMAT"`
	LogLevel             string  `koanf:"OBS_LOG_LEVEL"`
	MetricsNamespace     string  `koanf:"OBS_METRICS_NAMESPACE"`
	MetricsEnabled       bool    `koanf:"OBS_ENABLE_PROMETHEUS"`
	MetricsBucketsMS     string  `koanf:"OBS_METRICS_BUCKETS_MS"`
	TracingEnabled       bool    `koanf:"OBS_ENABLE_TRACING"`
	OTLPEndpoint         string  `koanf:"OBS_OTLP_ENDPOINT"`
	TracingSamplingRatio float64 `koanf:"OBS_TRACING_SAMPLING_RATIO"`

	SupplierBaseURL     string        `koanf:"SUPPLIER_BASE_URL"`
	SupplierAccessCode  string        `koanf:"SUPPLIER_ACCESS_CODE"`
	SupplierTimeout     time.Duration `koanf:"SUPPLIER_TIMEOUT"`
	SupplierPriceScale  int64         `koanf:"SUPPLIER_PRICE_SCALE"`
	SupplierMaxAttempts int           `koanf:"SUPPLIER_MAX_ATTEMPTS"`
	SupplierRetryBase   time.Duration `koanf:"SUPPLIER_RETRY_BASE"`

	CircuitSupplierMinRequests  int           `koanf:"CIRCUIT_SUPPLIER_MIN_REQUESTS"`
	CircuitSupplierFailureRatio float64       `koanf:"CIRCUIT_SUPPLIER_FAILURE_RATIO"`
	CircuitSupplierOpenFor      time.Duration `koanf:"CIRCUIT_SUPPLIER_OPEN_FOR"`

	CatalogFreshness       time.Duration `koanf:"CATALOG_FRESHNESS"`
	CatalogStaleTolerance  time.Duration `koanf:"CATALOG_STALE_TOLERANCE"`
	CatalogRefreshInterval time.Duration `koanf:"CATALOG_REFRESH_INTERVAL"`
	CatalogRefreshLockTTL  time.Duration `koanf:"CATALOG_REFRESH_LOCK_TTL"`

	StatsCacheTTL        time.Duration `koanf:"STATS_CACHE_TTL"`
	AdminDefaultPageSize int           `koanf:"ADMIN_DEFAULT_PAGE_SIZE"`
	AdminMaxPageSize     int           `koanf:"ADMIN_MAX_PAGE_SIZE"`

	RateLimitStrategy string        `koanf:"RATE_LIMIT_STRATEGY"`
	RateLimitWindow   time.Duration `koanf:"RATE_LIMIT_WINDOW"`
	RateLimitMax      int           `koanf:"RATE_LIMIT_MAX"`
	IdempotencyTTL    time.Duration `koanf:"IDEMPOTENCY_TTL"`
	BodyLimitBytes    int64         `koanf:"BODY_LIMIT_BYTES"`
	SecurityHSTS      bool          `koanf:"SECURITY_HSTS"`

	SMTPHost     string `koanf:"SMTP_HOST"`
	SMTPPort     int    `koanf:"SMTP_PORT"`
	SMTPUser     string `koanf:"SMTP_USER"`
	SMTPPassword string `koanf:"SMTP_PASSWORD"`
	MailFrom     string `koanf:"MAIL_FROM"`

	WorkerConcurrency int `koanf:"WORKER_CONCURRENCY"`
}

var defaults = map[string]any{
	"APP_ENV":            "development",
	"PORT":               "8080",
	"JWT_ISSUER":         "esimfly-auth",
	"JWT_AUDIENCE":       "esimfly-web",
	"ACCESS_COOKIE_NAME": "esimfly_session",

	"OBS_LOG_FORMAT":             "json",
	"OBS_LOG_LEVEL":              "info",
	"OBS_METRICS_NAMESPACE":      "esimfly",
	"OBS_ENABLE_PROMETHEUS":      true,
	"OBS_TRACING_SAMPLING_RATIO": 1.0,

	"SUPPLIER_BASE_URL":     "https://api.esimaccess.com",
	"SUPPLIER_TIMEOUT":      "10s",
	"SUPPLIER_PRICE_SCALE":  100,
	"SUPPLIER_MAX_ATTEMPTS": 2,
	"SUPPLIER_RETRY_BASE":   "200ms",

	"CIRCUIT_SUPPLIER_MIN_REQUESTS":  5,
	"CIRCUIT_SUPPLIER_FAILURE_RATIO": 0.5,
	"CIRCUIT_SUPPLIER_OPEN_FOR":      "30s",

	"CATALOG_FRESHNESS":        "5m",
	"CATALOG_STALE_TOLERANCE":  "30m",
	"CATALOG_REFRESH_INTERVAL": "4m",
	"CATALOG_REFRESH_LOCK_TTL": "2m",

	"STATS_CACHE_TTL":         "1m",
	"ADMIN_DEFAULT_PAGE_SIZE": 20,
	"ADMIN_MAX_PAGE_SIZE":     100,

	"RATE_LIMIT_STRATEGY": "sliding",
	"RATE_LIMIT_WINDOW":   "1m",
	"RATE_LIMIT_MAX":      120,
	"IDEMPOTENCY_TTL":     "24h",
	"BODY_LIMIT_BYTES":    1 << 20,

	"SMTP_PORT": 587,
	"MAIL_FROM": "eSIMFly <support@esimfly.me>",

	"WORKER_CONCURRENCY": 2,
}

// mapProvider feeds a flat map into koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("config: map provider does not support ReadBytes")
}

func (m mapProvider) Read() (map[string]any, error) { return maps.Clone(m), nil }

// Load reads .env (when present) and the process environment on top of the defaults.
// Variables set to an empty string keep their default.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(env.ProviderWithValue("", ".", func(key, value string) (string, any) {
		if strings.TrimSpace(value) == "" {
			return "", nil
		}
		return key, value
	}))
}

// FromMap builds a Config from vars alone, ignoring the process environment.
func FromMap(vars map[string]string) (*Config, error) {
	m := make(mapProvider, len(vars))
	for k, v := range vars {
		if strings.TrimSpace(v) != "" {
			m[k] = v
		}
	}
	return load(m)
}

func load(source koanf.Provider) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(mapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("config: defaults: %w", err)
	}
	if err := k.Load(source, nil); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			WeaklyTypedInput: true,
			Result:           &cfg,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	cfg.normalize()
	return &cfg, cfg.validate()
}

func (c *Config) normalize() {
	origins := c.CORSAllowedOrigins[:0]
	for _, o := range c.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.CORSAllowedOrigins = origins
	if len(origins) == 0 {
		c.CORSAllowedOrigins = nil
	}
	c.RateLimitStrategy = strings.ToLower(strings.TrimSpace(c.RateLimitStrategy))
	if c.SupplierPriceScale <= 0 {
		c.SupplierPriceScale = 100
	}
}

func (c *Config) validate() error {
	var errs []error
	for _, req := range [...]struct{ name, value string }{
		{"DATABASE_URL", c.DatabaseURL},
		{"REDIS_URL", c.RedisURL},
		{"JWT_SECRET", c.JWTSecret},
	} {
		if strings.TrimSpace(req.value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", req.name))
		}
	}
	if c.CatalogFreshness <= 0 {
		errs = append(errs, errors.New("CATALOG_FRESHNESS must be positive"))
	}
	if c.AdminMaxPageSize < c.AdminDefaultPageSize {
		errs = append(errs, errors.New("ADMIN_MAX_PAGE_SIZE must not be below ADMIN_DEFAULT_PAGE_SIZE"))
	}
	return errors.Join(errs...)
}

// HTTPAddr returns the listen address built from PORT, which may carry a leading colon.
func (c *Config) HTTPAddr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

// SMTPAddr is host:port of the mail relay, empty when mail is not configured.
func (c *Config) SMTPAddr() string {
	if c.SMTPHost == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.SMTPHost, c.SMTPPort)
}
