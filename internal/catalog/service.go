package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ecomitechltd/ZINEB/internal/obs"
	"github.com/ecomitechltd/ZINEB/internal/pricing"
)

// Service serves the supplier catalog through a Redis cache.
//
// Entries younger than the freshness window are returned as is. Older entries
// trigger an upstream fetch; if that fetch fails and the entry is still inside the
// stale tolerance it is served instead of the error.
type Service struct {
	supplier  Supplier
	cache     *Cache
	rates     pricing.RatesSource
	freshness time.Duration
	tolerance time.Duration
	timeout   time.Duration
	logger    zerolog.Logger
	now       func() time.Time
	group     singleflight.Group
}

// ServiceConfig configures Service. FetchTimeout bounds one shared supplier fetch
// and defaults to one minute.
type ServiceConfig struct {
	Supplier       Supplier
	Cache          *Cache
	Rates          pricing.RatesSource
	Freshness      time.Duration
	StaleTolerance time.Duration
	FetchTimeout   time.Duration
	Logger         zerolog.Logger
	Now            func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Supplier == nil {
		return nil, errors.New("catalog: supplier is required")
	}
	freshness := cfg.Freshness
	if freshness <= 0 {
		freshness = 5 * time.Minute
	}
	tolerance := cfg.StaleTolerance
	if tolerance < 0 {
		tolerance = 0
	}
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		supplier:  cfg.Supplier,
		cache:     cfg.Cache,
		rates:     cfg.Rates,
		freshness: freshness,
		tolerance: tolerance,
		timeout:   timeout,
		logger:    cfg.Logger,
		now:       now,
	}, nil
}

// PackagesByCountry returns the supplier plans for a country code.
func (s *Service) PackagesByCountry(ctx context.Context, code string) ([]Plan, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, errors.New("catalog: country code is required")
	}
	return s.lookup(ctx, code)
}

// AllPackages returns the whole supplier catalog.
func (s *Service) AllPackages(ctx context.Context) ([]Plan, error) {
	return s.lookup(ctx, "")
}

// Refresh fetches code (or the whole catalog when empty) from the supplier and
// overwrites the cache entry regardless of its age.
func (s *Service) Refresh(ctx context.Context, code string) (int, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	v, err, _ := s.group.Do(cacheKey(code), func() (any, error) {
		return s.sharedFetch(ctx, code)
	})
	if err != nil {
		return 0, err
	}
	return len(v.([]Plan)), nil
}

func (s *Service) lookup(ctx context.Context, code string) ([]Plan, error) {
	key := cacheKey(code)
	cached, found, err := s.cache.load(ctx, key)
	if err != nil {
		obs.IncDomain(obs.CatalogCacheTotal, "error")
		s.logger.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		found = false
	}
	now := s.now()
	if found && cached.age(now) < s.freshness {
		obs.IncDomain(obs.CatalogCacheTotal, "hit")
		return cached.Plans, nil
	}
	obs.IncDomain(obs.CatalogCacheTotal, "miss")

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.sharedFetch(ctx, code)
	})
	if err == nil {
		return v.([]Plan), nil
	}
	if found && cached.age(now) < s.freshness+s.tolerance {
		obs.IncDomain(obs.CatalogCacheTotal, "stale")
		s.logger.Warn().Err(err).
			Str("key", key).
			Dur("age", cached.age(now)).
			Msg("serving stale catalog after supplier failure")
		return cached.Plans, nil
	}
	return nil, err
}

// sharedFetch runs one fetch on behalf of every caller waiting on the same key, so it
// keeps ctx values but not its cancellation.
func (s *Service) sharedFetch(ctx context.Context, code string) ([]Plan, error) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()
	return s.fetchAndStore(fctx, code)
}

func (s *Service) fetchAndStore(ctx context.Context, code string) ([]Plan, error) {
	plans, err := s.supplier.FetchPackages(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrUpstream) {
			err = fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return nil, err
	}
	if plans == nil {
		plans = []Plan{}
	}
	if err := s.cache.store(ctx, cacheKey(code), entry{FetchedAt: s.now(), Plans: plans}); err != nil {
		s.logger.Warn().Err(err).Str("key", cacheKey(code)).Msg("catalog cache write failed")
	}
	return plans, nil
}

// FilterByCountry keeps plans whose comma-joined location list contains code.
func FilterByCountry(plans []Plan, code string) []Plan {
	code = strings.ToUpper(strings.TrimSpace(code))
	out := make([]Plan, 0, len(plans))
	if code == "" {
		return out
	}
	for _, plan := range plans {
		for _, loc := range strings.Split(plan.Location, ",") {
			if strings.ToUpper(strings.TrimSpace(loc)) == code {
				out = append(out, plan)
				break
			}
		}
	}
	return out
}
