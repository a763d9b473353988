package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/ecomitechltd/ZINEB/internal/lock"
	"github.com/ecomitechltd/ZINEB/internal/obs"
)

// TaskRefresh is the asynq task type that warms the catalog cache.
const TaskRefresh = "catalog:refresh"

const refreshLockKey = "catalog:refresh"

// RefreshPayload lists the country codes to refresh. Empty means the whole catalog
// plus PopularCountries.
type RefreshPayload struct {
	Countries []string `json:"countries,omitempty"`
}

// NewRefreshTask builds a catalog refresh task.
func NewRefreshTask(countries []string) (*asynq.Task, error) {
	data, err := json.Marshal(RefreshPayload{Countries: countries})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefresh, data, asynq.MaxRetry(2), asynq.Timeout(5*time.Minute)), nil
}

// TryLocker runs fn only when the named lock is free.
type TryLocker interface {
	TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error
}

// Refresher processes catalog refresh tasks. Only one worker refreshes at a time.
type Refresher struct {
	Service *Service
	Locker  TryLocker
	LockTTL time.Duration
	Logger  zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (r Refresher) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload RefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode refresh payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	if r.Locker == nil {
		return r.run(ctx, payload)
	}
	err := r.Locker.TryWithLock(ctx, refreshLockKey, r.LockTTL, func(ctx context.Context) error {
		return r.run(ctx, payload)
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		obs.IncDomain(obs.CatalogRefreshTotal, "skipped")
		r.Logger.Debug().Msg("catalog refresh already running elsewhere")
		return nil
	}
	return err
}

func (r Refresher) run(ctx context.Context, payload RefreshPayload) error {
	codes := normalizeCodes(payload.Countries)
	if len(codes) == 0 {
		codes = append([]string{""}, PopularCountries...)
	}
	var failed []string
	for _, code := range codes {
		n, err := r.Service.Refresh(ctx, code)
		label := code
		if label == "" {
			label = "all"
		}
		if err != nil {
			failed = append(failed, label)
			r.Logger.Warn().Err(err).Str("country", label).Msg("catalog refresh failed")
			continue
		}
		r.Logger.Debug().Str("country", label).Int("plans", n).Msg("catalog refreshed")
	}
	if len(failed) > 0 {
		obs.IncDomain(obs.CatalogRefreshTotal, "error")
		return fmt.Errorf("catalog refresh failed for %s", strings.Join(failed, ","))
	}
	obs.IncDomain(obs.CatalogRefreshTotal, "ok")
	return nil
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
