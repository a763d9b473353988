package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "catalog:packages:"

// Cache keeps one Redis hash per catalog lookup with the plan list and the
// time it was fetched. The hash lives for ttl, which has to cover the
// freshness window plus the stale tolerance.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

type entry struct {
	FetchedAt time.Time
	Plans     []Plan
}

func (e entry) age(now time.Time) time.Duration { return now.Sub(e.FetchedAt) }

// cacheKey is per country code, with "all" for the unfiltered catalog.
func cacheKey(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "all"
	}
	return keyPrefix + code
}

// load reports found=false for a missing or partially written entry.
func (c *Cache) load(ctx context.Context, key string) (entry, bool, error) {
	if c == nil || c.client == nil {
		return entry{}, false, nil
	}
	vals, err := c.client.HMGet(ctx, key, "fetched_at", "plans").Result()
	if err != nil {
		return entry{}, false, err
	}
	at, okAt := vals[0].(string)
	raw, okPlans := vals[1].(string)
	if !okAt || !okPlans {
		return entry{}, false, nil
	}

	var e entry
	if e.FetchedAt, err = time.Parse(time.RFC3339Nano, at); err != nil {
		return entry{}, false, fmt.Errorf("catalog cache %s: fetched_at: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), &e.Plans); err != nil {
		return entry{}, false, fmt.Errorf("catalog cache %s: plans: %w", key, err)
	}
	return e, true, nil
}

func (c *Cache) store(ctx context.Context, key string, e entry) error {
	if c == nil || c.client == nil {
		return nil
	}
	plans, err := json.Marshal(e.Plans)
	if err != nil {
		return err
	}
	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "fetched_at", e.FetchedAt.UTC().Format(time.RFC3339Nano), "plans", plans)
		p.Expire(ctx, key, c.ttl)
		return nil
	})
	return err
}
