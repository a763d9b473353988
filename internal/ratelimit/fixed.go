package ratelimit

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// FixedWindow adapts a ulule/limiter store to the Limiter interface.
type FixedWindow struct {
	Store limiter.Store
}

// NewRedisStore creates a ulule/limiter store on rdb with keys under prefix.
func NewRedisStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	return limiterredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: prefix, MaxRetry: 3})
}

// Allow counts one hit against key in the current fixed window.
func (f FixedWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	if f.Store == nil || max <= 0 || window <= 0 {
		return true, max, time.Now().Add(window), nil
	}
	l := limiter.New(f.Store, limiter.Rate{Period: window, Limit: int64(max)})
	res, err := l.Get(ctx, key)
	if err != nil {
		return false, 0, time.Now().Add(window), err
	}
	return !res.Reached, int(res.Remaining), time.Unix(res.Reset, 0), nil
}
