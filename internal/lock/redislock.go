// Package lock implements a single-holder Redis lock used to keep background
// jobs from running on more than one worker at a time.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned by TryWithLock when another holder owns the key.
var ErrNotAcquired = errors.New("lock: held by another owner")

var (
	release = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0`)

	extend = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`)
)

// Locker takes locks under Prefix. While fn runs the lock TTL is renewed every
// ttl/3, so a long job keeps the lock and a crashed holder loses it after ttl.
type Locker struct {
	R      *redis.Client
	Prefix string
}

// TryWithLock runs fn only if key is free right now, otherwise it returns
// ErrNotAcquired. fn's context is cancelled if the lock is lost mid-run.
func (l Locker) TryWithLock(ctx context.Context, key string, ttl time.Duration, fn func(context.Context) error) error {
	if l.R == nil {
		return errors.New("lock: redis client not configured")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	name := l.Prefix + key
	token := uuid.NewString()

	ok, err := l.R.SetNX(ctx, name, token, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAcquired
	}
	defer release.Run(context.WithoutCancel(ctx), l.R, []string{name}, token)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan struct{})
	defer close(done)
	go l.keepAlive(runCtx, cancel, done, name, token, ttl)

	return fn(runCtx)
}

func (l Locker) keepAlive(ctx context.Context, lost context.CancelFunc, done <-chan struct{}, name, token string, ttl time.Duration) {
	tick := time.NewTicker(ttl / 3)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-tick.C:
			n, err := extend.Run(ctx, l.R, []string{name}, token, ttl.Milliseconds()).Int()
			if err == nil && n == 0 {
				lost()
				return
			}
		}
	}
}
