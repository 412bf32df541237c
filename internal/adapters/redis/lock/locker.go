// Package lock is a Redis-backed lock.Locker for running several processes against one
// event store.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/denhac/membership-sync/internal/platform/logger"
	"github.com/denhac/membership-sync/internal/ports/out/lock"
)

const (
	keyPrefix    = "membership-sync:lock:"
	minRetryWait = 10 * time.Millisecond
	maxRetryWait = 250 * time.Millisecond
)

// release deletes the key only while it still holds our token.
var release = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker holds each key with SET NX PX. ttl bounds how long a crashed holder blocks others,
// so it must exceed the longest critical section.
type Locker struct {
	rdb *goredis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewLocker(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *Locker {
	return &Locker{rdb: rdb, ttl: ttl, log: log}
}

func (l *Locker) Lock(ctx context.Context, key string) (lock.Unlock, error) {
	k := keyPrefix + key
	token := uuid.NewString()
	wait := minRetryWait
	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		if wait *= 2; wait > maxRetryWait {
			wait = maxRetryWait
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's ctx may already be done; release must still run.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := release.Run(ctx, l.rdb, []string{k}, token).Err(); err != nil {
				l.log.Warn("lock release failed", "key", key, "error", err.Error())
			}
		})
	}, nil
}
