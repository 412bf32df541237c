package lock

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/denhac/membership-sync/internal/adapters/redis"
	"github.com/denhac/membership-sync/internal/platform/logger"
)

func newTestLocker(t *testing.T, ttl time.Duration) *Locker {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb, err := redis.NewClient(context.Background(), addr)
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLocker(rdb, ttl, logger.NewNop())
}

func TestLocker_SerializesHolders(t *testing.T) {
	t.Parallel()

	l := newTestLocker(t, 5*time.Second)
	key := "customer-" + uuid.NewString()

	var (
		mu      sync.Mutex
		holders int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), key)
			if err != nil {
				t.Errorf("Lock err=%v", err)
				return
			}
			mu.Lock()
			holders++
			if holders > maxSeen {
				maxSeen = holders
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			holders--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Fatalf("max concurrent holders=%d, want 1", maxSeen)
	}
}

func TestLocker_ContextCancelWhileWaiting(t *testing.T) {
	t.Parallel()

	l := newTestLocker(t, 5*time.Second)
	key := "customer-" + uuid.NewString()

	unlock, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("Lock err=%v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, key); err == nil {
		t.Fatalf("second Lock err=nil, want context error")
	}
}

func TestLocker_ExpiredHolderDoesNotReleaseNewHolder(t *testing.T) {
	t.Parallel()

	l := newTestLocker(t, 100*time.Millisecond)
	key := "customer-" + uuid.NewString()

	stale, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("Lock err=%v", err)
	}
	time.Sleep(150 * time.Millisecond)

	fresh, err := l.Lock(context.Background(), key)
	if err != nil {
		t.Fatalf("Lock after expiry err=%v", err)
	}
	defer fresh()
	stale()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, key); err == nil {
		t.Fatalf("Lock err=nil, want the fresh holder to still hold the key")
	}
}
