package lock

import "context"

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func()

// Locker serializes work per key across goroutines or processes.
// Lock blocks until the key is free or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (Unlock, error)
}
