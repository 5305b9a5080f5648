package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serializes commits of the same workspace across processes.
type Locker interface {
	// Lock blocks until the lock for key is acquired or ctx is done.
	// The returned UnlockFunc must be called to release it.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
