package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/swallow/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// ErrLockLost is returned by an unlock whose lock expired or was taken over.
var ErrLockLost = errors.New("distributed lock no longer held")

// releaseScript deletes the key only when it still holds our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.Locker using Redis.
type Locker struct {
	client backend.UniversalClient
	prefix string
	retry  time.Duration
}

// LockerOption configures a Locker.
type LockerOption func(*Locker)

// WithRetryInterval sets how often a contended lock is retried.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// NewLocker creates a Redis locker. Keys are stored as prefix+"lock:"+key.
func NewLocker(client backend.UniversalClient, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		retry:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var _ ports.Locker = (*Locker)(nil)

// Lock acquires the lock for key with SET NX PX, polling until it is free or
// ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return l.unlocker(lockKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlocker(lockKey, token string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Int()
		if err != nil {
			return fmt.Errorf("redis error releasing lock: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%s: %w", lockKey, ErrLockLost)
		}
		return nil
	}
}
