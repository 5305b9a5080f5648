// Package memory provides an in-process ports.Locker.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/swallow/pkg/ports"
)

// lockEntry holds the per-key token and the number of holders and waiters.
type lockEntry struct {
	sem  chan struct{}
	refs int
}

// Locker serializes commits within one process. Entries are reference
// counted and removed once no one holds or waits on them.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

var _ ports.Locker = (*Locker)(nil)

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// acquire gets or creates the entry for key and increments its reference
// count. Every call must be paired with release.
func (l *Locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{sem: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}

// Lock blocks until key is free or ctx is done. ttl is ignored: an
// in-process lock dies with its holder.
func (l *Locker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	entry := l.acquire(key)
	select {
	case entry.sem <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-entry.sem
			l.release(key)
		})
		return nil
	}, nil
}

// Len returns the number of keys currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
