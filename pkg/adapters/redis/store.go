package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/swallow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Store keeps workspace manifests and their rendered documents in Redis.
// A manifest lives at prefix+"workspace:"+locator and its documents in the
// hash prefix+"sources:"+locator, keyed by document path.
type Store struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL sets the expiration of stored workspaces.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// NewStore creates a Redis store. Nothing expires by default.
func NewStore(client backend.UniversalClient, prefix string, opts ...StoreOption) *Store {
	s := &Store{client: client, prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) manifestKey(locator string) string {
	return s.prefix + "workspace:" + locator
}

func (s *Store) sourcesKey(locator string) string {
	return s.prefix + "sources:" + locator
}

// Read returns the manifest stored under locator.
func (s *Store) Read(ctx context.Context, locator string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.manifestKey(locator)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("manifest %s: %w", locator, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return data, nil
}

// Write stores the manifest and the rendered sources in one transaction.
func (s *Store) Write(ctx context.Context, locator string, manifest []byte, sources map[string]string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		if len(sources) > 0 {
			values := make(map[string]interface{}, len(sources))
			for path, text := range sources {
				values[path] = text
			}
			pipe.HSet(ctx, s.sourcesKey(locator), values)
			if s.ttl > 0 {
				pipe.Expire(ctx, s.sourcesKey(locator), s.ttl)
			}
		}
		pipe.Set(ctx, s.manifestKey(locator), manifest, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Sources returns the rendered documents last written for locator.
func (s *Store) Sources(ctx context.Context, locator string) (map[string]string, error) {
	sources, err := s.client.HGetAll(ctx, s.sourcesKey(locator)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read sources: %w", err)
	}
	return sources, nil
}

// Delete removes the workspace stored under locator.
func (s *Store) Delete(ctx context.Context, locator string) error {
	return s.client.Del(ctx, s.manifestKey(locator), s.sourcesKey(locator)).Err()
}
