package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/internal/testutils"
	"github.com/aretw0/swallow/pkg/adapters/redis"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ memory.Store = (*redis.Store)(nil)

func TestRedisStore_ReadWrite(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewStore(client, "test:")
	ctx := context.Background()

	_, err := store.Read(ctx, "ws")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Write(ctx, "ws", []byte("projects: []"), nil))
	data, err := store.Read(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, "projects: []", string(data))
	assert.False(t, mr.Exists("test:sources:ws"), "no sources written")

	require.NoError(t, store.Write(ctx, "ws", []byte("v2"), map[string]string{"a.src": "class A {\n}\n"}))
	sources, err := store.Sources(ctx, "ws")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a.src": "class A {\n}\n"}, sources)

	require.NoError(t, store.Delete(ctx, "ws"))
	_, err = store.Read(ctx, "ws")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_TTL(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewStore(client, "test:", redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "ws", []byte("m"), map[string]string{"a.src": "x"}))
	assert.Equal(t, time.Minute, mr.TTL("test:workspace:ws"))
	assert.Equal(t, time.Minute, mr.TTL("test:sources:ws"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Read(ctx, "ws")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRedisStore_BacksEngine(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewStore(client, "test:")
	ctx := context.Background()
	require.NoError(t, store.Write(ctx, "ws", []byte(testutils.ScenarioA), nil))

	eng, err := swallow.New("ws",
		swallow.WithCodeModel(memory.New(memory.WithStore(store))),
		swallow.WithLocker(redis.NewLocker(client, "test:"), time.Second),
	)
	require.NoError(t, err)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)
	res, err := eng.Asyncify(ctx, ws, "", "Clock.Tick")
	require.NoError(t, err)

	changed, err := eng.Commit(ctx, res.After)
	require.NoError(t, err)
	assert.True(t, changed)
	sources, err := store.Sources(ctx, "ws")
	require.NoError(t, err)
	assert.Contains(t, sources["clock.src"], "async Task TickAsync() {")
	assert.False(t, mr.Exists("test:lock:ws"), "lock released after commit")
}
