package swallow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/internal/compiler"
	"github.com/aretw0/swallow/internal/testutils"
	"github.com/aretw0/swallow/pkg/adapters/redis"
	"github.com/aretw0/swallow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureEngine(t *testing.T, manifest string, opts ...swallow.Option) *swallow.Engine {
	t.Helper()
	locator := "mem://" + t.Name()
	model := memory.New(memory.WithManifest(locator, []byte(manifest)))
	eng, err := swallow.New(locator, append([]swallow.Option{swallow.WithCodeModel(model)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestNew_RequiresLocator(t *testing.T) {
	_, err := swallow.New("")
	assert.Error(t, err)
}

func TestEngine_Asyncify(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(t, testutils.ScenarioB)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	res, err := eng.Asyncify(ctx, ws, "", "A.X")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.DocumentID{"core/a.src", "app/b.src"}, res.Changed)
	assert.Equal(t, []domain.FunctionID{"A.X()", "B.Y()"}, res.Collected.Rewritten())
	assert.Contains(t, testutils.Text(t, res.After, "app/b.src"), "await A.XAsync()")
	assert.NotContains(t, testutils.Text(t, res.Before, "app/b.src"), "await", "snapshot is immutable")

	changed, err := eng.Commit(ctx, res.After)
	require.NoError(t, err)
	assert.True(t, changed)

	reopened, err := eng.Open(ctx)
	require.NoError(t, err)
	assert.Contains(t, testutils.Text(t, reopened, "core/a.src"), "async Task XAsync() {")

	changed, err = eng.Commit(ctx, reopened)
	require.NoError(t, err)
	assert.False(t, changed, "nothing left to write")
}

func TestEngine_Asyncify_UnknownSeed(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(t, testutils.ScenarioB)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	_, err = eng.Asyncify(ctx, ws, "", "A.Missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_Asyncify_InProject(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(t, testutils.ScenarioB)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	res, err := eng.Asyncify(ctx, ws, "Core", "A.X")
	require.NoError(t, err)
	assert.Len(t, res.Changed, 2)

	_, err = eng.Asyncify(ctx, ws, "App", "A.X")
	assert.ErrorIs(t, err, domain.ErrNotFound, "declared in Core only")

	_, err = eng.Asyncify(ctx, ws, "Nope", "A.X")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_Asyncify_CompileFailure(t *testing.T) {
	const cyclic = `
projects:
  - name: One
    references: [Two]
    documents:
      - path: one.src
        types:
          - name: A
            members:
              - method: {name: X}
  - name: Two
    references: [One]
`
	ctx := context.Background()
	eng := fixtureEngine(t, cyclic, swallow.WithCompileMode(compiler.ModeParallel, 2))
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	_, err = eng.Asyncify(ctx, ws, "", "A.X")
	assert.ErrorIs(t, err, compiler.ErrDependencyCycle)
}

func TestEngine_Compile(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(t, testutils.ScenarioB)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	order, err := eng.Compile(ctx, ws)
	require.NoError(t, err)
	assert.Equal(t, []domain.ProjectID{"Core", "App"}, order)
}

func TestEngine_Run(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(t, testutils.Interfaces)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	res, err := eng.Run(ctx, ws, "rename", "", "Mem.Get", []string{"Fetch"})
	require.NoError(t, err)
	assert.Contains(t, testutils.Text(t, res.After, "svc.src"), "return store.Fetch();")
	assert.Nil(t, res.Collected)

	_, err = eng.Run(ctx, ws, "nope", "", "Mem.Get", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_Edit(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(t, testutils.ScenarioB)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	res, err := eng.Edit(ctx, ws, "core/a.src", "wrap-signature", []string{"A.X", "Async"})
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{"core/a.src"}, res.Changed)
	assert.NotContains(t, testutils.Text(t, res.After, "app/b.src"), "XAsync", "edits are local to the document")

	_, err = eng.Edit(ctx, ws, "missing.src", "wrap-signature", []string{"A.X", "Async"})
	assert.Error(t, err)
}

func TestEngine_Functions(t *testing.T) {
	ctx := context.Background()
	eng := fixtureEngine(t, testutils.Interfaces)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	all, err := eng.Functions(ctx, ws, "store.src", "", nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	bodies, err := eng.Functions(ctx, ws, "store.src", "has-body", nil)
	require.NoError(t, err)
	require.Len(t, bodies, 1)
	assert.Equal(t, "Mem", bodies[0].ContainingType)

	_, err = eng.Functions(ctx, ws, "missing.src", "", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEngine_FileBackedCommitWithLock(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "workspace.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(testutils.ScenarioA), 0o644))

	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := redis.NewLocker(client, "test:", redis.WithRetryInterval(5*time.Millisecond))

	ctx := context.Background()
	eng, err := swallow.New(manifest, swallow.WithLocker(locker, time.Second))
	require.NoError(t, err)
	ws, err := eng.Open(ctx)
	require.NoError(t, err)

	res, err := eng.Asyncify(ctx, ws, "", "Clock.Tick")
	require.NoError(t, err)
	changed, err := eng.Commit(ctx, res.After)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, mr.Exists("test:lock:"+manifest), "lock released after commit")

	src, err := os.ReadFile(filepath.Join(dir, "clock.src"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "async Task TickAsync() {")

	unlock, err := locker.Lock(ctx, manifest, time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock(context.Background()) })

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = eng.Commit(short, res.After)
	assert.ErrorIs(t, err, context.DeadlineExceeded, "commit waits for the holder")
}
