package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/swallow/internal/adapters/file"
	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/internal/testutils"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReadWrite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	locator := filepath.Join(dir, "workspace.yaml")
	store := file.New("")

	_, err := store.Read(ctx, locator)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = store.Write(ctx, locator, []byte("projects: []\n"), map[string]string{"core/a.src": "class A {\n}\n"})
	require.NoError(t, err)

	data, err := store.Read(ctx, locator)
	require.NoError(t, err)
	assert.Equal(t, "projects: []\n", string(data))

	src, err := os.ReadFile(filepath.Join(dir, "core", "a.src"))
	require.NoError(t, err)
	assert.Equal(t, "class A {\n}\n", string(src))

	// Overwrite leaves no temp files behind.
	require.NoError(t, store.Write(ctx, locator, []byte("projects: []\n# v2\n"), nil))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"core", "workspace.yaml"}, names)
}

func TestStore_RejectsEscapingPaths(t *testing.T) {
	dir := t.TempDir()
	store := file.New(filepath.Join(dir, "out"))
	err := store.Write(context.Background(), filepath.Join(dir, "w.yaml"), []byte("x"), map[string]string{"../evil.src": "x"})
	assert.Error(t, err)
	_, statErr := os.Stat(filepath.Join(dir, "w.yaml"))
	assert.True(t, os.IsNotExist(statErr), "manifest is not written when a document fails")
}

func TestStore_EmptyLocator(t *testing.T) {
	_, err := file.New("").Read(context.Background(), "")
	assert.Error(t, err)
	assert.Error(t, file.New("").Write(context.Background(), "", nil, nil))
}

func TestStore_BacksCodeModel(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	locator := filepath.Join(dir, "workspace.yaml")
	require.NoError(t, os.WriteFile(locator, []byte(testutils.ScenarioB), 0644))

	model := memory.New(memory.WithStore(file.New(filepath.Join(dir, "src"))))
	ws, err := model.OpenWorkspace(ctx, locator)
	require.NoError(t, err)

	id, err := model.FindFunction(ctx, ws, "A.X")
	require.NoError(t, err)
	uow := workspace.NewUnitOfWork(ws)
	_, err = asyncify.New(model).Asyncify(ctx, ws, id, uow)
	require.NoError(t, err)
	after, err := uow.Execute(ctx)
	require.NoError(t, err)

	changed, err := model.Commit(ctx, after)
	require.NoError(t, err)
	assert.True(t, changed)

	src, err := os.ReadFile(filepath.Join(dir, "src", "app", "b.src"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "await A.XAsync()")

	reopened, err := memory.New(memory.WithStore(file.New(""))).OpenWorkspace(ctx, locator)
	require.NoError(t, err)
	assert.Equal(t, testutils.Text(t, after, "core/a.src"), testutils.Text(t, reopened, "core/a.src"))
}
