package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/swallow/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func workspaceDir(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workspace.yaml"), []byte(manifest), 0o644))
	return dir
}

func TestAsyncify_DryRunAndGraph(t *testing.T) {
	workspaceDir(t, testutils.ScenarioB)

	out, err := execute(t, "asyncify", "Core", "A.X", "--dry-run", "--graph")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "+++ b/app/b.src")
	assert.Contains(t, out, "+        /* first */ await A.XAsync() /* trailing */;")

	_, err = os.Stat("core/a.src")
	assert.True(t, os.IsNotExist(err))
}

func TestAsyncify_WritesWithSuffix(t *testing.T) {
	dir := workspaceDir(t, testutils.ScenarioA)

	out, err := execute(t, "asyncify", "Clock.Tick", "--suffix", "Later", "--parallel")
	require.NoError(t, err)
	assert.Contains(t, out, "1 document(s) written.")

	src, err := os.ReadFile(filepath.Join(dir, "clock.src"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "async Task TickLater() {")
}

func TestAsyncify_UnknownFunction(t *testing.T) {
	workspaceDir(t, testutils.ScenarioA)
	_, err := execute(t, "asyncify", "Clock.Nope")
	assert.Error(t, err)
}

func TestRunAndEdit(t *testing.T) {
	workspaceDir(t, testutils.Interfaces)

	out, err := execute(t, "run", "rename", "Mem.Get", "Fetch", "--dry-run", "--project", "Core")
	require.NoError(t, err)
	assert.Contains(t, out, "+        return store.Fetch();")

	out, err = execute(t, "edit", "store.src", "wrap-signature", "Mem.Get", "Async", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "+    public async Task<int> GetAsync() {")
}

func TestFunctionsAndCompile(t *testing.T) {
	workspaceDir(t, testutils.ScenarioB)

	out, err := execute(t, "functions", "core/a.src", "sync-only")
	require.NoError(t, err)
	assert.Contains(t, out, "A.X()")

	out, err = execute(t, "compile")
	require.NoError(t, err)
	assert.Equal(t, "Core\nApp\n", out)

	out, err = execute(t, "compile", "--graph")
	require.NoError(t, err)
	assert.Contains(t, out, "App --> Core")
}

func TestList(t *testing.T) {
	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Symbol transformations:")
	assert.Contains(t, out, "asyncify")
	assert.Contains(t, out, "wrap-signature <target> <suffix>")
	assert.Contains(t, out, "sync-only")
}

func TestMarkdown(t *testing.T) {
	sections, err := catalogSections()
	require.NoError(t, err)
	md := markdown(sections)
	assert.Contains(t, md, "## Document transformations")
	assert.Contains(t, md, "- `rename <newName>`")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "swallow version ")
	assert.NotContains(t, out, "\x1b[", "no colors when not a terminal")
}

func TestConfigFileMissing(t *testing.T) {
	workspaceDir(t, testutils.ScenarioA)
	_, err := execute(t, "compile", "--config", "absent.yaml")
	assert.Error(t, err)
}

func TestServe_BadAddress(t *testing.T) {
	workspaceDir(t, testutils.ScenarioA)
	_, err := execute(t, "serve", "--addr", "127.0.0.1:notaport")
	assert.Error(t, err)

	_, err = execute(t, "mcp", "--sse", "127.0.0.1:notaport")
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	src := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(src, []byte(testutils.ScenarioA), 0o644))

	out, err := execute(t, "import", src, "--workspace", "copied.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, ">>> Imported")

	out, err = execute(t, "functions", "clock.src", "--workspace", "copied.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "Clock.Tick()")

	_, err = execute(t, "import", filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
