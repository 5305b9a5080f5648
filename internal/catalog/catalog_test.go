package catalog_test

import (
	"context"
	"testing"

	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/internal/catalog"
	"github.com/aretw0/swallow/internal/testutils"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/registry"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleArg returns a well-formed argument for a parameter type.
func sampleArg(typ string) string {
	if typ == "int" {
		return "3"
	}
	return "X"
}

type metadataLister interface {
	List() []registry.Metadata
}

func checkArity(t *testing.T, reg metadataLister, create func(string, []string) error) {
	t.Helper()
	for _, meta := range reg.List() {
		args := make([]string, len(meta.Params))
		for i, p := range meta.Params {
			args[i] = sampleArg(p.Type)
		}
		if len(args) > 0 && args[0] == "3" {
			args[1] = "5"
		}
		assert.NoError(t, create(meta.Name, args), "%s with %d argument(s)", meta.Name, len(args))

		if len(meta.Params) == 0 || !meta.Params[0].Variadic {
			err := create(meta.Name, append(args, "extra"))
			assert.ErrorIs(t, err, registry.ErrBinding, "%s rejects an extra argument", meta.Name)
		}
	}
}

func TestRegistries_ParamsMatchAcceptedArguments(t *testing.T) {
	docs, err := catalog.Documents()
	require.NoError(t, err)
	checkArity(t, docs, func(name string, args []string) error { _, err := docs.Create(name, args); return err })

	symbols, err := catalog.Symbols()
	require.NoError(t, err)
	checkArity(t, symbols, func(name string, args []string) error { _, err := symbols.Create(name, args); return err })

	filters, err := catalog.Filters()
	require.NoError(t, err)
	checkArity(t, filters, func(name string, args []string) error { _, err := filters.Create(name, args); return err })
}

func TestRegistries_Names(t *testing.T) {
	names := func(list []registry.Metadata) []string {
		out := make([]string, len(list))
		for i, m := range list {
			out[i] = m.Name
		}
		return out
	}
	docs, _ := catalog.Documents()
	symbols, _ := catalog.Symbols()
	filters, _ := catalog.Filters()

	assert.Equal(t, []string{"await-call", "blocking-wait", "mark-async", "rename-reference", "wrap-signature"}, names(docs.List()))
	assert.Equal(t, []string{"asyncify", "rename"}, names(symbols.List()))
	assert.Equal(t, []string{"has-body", "in-type", "name-matches", "sync-only"}, names(filters.List()))

	again, _ := catalog.Documents()
	assert.Same(t, docs, again, "built once")
}

func TestDocuments_BindingErrors(t *testing.T) {
	docs, _ := catalog.Documents()

	_, err := docs.Create("mark-async", nil)
	assert.ErrorIs(t, err, registry.ErrBinding)

	_, err = docs.Create("await-call", []string{"5", "5", ""})
	assert.ErrorIs(t, err, registry.ErrBinding, "empty span")

	_, err = docs.Create("await-call", []string{"x", "5", ""})
	assert.ErrorIs(t, err, registry.ErrBinding)

	_, err = docs.Create("nope", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocuments_WrapSignature(t *testing.T) {
	ctx := context.Background()
	_, ws := testutils.OpenWorkspace(t, testutils.ScenarioB)
	docs, _ := catalog.Documents()

	wrap, err := docs.Create("wrap-signature", []string{"A.X", "Async"})
	require.NoError(t, err)
	uow := workspace.NewUnitOfWork(ws)
	require.NoError(t, uow.RecordChange("core/a.src", wrap))
	after, err := uow.Execute(ctx)
	require.NoError(t, err)
	assert.Contains(t, testutils.Text(t, after, "core/a.src"), "async Task XAsync() {")
}

func TestSymbols_Rename(t *testing.T) {
	ctx := context.Background()
	model, ws := testutils.OpenWorkspace(t, testutils.Interfaces)
	symbols, _ := catalog.Symbols()

	rename, err := symbols.Create("rename", []string{"Fetch"})
	require.NoError(t, err)
	uow := workspace.NewUnitOfWork(ws)
	require.NoError(t, rename.Plan(ctx, catalog.Env{Model: model}, ws, "Mem.Get()", uow))
	after, err := uow.Execute(ctx)
	require.NoError(t, err)

	store := testutils.Text(t, after, "store.src")
	assert.Contains(t, store, "int Fetch();")
	assert.Contains(t, store, "public int Fetch() {")
	assert.Contains(t, testutils.Text(t, after, "svc.src"), "return store.Fetch();")

	_, err = symbols.Create("rename", []string{""})
	assert.ErrorIs(t, err, registry.ErrBinding)
}

func TestSymbols_AsyncifySuffix(t *testing.T) {
	ctx := context.Background()
	model, ws := testutils.OpenWorkspace(t, testutils.ScenarioB)
	symbols, _ := catalog.Symbols()
	env := catalog.Env{Model: model, Options: asyncify.DefaultOptions()}

	s, err := symbols.Create("asyncify", []string{"Later"})
	require.NoError(t, err)
	uow := workspace.NewUnitOfWork(ws)
	require.NoError(t, s.Plan(ctx, env, ws, "A.X()", uow))
	after, err := uow.Execute(ctx)
	require.NoError(t, err)
	assert.Contains(t, testutils.Text(t, after, "app/b.src"), "await A.XLater()")

	s, err = symbols.Create("asyncify", nil)
	require.NoError(t, err)
	uow = workspace.NewUnitOfWork(ws)
	require.NoError(t, s.Plan(ctx, env, ws, "A.X()", uow))
	after, err = uow.Execute(ctx)
	require.NoError(t, err)
	assert.Contains(t, testutils.Text(t, after, "app/b.src"), "await A.XAsync()")

	_, err = symbols.Create("asyncify", []string{"A", "B"})
	assert.ErrorIs(t, err, registry.ErrBinding)
}

func TestFilters(t *testing.T) {
	filters, _ := catalog.Filters()
	infos := []domain.FunctionInfo{
		{Name: "Load", ContainingType: "Repo", HasBody: true},
		{Name: "LoadAsync", ContainingType: "Repo", HasBody: true, Async: true},
		{Name: "Get", ContainingType: "IStore"},
	}
	pick := func(name string, args ...string) []string {
		f, err := filters.Create(name, args)
		require.NoError(t, err)
		var out []string
		for _, info := range catalog.Select(f, infos) {
			out = append(out, info.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Load", "Get"}, pick("sync-only"))
	assert.Equal(t, []string{"Load", "LoadAsync"}, pick("has-body"))
	assert.Equal(t, []string{"Load", "LoadAsync"}, pick("name-matches", "Load*"))
	assert.Equal(t, []string{"Get"}, pick("in-type", "IStore"))
	assert.Len(t, catalog.Select(nil, infos), 3)

	_, err := filters.Create("name-matches", []string{"["})
	assert.ErrorIs(t, err, registry.ErrBinding)
}
