package asyncify_test

import (
	"context"
	"testing"

	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/internal/testutils"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type run struct {
	model     *memory.Model
	before    *workspace.Workspace
	after     *workspace.Workspace
	collected *asyncify.Collected
	uow       *workspace.UnitOfWork
}

func asyncifyFixture(t *testing.T, manifest, seed string, opts ...asyncify.Option) run {
	t.Helper()
	ctx := context.Background()
	model, ws := testutils.OpenWorkspace(t, manifest)

	id, err := model.FindFunction(ctx, ws, seed)
	require.NoError(t, err)

	uow := workspace.NewUnitOfWork(ws)
	collected, err := asyncify.New(model, opts...).Asyncify(ctx, ws, id, uow)
	require.NoError(t, err)

	after, err := uow.Execute(ctx)
	require.NoError(t, err)
	return run{model: model, before: ws, after: after, collected: collected, uow: uow}
}

func TestScenarioA_NoCallers(t *testing.T) {
	r := asyncifyFixture(t, testutils.ScenarioA, "Clock.Tick")

	assert.Equal(t, 1, r.uow.NumberOfDocuments())
	text := testutils.Text(t, r.after, "clock.src")
	assert.Contains(t, text, "    async Task TickAsync() {")
	assert.Contains(t, text, "    void Log(string m) {", "callees are untouched")
	assert.Equal(t, testutils.Text(t, r.before, "other.src"), testutils.Text(t, r.after, "other.src"))
}

func TestScenarioB_CallerIsAwaited(t *testing.T) {
	r := asyncifyFixture(t, testutils.ScenarioB, "A.X")

	assert.Contains(t, testutils.Text(t, r.after, "core/a.src"), "async Task XAsync() {")
	b := testutils.Text(t, r.after, "app/b.src")
	assert.Contains(t, b, "async Task YAsync() {")
	assert.Contains(t, b, "/* first */ await A.XAsync() /* trailing */;", "trivia moves to the await")
	assert.Equal(t, []domain.FunctionID{"A.X()", "B.Y()"}, r.collected.Rewritten())
}

func TestScenarioC_NameLiteralRenamedOnly(t *testing.T) {
	r := asyncifyFixture(t, testutils.ScenarioC, "A.X")

	c := testutils.Text(t, r.after, "c.src")
	assert.Contains(t, c, "string Label = nameof(A.XAsync);")
	assert.Contains(t, c, "return nameof(A.XAsync);")
	assert.Contains(t, c, "string Describe() {", "name literals do not propagate")
	assert.NotContains(t, c, "await")
	assert.NotContains(t, c, "GetAwaiter")
}

func TestScenarioD_PropertyGetterBlocksOnResult(t *testing.T) {
	r := asyncifyFixture(t, testutils.ScenarioD, "A.Load")

	assert.Contains(t, testutils.Text(t, r.after, "a.src"), "async Task<int> LoadAsync() {")
	c := testutils.Text(t, r.after, "c.src")
	assert.Contains(t, c, "return A.LoadAsync().GetAwaiter().GetResult();")
	assert.Contains(t, c, "int Cached = A.LoadAsync().GetAwaiter().GetResult();")
	assert.Contains(t, c, "int Count {", "property stays synchronous")
	assert.NotContains(t, c, "await")
}

func TestScenarioE_IndirectCycle(t *testing.T) {
	r := asyncifyFixture(t, testutils.ScenarioE, "Loop.A")

	assert.ElementsMatch(t, []domain.FunctionID{"Loop.A()", "Loop.B()", "Loop.C()"}, r.collected.Rewritten())
	text := testutils.Text(t, r.after, "loop.src")
	assert.Contains(t, text, "async Task AAsync() {\n        await CAsync();")
	assert.Contains(t, text, "async Task BAsync() {\n        await AAsync();")
	assert.Contains(t, text, "async Task CAsync() {\n        await BAsync();")
	assert.Len(t, r.collected.References, 3)
}

func TestRecursion_VisitedOnce(t *testing.T) {
	r := asyncifyFixture(t, testutils.Recursion, "MathUtil.Fact")

	assert.Len(t, r.collected.Declarations, 1)
	text := testutils.Text(t, r.after, "math.src")
	assert.Contains(t, text, "async Task<int> FactAsync(int n) {")
	assert.Contains(t, text, "return await FactAsync(n);")
}

func TestBoundary_SeedWithBaseCounterpart(t *testing.T) {
	r := asyncifyFixture(t, testutils.Boundary, "Repo.Load")

	require.Len(t, r.collected.Declarations, 1)
	d := r.collected.Declarations[0]
	assert.True(t, d.Boundary)
	assert.Equal(t, domain.FunctionID("BaseRepo.LoadAsync(string,CancellationToken)"), d.Counterpart)
	assert.Empty(t, r.collected.References)
	assert.Equal(t, 0, r.uow.NumberOfDocuments(), "a boundary seed produces no edits")
}

func TestBoundary_StopsPropagation(t *testing.T) {
	r := asyncifyFixture(t, testutils.Boundary, "Helper.Fetch")

	repo := testutils.Text(t, r.after, "repo.src")
	assert.Contains(t, repo, "async Task<int> FetchAsync(string key) {")
	assert.Contains(t, repo, "int Load(string key) {", "boundary is unchanged")
	assert.Contains(t, repo, "return Helper.FetchAsync(key).GetAwaiter().GetResult();")
	assert.Equal(t, testutils.Text(t, r.before, "caller.src"), testutils.Text(t, r.after, "caller.src"),
		"callers of a boundary are not followed")

	load, ok := r.collected.Declaration("Repo.Load(string)")
	require.True(t, ok)
	assert.True(t, load.Boundary)
}

func TestBoundary_ParameterShapeMustMatch(t *testing.T) {
	manifest := `
projects:
  - name: Core
    documents:
      - path: s.src
        types:
          - name: S
            members:
              - method: {name: Save}
              - method: {name: SaveAsync, returns: Task}
              - method: {name: Send}
              - method: {name: SendAsync, returns: Task, params: [{name: n, type: int}]}
`
	r := asyncifyFixture(t, manifest, "S.Save")
	assert.True(t, r.collected.Declarations[0].Boundary, "identical parameters")

	r = asyncifyFixture(t, manifest, "S.Send")
	assert.False(t, r.collected.Declarations[0].Boundary, "trailing int is not a cancellation token")
}

func TestInterfaces_FanOut(t *testing.T) {
	r := asyncifyFixture(t, testutils.Interfaces, "Mem.Get")

	store := testutils.Text(t, r.after, "store.src")
	assert.Contains(t, store, "    Task<int> GetAsync();", "interface member is wrapped without a marker")
	assert.Contains(t, store, "public async Task<int> GetAsync() {")
	svc := testutils.Text(t, r.after, "svc.src")
	assert.Contains(t, svc, "async Task<int> RunAsync() {")
	assert.Contains(t, svc, "return await store.GetAsync();")
}

func TestPartial_AllFragmentsRewritten(t *testing.T) {
	r := asyncifyFixture(t, testutils.Partial, "Report.Flush")

	a := testutils.Text(t, r.after, "report.a.src")
	assert.Contains(t, a, "    Task RenderAsync();")
	assert.Contains(t, a, "async Task PrintAsync() {\n        await RenderAsync();")
	b := testutils.Text(t, r.after, "report.b.src")
	assert.Contains(t, b, "async Task RenderAsync() {\n        await FlushAsync();")
	assert.Contains(t, b, "async Task FlushAsync() {")
}

func TestOptions_WithoutRename(t *testing.T) {
	opts := asyncify.DefaultOptions()
	opts.Rename = false
	r := asyncifyFixture(t, testutils.ScenarioB, "A.X", asyncify.WithOptions(opts))

	assert.Contains(t, testutils.Text(t, r.after, "core/a.src"), "async Task X() {")
	assert.Contains(t, testutils.Text(t, r.after, "app/b.src"), "await A.X()")

	r = asyncifyFixture(t, testutils.ScenarioC, "A.X", asyncify.WithOptions(opts))
	assert.Equal(t, 1, r.uow.NumberOfDocuments(), "name literals need no edit without a rename")
}

func TestOptions_CustomEnvelope(t *testing.T) {
	opts := asyncify.Options{Suffix: "Later", Rename: true, TaskType: "Future"}
	r := asyncifyFixture(t, testutils.Recursion, "MathUtil.Fact", asyncify.WithOptions(opts))
	assert.Contains(t, testutils.Text(t, r.after, "math.src"), "async Future<int> FactLater(int n) {")
}

func TestCollect_Errors(t *testing.T) {
	model, ws := testutils.OpenWorkspace(t, testutils.ScenarioE)
	engine := asyncify.New(model)

	_, err := engine.Collect(context.Background(), ws, "Loop.Missing()")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Collect(ctx, ws, "Loop.A()")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPlan_ExecutedUnitOfWork(t *testing.T) {
	ctx := context.Background()
	model, ws := testutils.OpenWorkspace(t, testutils.ScenarioA)
	uow := workspace.NewUnitOfWork(ws)
	_, err := uow.Execute(ctx)
	require.NoError(t, err)

	_, err = asyncify.New(model).Asyncify(ctx, ws, "Clock.Tick()", uow)
	assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)
}

func TestOverloads_OnlyMatchingCallSitesChange(t *testing.T) {
	r := asyncifyFixture(t, testutils.Overloads, "A.X(string)")

	a := testutils.Text(t, r.after, "a.src")
	assert.Contains(t, a, "async Task XAsync(string key) {")
	assert.Contains(t, a, "    void X(int n) {")

	b := testutils.Text(t, r.after, "b.src")
	assert.Contains(t, b, `await A.XAsync("k");`)
	assert.Contains(t, b, "await A.XAsync(label);")
	assert.Contains(t, b, "A.X(1);")
	assert.Contains(t, b, "A.X(n);")
	assert.NotContains(t, b, "A.XAsync(1)")
	assert.ElementsMatch(t, []domain.FunctionID{"A.X(string)", "B.Y()", "B.V()"}, r.collected.Rewritten())
}

func TestOverloads_AmbiguousCallFails(t *testing.T) {
	ctx := context.Background()
	model, ws := testutils.OpenWorkspace(t, `
projects:
  - name: Core
    documents:
      - path: a.src
        types:
          - name: A
            members:
              - method: {name: X, params: [{name: key, type: string}]}
              - method: {name: X, params: [{name: n, type: int}]}
              - method:
                  name: Y
                  body:
                    - call: {target: X, args: [{ident: unknown}]}
`)
	uow := workspace.NewUnitOfWork(ws)
	_, err := asyncify.New(model).Asyncify(ctx, ws, "A.X(string)", uow)
	assert.ErrorIs(t, err, domain.ErrUnsupportedShape)
	assert.Zero(t, uow.NumberOfDocuments(), "nothing is recorded for a failed propagation")
}
