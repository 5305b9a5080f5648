package asyncify_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// graphModel serves a random call graph. Every edge is one reference inside
// the caller's body.
type graphModel struct {
	n     int
	refs  map[domain.FunctionID][]domain.ReferenceLocation
	mu    sync.Mutex
	calls map[domain.FunctionID]int
}

func fn(i int) domain.FunctionID { return domain.FunctionID(fmt.Sprintf("G.F%d()", i)) }

type edge struct {
	caller, callee int
	kind           domain.ReferenceKind
}

func newGraphModel(n int, edges []edge, reversed bool) *graphModel {
	g := &graphModel{n: n, refs: make(map[domain.FunctionID][]domain.ReferenceLocation), calls: make(map[domain.FunctionID]int)}
	for i, e := range edges {
		ref := domain.ReferenceLocation{
			Document: "g.src",
			Span:     domain.Span{Start: i * 10, End: i*10 + 2},
			Kind:     e.kind,
			Target:   fn(e.callee),
		}
		if e.kind == domain.InvocationInAwaitableContext {
			ref.Enclosing = fn(e.caller)
		}
		g.refs[ref.Target] = append(g.refs[ref.Target], ref)
	}
	if reversed {
		for _, refs := range g.refs {
			slices.Reverse(refs)
		}
	}
	return g
}

func (g *graphModel) OpenWorkspace(context.Context, string) (*workspace.Workspace, error) {
	return workspace.New("graph://")
}

func (g *graphModel) FindFunction(context.Context, *workspace.Workspace, string) (domain.FunctionID, error) {
	return "", domain.ErrNotFound
}

func (g *graphModel) FindReferences(_ context.Context, _ *workspace.Workspace, id domain.FunctionID) ([]domain.ReferenceLocation, error) {
	g.mu.Lock()
	g.calls[id]++
	g.mu.Unlock()
	return slices.Clone(g.refs[id]), nil
}

func (g *graphModel) EnclosingFunction(context.Context, *workspace.Workspace, domain.DocumentID, domain.Position) (domain.FunctionID, bool, error) {
	return "", false, nil
}

func (g *graphModel) DeclaredSymbol(context.Context, *workspace.Workspace, domain.DocumentID, syntax.Node) (domain.FunctionID, bool, error) {
	return "", false, nil
}

func (g *graphModel) RelatedDeclarations(_ context.Context, _ *workspace.Workspace, id domain.FunctionID) ([]domain.FunctionID, error) {
	return []domain.FunctionID{id}, nil
}

func (g *graphModel) Function(_ context.Context, _ *workspace.Workspace, id domain.FunctionID) (domain.FunctionInfo, error) {
	for i := range g.n {
		if fn(i) == id {
			return domain.FunctionInfo{ID: id, Name: fmt.Sprintf("F%d", i), ContainingType: "G", HasBody: true, CanBeAsync: true}, nil
		}
	}
	return domain.FunctionInfo{}, domain.ErrNotFound
}

func (g *graphModel) Type(context.Context, *workspace.Workspace, string) (domain.TypeInfo, error) {
	return domain.TypeInfo{}, domain.ErrNotFound
}

func (g *graphModel) Compile(context.Context, *workspace.Workspace, domain.ProjectID) error {
	return nil
}

func (g *graphModel) Commit(context.Context, *workspace.Workspace) (bool, error) {
	return false, nil
}

// callers computes every function that reaches seed through invocations.
func callers(n int, edges []edge, seed int) map[domain.FunctionID]bool {
	reached := map[domain.FunctionID]bool{fn(seed): true}
	queue := []int{seed}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, e := range edges {
			if e.callee == current && e.kind == domain.InvocationInAwaitableContext && !reached[fn(e.caller)] {
				reached[fn(e.caller)] = true
				queue = append(queue, e.caller)
			}
		}
	}
	return reached
}

func drawGraph(rt *rapid.T) (int, []edge, int) {
	n := rapid.IntRange(1, 12).Draw(rt, "n")
	count := rapid.IntRange(0, 40).Draw(rt, "edges")
	edges := make([]edge, count)
	for i := range edges {
		edges[i] = edge{
			caller: rapid.IntRange(0, n-1).Draw(rt, "caller"),
			callee: rapid.IntRange(0, n-1).Draw(rt, "callee"),
			kind:   domain.ReferenceKind(rapid.IntRange(0, 2).Draw(rt, "kind")),
		}
	}
	return n, edges, rapid.IntRange(0, n-1).Draw(rt, "seed")
}

func collectedSet(c *asyncify.Collected) map[domain.FunctionID]bool {
	out := make(map[domain.FunctionID]bool, len(c.Declarations))
	for _, d := range c.Declarations {
		out[d.Info.ID] = true
	}
	return out
}

func TestCollect_ReachesExactlyTheCallers(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n, edges, seed := drawGraph(rt)
		model := newGraphModel(n, edges, false)

		c, err := asyncify.New(model).Collect(context.Background(), nil, fn(seed))
		require.NoError(rt, err)

		require.Equal(rt, callers(n, edges, seed), collectedSet(c))
		require.Len(rt, c.Declarations, len(collectedSet(c)), "no function is collected twice")
		for id, calls := range model.calls {
			require.Equal(rt, 1, calls, "references of %s fetched more than once", id)
		}
	})
}

func TestCollect_IndependentOfReferenceOrder(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n, edges, seed := drawGraph(rt)

		forward, err := asyncify.New(newGraphModel(n, edges, false)).Collect(context.Background(), nil, fn(seed))
		require.NoError(rt, err)
		backward, err := asyncify.New(newGraphModel(n, edges, true)).Collect(context.Background(), nil, fn(seed))
		require.NoError(rt, err)

		require.Equal(rt, collectedSet(forward), collectedSet(backward))
		require.ElementsMatch(rt, forward.References, backward.References)
	})
}
