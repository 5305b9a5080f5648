package compiler

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/workspace"
)

// ErrDependencyCycle is returned when project references form a cycle.
var ErrDependencyCycle = errors.New("project dependency cycle")

type graph struct {
	ids   []domain.ProjectID
	index map[domain.ProjectID]int
	deps  [][]int // project -> projects it references
	users [][]int // project -> projects referencing it
}

func buildGraph(ws *workspace.Workspace) (*graph, error) {
	projects := ws.Projects()
	g := &graph{
		ids:   make([]domain.ProjectID, len(projects)),
		index: make(map[domain.ProjectID]int, len(projects)),
		deps:  make([][]int, len(projects)),
		users: make([][]int, len(projects)),
	}
	for i, p := range projects {
		g.ids[i] = p.ID
		g.index[p.ID] = i
	}
	for i, p := range projects {
		for _, ref := range p.References {
			j, ok := g.index[ref]
			if !ok {
				return nil, fmt.Errorf("project %s references %s: %w", p.ID, ref, domain.ErrNotFound)
			}
			if slices.Contains(g.deps[i], j) {
				continue
			}
			g.deps[i] = append(g.deps[i], j)
			g.users[j] = append(g.users[j], i)
		}
	}
	return g, nil
}

// Order returns the projects of ws with every project after the projects it
// references. Independent projects keep workspace order.
func Order(ws *workspace.Workspace) ([]domain.ProjectID, error) {
	g, err := buildGraph(ws)
	if err != nil {
		return nil, err
	}
	return g.toposort()
}

func (g *graph) toposort() ([]domain.ProjectID, error) {
	indeg := make([]int, len(g.ids))
	current := make([]int, 0, len(g.ids))
	for i := range g.ids {
		indeg[i] = len(g.deps[i])
		if indeg[i] == 0 {
			current = append(current, i)
		}
	}

	order := make([]domain.ProjectID, 0, len(g.ids))
	for len(current) > 0 {
		var next []int
		for _, i := range current {
			order = append(order, g.ids[i])
			for _, u := range g.users[i] {
				indeg[u]--
				if indeg[u] == 0 {
					next = append(next, u)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(order) != len(g.ids) {
		var cycle []string
		for i, d := range indeg {
			if d > 0 {
				cycle = append(cycle, string(g.ids[i]))
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrDependencyCycle, strings.Join(cycle, ", "))
	}
	return order, nil
}
