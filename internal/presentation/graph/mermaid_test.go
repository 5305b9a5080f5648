package graph_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/internal/presentation/graph"
	"github.com/aretw0/swallow/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, manifest, seed string) *asyncify.Collected {
	t.Helper()
	ctx := context.Background()
	model, ws := testutils.OpenWorkspace(t, manifest)
	id, err := model.FindFunction(ctx, ws, seed)
	require.NoError(t, err)
	c, err := asyncify.New(model).Collect(ctx, ws, id)
	require.NoError(t, err)
	return c
}

func TestPropagation(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		seed     string
		contains []string
	}{
		{
			name:     "Seed And Caller",
			manifest: testutils.ScenarioB,
			seed:     "A.X",
			contains: []string{
				`A_X_(("A.X()"))`,
				`B_Y_["B.Y()"]`,
				"B_Y_ --> A_X_",
			},
		},
		{
			name:     "Boundary Shape",
			manifest: testutils.Boundary,
			seed:     "Helper.Fetch",
			contains: []string{
				`Repo_Load_string[["Repo.Load(string)"]]`,
				`Repo_Load_string -. "wait" .-> Helper_Fetch_string`,
				"class Repo_Load_string boundary;",
			},
		},
		{
			name:     "Name Literal",
			manifest: testutils.ScenarioC,
			seed:     "A.X",
			contains: []string{
				`C_Describe_ -. "nameof" .-> A_X_`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.Propagation(collect(t, tt.manifest, tt.seed))
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestProjects(t *testing.T) {
	_, ws := testutils.OpenWorkspace(t, testutils.ScenarioB)
	got := graph.Projects(ws)
	assert.Contains(t, got, `App["App (1)"]`)
	assert.Contains(t, got, "App --> Core")
}
