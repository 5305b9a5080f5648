package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/swallow"
	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/internal/testutils"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, manifest string) *Server {
	t.Helper()
	locator := "mem://" + t.Name()
	model := memory.New(memory.WithManifest(locator, []byte(manifest)))
	eng, err := swallow.New(locator, swallow.WithCodeModel(model))
	require.NoError(t, err)
	return NewServer(eng, nil)
}

func TestAsyncifyTool(t *testing.T) {
	s := newTestServer(t, testutils.ScenarioB)
	ctx := context.Background()

	resp, err := s.handleAsyncify(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"function": "A.X",
		"dry_run":  true,
	})
	require.NoError(t, err)
	assert.False(t, resp.Committed)
	assert.Equal(t, []domain.FunctionID{"A.X()", "B.Y()"}, resp.Rewritten)
	assert.Contains(t, resp.Diff, "await A.XAsync()")

	resp, err = s.handleAsyncify(ctx, mcp.CallToolRequest{}, map[string]interface{}{"function": "A.X"})
	require.NoError(t, err)
	assert.True(t, resp.Committed)

	fns, err := s.handleFunctions(ctx, mcp.CallToolRequest{}, map[string]interface{}{"document": "core/a.src"})
	require.NoError(t, err)
	require.Len(t, fns.Functions, 1)
	assert.True(t, fns.Functions[0].Async)
	assert.Equal(t, "Task", fns.Functions[0].Result)

	_, err = s.handleAsyncify(ctx, mcp.CallToolRequest{}, map[string]interface{}{"function": "A.Missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunAndEditTools(t *testing.T) {
	s := newTestServer(t, testutils.Interfaces)
	ctx := context.Background()

	resp, err := s.handleRun(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"transformation": "rename",
		"function":       "Mem.Get",
		"args":           []interface{}{"Fetch"},
		"dry_run":        true,
	})
	require.NoError(t, err)
	assert.Contains(t, resp.Diff, "+        return store.Fetch();")

	resp, err = s.handleEdit(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"document":       "store.src",
		"transformation": "wrap-signature",
		"args":           []interface{}{"Mem.Get", "Async"},
		"dry_run":        true,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.DocumentID{"store.src"}, resp.Changed)

	filtered, err := s.handleFunctions(ctx, mcp.CallToolRequest{}, map[string]interface{}{
		"document": "store.src",
		"filter":   "in-type",
		"args":     []interface{}{"Mem"},
	})
	require.NoError(t, err)
	require.Len(t, filtered.Functions, 1)
	assert.Equal(t, "Mem", filtered.Functions[0].ContainingType)
}

func TestCatalogToolAndProjects(t *testing.T) {
	s := newTestServer(t, testutils.ScenarioB)
	ctx := context.Background()

	cat, err := s.handleCatalog(ctx, mcp.CallToolRequest{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Symbols)

	contents, err := s.readProjects(ctx, mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Contains(t, text.Text, "App --> Core")
}

func TestSSEHandler_CORSPreflight(t *testing.T) {
	s := newTestServer(t, testutils.ScenarioA)
	h := s.SSEHandler("http://localhost:0")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/message", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServer_ListsToolsWithSchemas(t *testing.T) {
	s := newTestServer(t, testutils.ScenarioA)
	ctx := context.Background()

	s.mcpServer.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	resp := s.mcpServer.HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	require.NoError(t, err)

	var out struct {
		Result struct {
			Tools []struct {
				Name         string          `json:"name"`
				OutputSchema json.RawMessage `json:"outputSchema"`
			} `json:"tools"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	names := make([]string, 0, len(out.Result.Tools))
	for _, tool := range out.Result.Tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.OutputSchema, tool.Name)
	}
	assert.ElementsMatch(t, []string{"asyncify", "run_transformation", "edit_document", "list_functions", "catalog"}, names)
}

func TestFunctionView_FlattensTypes(t *testing.T) {
	v := newFunctionView(domain.FunctionInfo{
		ID:         "Repo.Load(string)",
		Name:       "Load",
		Parameters: []domain.Parameter{{Name: "key", Type: domain.TypeRef{Name: "string"}}},
		Result: domain.TypeRef{Name: "Task", Args: []domain.TypeRef{
			{Name: "List", Args: []domain.TypeRef{{Name: "int"}}},
		}},
	})
	assert.Equal(t, []string{"string key"}, v.Params)
	assert.Equal(t, "Task<List<int>>", v.Result)
}
