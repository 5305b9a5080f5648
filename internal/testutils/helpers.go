package testutils

import (
	"context"
	"testing"

	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/stretchr/testify/require"
)

// OpenWorkspace registers manifest under a test locator and opens it.
// It fails the test immediately on error.
func OpenWorkspace(t *testing.T, manifest string, opts ...memory.Option) (*memory.Model, *workspace.Workspace) {
	t.Helper()

	locator := "mem://" + t.Name()
	model := memory.New(append([]memory.Option{memory.WithManifest(locator, []byte(manifest))}, opts...)...)
	ws, err := model.OpenWorkspace(context.Background(), locator)
	require.NoError(t, err, "Failed to open fixture workspace")
	return model, ws
}

// Text returns the rendered text of the document at path.
func Text(t *testing.T, ws *workspace.Workspace, path string) string {
	t.Helper()

	for _, id := range ws.Documents() {
		doc, _ := ws.Document(id)
		if doc.Path == path {
			return doc.Text
		}
	}
	require.FailNow(t, "document not found", path)
	return ""
}
