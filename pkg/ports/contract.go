package ports

import (
	"context"
	"testing"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunCodeModelContract runs a suite of tests to verify that a CodeModel
// implementation adheres to the interface contract. locator must open a
// workspace holding at least one method declaration.
func RunCodeModelContract(t *testing.T, model CodeModel, locator string) {
	ctx := context.Background()

	ws, err := model.OpenWorkspace(ctx, locator)
	require.NoError(t, err, "OpenWorkspace should not return error")
	require.NotEmpty(t, ws.Documents(), "contract workspace needs documents")

	type declared struct {
		doc  domain.DocumentID
		decl *syntax.MethodDecl
		id   domain.FunctionID
	}
	var decls []declared

	t.Run("Declared symbols are canonical", func(t *testing.T) {
		for _, docID := range ws.Documents() {
			doc, _ := ws.Document(docID)
			for _, ref := range syntax.Methods(doc.Root) {
				id, ok, err := model.DeclaredSymbol(ctx, ws, docID, ref.Method)
				require.NoError(t, err)
				require.True(t, ok, "method %s in %s has no symbol", ref.Method.Name.Name, docID)

				again, _, err := model.DeclaredSymbol(ctx, ws, docID, ref.Method)
				require.NoError(t, err)
				assert.Equal(t, id, again, "handles for the same symbol must be equal")

				info, err := model.Function(ctx, ws, id)
				require.NoError(t, err)
				assert.Equal(t, ref.Method.Name.Name, info.Name)
				assert.Contains(t, info.Declarations, domain.Location{Document: docID, Span: ref.Method.Span})

				decls = append(decls, declared{doc: docID, decl: ref.Method, id: id})
			}
		}
		require.NotEmpty(t, decls, "contract workspace needs at least one method")
	})

	t.Run("Related declarations include the function", func(t *testing.T) {
		for _, d := range decls {
			related, err := model.RelatedDeclarations(ctx, ws, d.id)
			require.NoError(t, err)
			assert.Contains(t, related, d.id)
		}
	})

	t.Run("References resolve back to their target", func(t *testing.T) {
		for _, d := range decls {
			refs, err := model.FindReferences(ctx, ws, d.id)
			require.NoError(t, err)
			for _, r := range refs {
				assert.Equal(t, d.id, r.Target)
				doc, ok := ws.Document(r.Document)
				require.True(t, ok, "reference in unknown document %s", r.Document)
				ident, _, ok := syntax.FindIdent(doc.Root, r.Span)
				require.True(t, ok, "reference %s is not an identifier", r.Location())
				assert.Equal(t, d.decl.Name.Name, ident.Name)

				enclosing, found, err := model.EnclosingFunction(ctx, ws, r.Document, domain.Position(r.Span.Start))
				require.NoError(t, err)
				assert.Equal(t, r.HasEnclosing(), found)
				assert.Equal(t, r.Enclosing, enclosing)
			}
		}
	})

	t.Run("Find function by descriptor", func(t *testing.T) {
		_, err := model.FindFunction(ctx, ws, "NoSuchType.NoSuchMember")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Unknown function", func(t *testing.T) {
		_, err := model.Function(ctx, ws, domain.FunctionID("no-such-function"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Compile every project", func(t *testing.T) {
		for _, p := range ws.Projects() {
			assert.NoError(t, model.Compile(ctx, ws, p.ID))
		}
		err := model.Compile(ctx, ws, domain.ProjectID("no-such-project"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		if len(decls) == 0 {
			t.Skip("no declarations")
		}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := model.FindReferences(cctx, ws, decls[0].id)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
