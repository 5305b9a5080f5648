package ports

import (
	"context"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/aretw0/swallow/pkg/workspace"
)

// CodeModel is the semantic view of a source language. Every query is made
// against a specific immutable snapshot.
type CodeModel interface {
	// OpenWorkspace loads the snapshot identified by locator.
	OpenWorkspace(ctx context.Context, locator string) (*workspace.Workspace, error)

	// FindFunction resolves a "Type.Member" descriptor. It returns
	// domain.ErrNotFound when nothing or more than one function matches.
	FindFunction(ctx context.Context, ws *workspace.Workspace, descriptor string) (domain.FunctionID, error)

	// FindReferences returns every location naming id, classified by kind.
	// Declarations are not references.
	FindReferences(ctx context.Context, ws *workspace.Workspace, id domain.FunctionID) ([]domain.ReferenceLocation, error)

	// EnclosingFunction returns the function whose body contains pos. The
	// boolean is false when pos lies outside any function body.
	EnclosingFunction(ctx context.Context, ws *workspace.Workspace, doc domain.DocumentID, pos domain.Position) (domain.FunctionID, bool, error)

	// DeclaredSymbol returns the function declared by node, matched by span.
	DeclaredSymbol(ctx context.Context, ws *workspace.Workspace, doc domain.DocumentID, node syntax.Node) (domain.FunctionID, bool, error)

	// RelatedDeclarations returns id together with every declaration that must
	// change with it: overrides, overridden members and interface members it
	// implements, transitively.
	RelatedDeclarations(ctx context.Context, ws *workspace.Workspace, id domain.FunctionID) ([]domain.FunctionID, error)

	Function(ctx context.Context, ws *workspace.Workspace, id domain.FunctionID) (domain.FunctionInfo, error)
	Type(ctx context.Context, ws *workspace.Workspace, name string) (domain.TypeInfo, error)

	// Compile builds the analysis state of one project. Dependencies are
	// compiled before their dependents.
	Compile(ctx context.Context, ws *workspace.Workspace, project domain.ProjectID) error

	// Commit persists ws. It reports false when there was nothing to write.
	Commit(ctx context.Context, ws *workspace.Workspace) (bool, error)
}
