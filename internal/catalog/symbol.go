package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/internal/rewrite"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/ports"
	"github.com/aretw0/swallow/pkg/registry"
	"github.com/aretw0/swallow/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// Env carries what a symbol transformation needs besides its arguments.
type Env struct {
	Model   ports.CodeModel
	Options asyncify.Options
	Logger  *slog.Logger
	Tracer  trace.Tracer
}

// Symbol is a transformation planned from one function. Plan records its
// edits in uow without executing them.
type Symbol interface {
	Name() string
	Plan(ctx context.Context, env Env, ws *workspace.Workspace, id domain.FunctionID, uow *workspace.UnitOfWork) error
}

func symbolEntries() []registry.Entry {
	return []registry.Entry{
		{
			Name:        "asyncify",
			Description: "Makes a function asynchronous and propagates the change to its callers.",
			Params:      []registry.Parameter{{Name: "suffix", Description: "Overrides the configured suffix"}},
			Constructor: newAsyncifySymbol,
		},
		{
			Name:        "rename",
			Description: "Renames a function, its related declarations and every reference.",
			Params:      []registry.Parameter{{Name: "newName"}},
			Constructor: newRenameSymbol,
		},
	}
}

type asyncifySymbol struct {
	suffix string
}

func newAsyncifySymbol(suffix ...string) (Symbol, error) {
	switch len(suffix) {
	case 0:
		return asyncifySymbol{}, nil
	case 1:
		return asyncifySymbol{suffix: suffix[0]}, nil
	default:
		return nil, fmt.Errorf("%w: asyncify takes at most one suffix, got %d", registry.ErrBinding, len(suffix))
	}
}

func (asyncifySymbol) Name() string { return "asyncify" }

func (s asyncifySymbol) Plan(ctx context.Context, env Env, ws *workspace.Workspace, id domain.FunctionID, uow *workspace.UnitOfWork) error {
	opts := env.Options
	if s.suffix != "" {
		opts.Suffix = s.suffix
	}
	engineOpts := []asyncify.Option{asyncify.WithOptions(opts)}
	if env.Logger != nil {
		engineOpts = append(engineOpts, asyncify.WithLogger(env.Logger))
	}
	if env.Tracer != nil {
		engineOpts = append(engineOpts, asyncify.WithTracer(env.Tracer))
	}
	_, err := asyncify.New(env.Model, engineOpts...).Asyncify(ctx, ws, id, uow)
	return err
}

type renameSymbol struct {
	newName string
}

func newRenameSymbol(newName string) (Symbol, error) {
	if newName == "" {
		return nil, fmt.Errorf("%w: rename needs a non-empty name", registry.ErrBinding)
	}
	return renameSymbol{newName: newName}, nil
}

func (renameSymbol) Name() string { return "rename" }

func (s renameSymbol) Plan(ctx context.Context, env Env, ws *workspace.Workspace, id domain.FunctionID, uow *workspace.UnitOfWork) error {
	related, err := env.Model.RelatedDeclarations(ctx, ws, id)
	if err != nil {
		return err
	}
	seen := make(map[domain.Location]bool)
	for _, r := range related {
		info, err := env.Model.Function(ctx, ws, r)
		if err != nil {
			return err
		}
		for _, loc := range info.Declarations {
			if err := uow.RecordChange(loc.Document, rewrite.Rename{Target: loc.Span, NewName: s.newName}); err != nil {
				return err
			}
		}
		refs, err := env.Model.FindReferences(ctx, ws, r)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if seen[ref.Location()] {
				continue
			}
			seen[ref.Location()] = true
			site := rewrite.CallSite{Span: ref.Span, NewName: s.newName, Mode: rewrite.RenameOnly}
			if err := uow.RecordChange(ref.Document, site); err != nil {
				return err
			}
		}
	}
	return nil
}
