package asyncify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/internal/rewrite"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/ports"
	"github.com/aretw0/swallow/pkg/workspace"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Engine propagates asynchrony from a seed function to its callers,
// overrides and interface members.
type Engine struct {
	model  ports.CodeModel
	opts   Options
	logger *slog.Logger
	tracer trace.Tracer
}

// Option configures an Engine.
type Option func(*Engine)

// WithOptions replaces the rewrite options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts.withDefaults()
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer records Collect and Plan as spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// New creates an Engine over model.
func New(model ports.CodeModel, opts ...Option) *Engine {
	e := &Engine{
		model:  model,
		opts:   DefaultOptions(),
		logger: logging.NewNop(),
		tracer: noop.NewTracerProvider().Tracer("swallow/asyncify"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Asyncify collects everything reachable from seed and records the edits in
// uow.
func (e *Engine) Asyncify(ctx context.Context, ws *workspace.Workspace, seed domain.FunctionID, uow *workspace.UnitOfWork) (*Collected, error) {
	collected, err := e.Collect(ctx, ws, seed)
	if err != nil {
		return nil, err
	}
	if err := e.Plan(ctx, ws, collected, uow); err != nil {
		return collected, err
	}
	return collected, nil
}

// Collect walks the call graph breadth-first from seed. Every function is
// visited at most once, so cycles and recursion terminate.
func (e *Engine) Collect(ctx context.Context, ws *workspace.Workspace, seed domain.FunctionID) (_ *Collected, err error) {
	ctx, span := e.tracer.Start(ctx, "asyncify.collect", trace.WithAttributes(
		attribute.String("swallow.seed", string(seed)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	c := newCollected(seed)
	queue := []domain.FunctionID{seed}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := queue[0]
		queue = queue[1:]
		if c.Has(f) {
			continue
		}

		info, err := e.model.Function(ctx, ws, f)
		if err != nil {
			return nil, err
		}
		counterpart, found, err := e.findCounterpart(ctx, ws, info)
		if err != nil {
			return nil, err
		}
		if found {
			e.logger.Debug("boundary reached", "function", f, "counterpart", counterpart)
			c.addDeclaration(Declaration{Info: info, Boundary: true, Counterpart: counterpart})
			continue
		}

		related, err := e.model.RelatedDeclarations(ctx, ws, f)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(related, f) {
			related = append([]domain.FunctionID{f}, related...)
		}
		for _, r := range related {
			if c.Has(r) {
				continue
			}
			rinfo := info
			if r != f {
				if rinfo, err = e.model.Function(ctx, ws, r); err != nil {
					return nil, err
				}
			}
			c.addDeclaration(Declaration{Info: rinfo})

			callers, err := e.references(ctx, ws, c, r)
			if err != nil {
				return nil, err
			}
			queue = append(queue, callers...)
		}
	}

	span.SetAttributes(
		attribute.Int("swallow.declarations", len(c.Declarations)),
		attribute.Int("swallow.references", len(c.References)),
	)
	e.logger.Debug("propagation collected",
		"seed", seed,
		"declarations", len(c.Declarations),
		"references", len(c.References),
	)
	return c, nil
}

// references records the references of id and returns the synchronous
// functions that invoke it.
func (e *Engine) references(ctx context.Context, ws *workspace.Workspace, c *Collected, id domain.FunctionID) ([]domain.FunctionID, error) {
	refs, err := e.model.FindReferences(ctx, ws, id)
	if err != nil {
		return nil, err
	}
	var callers []domain.FunctionID
	for _, ref := range refs {
		if !ref.HasEnclosing() && ref.Kind == domain.InvocationInAwaitableContext {
			enclosing, ok, err := e.model.EnclosingFunction(ctx, ws, ref.Document, domain.Position(ref.Span.Start))
			if err != nil {
				return nil, err
			}
			if ok {
				ref.Enclosing = enclosing
			}
		}
		if !c.addReference(ref) {
			continue
		}
		// Name literals and contexts that cannot become asynchronous stop
		// propagation here.
		if ref.Kind != domain.InvocationInAwaitableContext || !ref.HasEnclosing() || c.Has(ref.Enclosing) {
			continue
		}
		enclosing, err := e.model.Function(ctx, ws, ref.Enclosing)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if !enclosing.Async {
			callers = append(callers, ref.Enclosing)
		}
	}
	return callers, nil
}

// findCounterpart looks for Name+Suffix on the function's type and its base
// chain with the same parameter types, optionally followed by one
// cancellation parameter.
func (e *Engine) findCounterpart(ctx context.Context, ws *workspace.Workspace, info domain.FunctionInfo) (domain.FunctionID, bool, error) {
	want := info.Name + e.opts.Suffix
	seen := make(map[string]bool)
	for name := info.ContainingType; name != "" && !seen[name]; {
		seen[name] = true
		t, err := e.model.Type(ctx, ws, name)
		if errors.Is(err, domain.ErrNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		for _, member := range t.Members {
			if member == info.ID {
				continue
			}
			candidate, err := e.model.Function(ctx, ws, member)
			if err != nil {
				return "", false, err
			}
			if candidate.Name == want && e.compatible(info.ParameterTypes(), candidate.ParameterTypes()) {
				return member, true, nil
			}
		}
		name = t.Base
	}
	return "", false, nil
}

func (e *Engine) compatible(params, candidate []domain.TypeRef) bool {
	switch len(candidate) {
	case len(params):
		return slices.EqualFunc(params, candidate, domain.TypeRef.Equal)
	case len(params) + 1:
		last := candidate[len(candidate)-1]
		return slices.Contains(e.opts.CancellationTypes, last.Name) &&
			slices.EqualFunc(params, candidate[:len(params)], domain.TypeRef.Equal)
	default:
		return false
	}
}

// Plan records the declaration and call-site edits for c in uow.
func (e *Engine) Plan(ctx context.Context, ws *workspace.Workspace, c *Collected, uow *workspace.UnitOfWork) (err error) {
	_, span := e.tracer.Start(ctx, "asyncify.plan", trace.WithAttributes(
		attribute.String("swallow.seed", string(c.Seed)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	edits := 0
	for _, d := range c.Declarations {
		if d.Boundary {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		wrap := rewrite.SignatureWrap{
			Async:          d.Info.CanBeAsync && !d.Info.Async,
			TaskType:       e.opts.TaskType,
			AwaitableTypes: e.opts.AwaitableTypes,
			NewName:        e.newName(d.Info.Name),
		}
		for _, loc := range d.Info.Declarations {
			wrap.Target = loc.Span
			if err := uow.RecordChange(loc.Document, wrap); err != nil {
				return fmt.Errorf("declaration %s: %w", d.Info.ID, err)
			}
			edits++
		}
	}

	for _, ref := range c.References {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, ok := c.Declaration(ref.Target)
		if !ok {
			continue
		}
		site := rewrite.CallSite{
			Span:    ref.Span,
			NewName: e.newName(target.Info.Name),
			Mode:    e.mode(c, ref),
		}
		if site.Mode == rewrite.RenameOnly && site.NewName == "" {
			continue
		}
		if err := uow.RecordChange(ref.Document, site); err != nil {
			return fmt.Errorf("reference %s: %w", ref.Location(), err)
		}
		edits++
	}

	span.SetAttributes(attribute.Int("swallow.edits", edits))
	return nil
}

// mode picks the call-site rewrite for ref.
func (e *Engine) mode(c *Collected, ref domain.ReferenceLocation) rewrite.Mode {
	if !ref.Kind.IsInvocation() {
		return rewrite.RenameOnly
	}
	if ref.HasEnclosing() {
		if d, ok := c.Declaration(ref.Enclosing); ok {
			if d.Boundary {
				return rewrite.BlockingWait
			}
			return rewrite.Await
		}
	}
	if ref.Kind == domain.InvocationInAwaitableContext {
		return rewrite.Await
	}
	return rewrite.BlockingWait
}

func (e *Engine) newName(name string) string {
	if !e.opts.Rename || strings.HasSuffix(name, e.opts.Suffix) {
		return ""
	}
	return name + e.opts.Suffix
}
