package swallow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/swallow/internal/adapters/file"
	"github.com/aretw0/swallow/internal/adapters/memory"
	"github.com/aretw0/swallow/internal/asyncify"
	"github.com/aretw0/swallow/internal/catalog"
	"github.com/aretw0/swallow/internal/compiler"
	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/internal/presentation/diff"
	memlock "github.com/aretw0/swallow/pkg/adapters/memory"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/ports"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/aretw0/swallow/pkg/workspace"
	"go.opentelemetry.io/otel/trace"
)

// DefaultLockTTL bounds how long a commit may hold the workspace lock.
const DefaultLockTTL = 30 * time.Second

// Engine is the high-level entry point for the swallow library.
// It wires the code model, the project compiler, the propagation engine and
// the unit of work behind a simplified API.
type Engine struct {
	model       ports.CodeModel
	locator     string
	options     asyncify.Options
	mode        compiler.Mode
	maxParallel int
	locker      ports.Locker
	lockTTL     time.Duration
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	tracer      trace.Tracer
	Name        string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithCodeModel injects a custom provider, bypassing the default manifest
// backed model.
func WithCodeModel(model ports.CodeModel) Option {
	return func(e *Engine) {
		e.model = model
	}
}

// WithLifecycleHooks registers observability hooks on every unit of work.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer records propagation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithAsyncifyOptions sets the propagation options.
func WithAsyncifyOptions(opts asyncify.Options) Option {
	return func(e *Engine) {
		e.options = opts
	}
}

// WithCompileMode selects how projects are compiled before propagation.
func WithCompileMode(mode compiler.Mode, maxParallel int) Option {
	return func(e *Engine) {
		e.mode = mode
		e.maxParallel = maxParallel
	}
}

// WithLocker serializes commits of the same workspace. The default is an
// in-process locker.
func WithLocker(locker ports.Locker, ttl time.Duration) Option {
	return func(e *Engine) {
		e.locker = locker
		e.lockTTL = ttl
	}
}

// New initializes a new Engine for the workspace at locator.
// By default, locator is a manifest path read and written by the file store.
func New(locator string, opts ...Option) (*Engine, error) {
	if locator == "" {
		return nil, fmt.Errorf("workspace locator is required")
	}
	eng := &Engine{
		locator: locator,
		options: asyncify.DefaultOptions(),
		mode:    compiler.ModeSequential,
		lockTTL: DefaultLockTTL,
		Name:    filepath.Base(locator),
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.locker == nil {
		eng.locker = memlock.NewLocker()
	}
	eng.logger = eng.logger.With("workspace", eng.Name)

	if eng.model == nil {
		eng.model = memory.New(
			memory.WithStore(file.New("")),
			memory.WithLogger(eng.logger),
		)
	}
	return eng, nil
}

// Model returns the code model used by the engine.
func (e *Engine) Model() ports.CodeModel { return e.model }

// Options returns the propagation options.
func (e *Engine) Options() asyncify.Options { return e.options }

// Open loads the workspace snapshot.
func (e *Engine) Open(ctx context.Context) (*workspace.Workspace, error) {
	return e.model.OpenWorkspace(ctx, e.locator)
}

// Compile builds every project in dependency order and returns the
// completion order.
func (e *Engine) Compile(ctx context.Context, ws *workspace.Workspace) ([]domain.ProjectID, error) {
	c := compiler.New(e.model,
		compiler.WithMaxParallel(e.maxParallel),
		compiler.WithLogger(e.logger),
	)
	return c.Run(ctx, ws, e.mode)
}

// NewUnitOfWork creates a unit of work carrying the engine's hooks.
func (e *Engine) NewUnitOfWork(ws *workspace.Workspace) *workspace.UnitOfWork {
	return workspace.NewUnitOfWork(ws,
		workspace.WithLifecycleHooks(e.hooks),
		workspace.WithLogger(e.logger),
	)
}

// Result is the outcome of one planned and executed change.
type Result struct {
	Before *workspace.Workspace
	After  *workspace.Workspace
	// Collected is set by Asyncify.
	Collected *asyncify.Collected
	Changed   []domain.DocumentID
}

// Diff returns an uncolored unified diff of every changed document.
func (r *Result) Diff() (string, error) {
	var b strings.Builder
	out := diff.NewRenderer(&b, diff.WithColor(false))
	for _, id := range r.Changed {
		after, _ := r.After.Document(id)
		var before string
		if doc, ok := r.Before.Document(id); ok {
			before = doc.Text
		}
		if _, err := out.Document(after.Path, before, after.Text); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func newResult(before, after *workspace.Workspace) *Result {
	r := &Result{Before: before, After: after}
	for _, id := range after.Documents() {
		a, _ := after.Document(id)
		b, ok := before.Document(id)
		if !ok || a.Text != b.Text {
			r.Changed = append(r.Changed, id)
		}
	}
	return r
}

func (e *Engine) execute(ctx context.Context, ws *workspace.Workspace, uow *workspace.UnitOfWork) (*Result, error) {
	after, err := uow.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return newResult(ws, after), nil
}

// Locate resolves descriptor ("Type.Name") to a function. A non-empty project
// requires one of its declarations to live in that project.
func (e *Engine) Locate(ctx context.Context, ws *workspace.Workspace, project, descriptor string) (domain.FunctionID, error) {
	id, err := e.model.FindFunction(ctx, ws, descriptor)
	if err != nil || project == "" {
		return id, err
	}
	if _, ok := ws.Project(domain.ProjectID(project)); !ok {
		return "", fmt.Errorf("project %q: %w", project, domain.ErrNotFound)
	}
	info, err := e.model.Function(ctx, ws, id)
	if err != nil {
		return "", err
	}
	for _, loc := range info.Declarations {
		if p, ok := ws.ProjectOf(loc.Document); ok && p.Name == project {
			return id, nil
		}
	}
	return "", fmt.Errorf("%s in project %q: %w", descriptor, project, domain.ErrNotFound)
}

// Asyncify compiles ws, propagates asynchrony from the function named by
// descriptor and executes the resulting edits. See Locate for project.
func (e *Engine) Asyncify(ctx context.Context, ws *workspace.Workspace, project, descriptor string) (*Result, error) {
	id, err := e.Locate(ctx, ws, project, descriptor)
	if err != nil {
		return nil, err
	}
	if _, err := e.Compile(ctx, ws); err != nil {
		return nil, err
	}

	opts := []asyncify.Option{asyncify.WithOptions(e.options), asyncify.WithLogger(e.logger)}
	if e.tracer != nil {
		opts = append(opts, asyncify.WithTracer(e.tracer))
	}
	uow := e.NewUnitOfWork(ws)
	collected, err := asyncify.New(e.model, opts...).Asyncify(ctx, ws, id, uow)
	if err != nil {
		return nil, err
	}
	res, err := e.execute(ctx, ws, uow)
	if err != nil {
		return nil, err
	}
	res.Collected = collected
	e.logger.Info("asyncify finished",
		"seed", id,
		"declarations", len(collected.Declarations),
		"references", len(collected.References),
		"documents", len(res.Changed),
	)
	return res, nil
}

// Run applies the symbol transformation name to the function named by
// descriptor. See Locate for project.
func (e *Engine) Run(ctx context.Context, ws *workspace.Workspace, name, project, descriptor string, args []string) (*Result, error) {
	symbols, err := catalog.Symbols()
	if err != nil {
		return nil, err
	}
	t, err := symbols.Create(name, args)
	if err != nil {
		return nil, err
	}
	id, err := e.Locate(ctx, ws, project, descriptor)
	if err != nil {
		return nil, err
	}
	uow := e.NewUnitOfWork(ws)
	env := catalog.Env{Model: e.model, Options: e.options, Logger: e.logger, Tracer: e.tracer}
	if err := t.Plan(ctx, env, ws, id, uow); err != nil {
		return nil, err
	}
	return e.execute(ctx, ws, uow)
}

// Edit applies the document transformation name to the document at path.
func (e *Engine) Edit(ctx context.Context, ws *workspace.Workspace, path, name string, args []string) (*Result, error) {
	docs, err := catalog.Documents()
	if err != nil {
		return nil, err
	}
	t, err := docs.Create(name, args)
	if err != nil {
		return nil, err
	}
	uow := e.NewUnitOfWork(ws)
	if err := uow.RecordChange(domain.DocumentID(path), t); err != nil {
		return nil, err
	}
	return e.execute(ctx, ws, uow)
}

// Functions lists the functions declared in the document at path, filtered
// by the named filter. An empty filter lists everything.
func (e *Engine) Functions(ctx context.Context, ws *workspace.Workspace, path, filter string, args []string) ([]domain.FunctionInfo, error) {
	var f catalog.Filter
	if filter != "" {
		filters, err := catalog.Filters()
		if err != nil {
			return nil, err
		}
		if f, err = filters.Create(filter, args); err != nil {
			return nil, err
		}
	}

	id := domain.DocumentID(path)
	doc, ok := ws.Document(id)
	if !ok {
		return nil, fmt.Errorf("document %q: %w", path, domain.ErrNotFound)
	}
	var infos []domain.FunctionInfo
	seen := make(map[domain.FunctionID]bool)
	for _, ref := range syntax.Methods(doc.Root) {
		fid, ok, err := e.model.DeclaredSymbol(ctx, ws, id, ref.Method)
		if err != nil {
			return nil, err
		}
		if !ok || seen[fid] {
			continue
		}
		seen[fid] = true
		info, err := e.model.Function(ctx, ws, fid)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return catalog.Select(f, infos), nil
}

// Commit persists ws while holding the workspace lock.
func (e *Engine) Commit(ctx context.Context, ws *workspace.Workspace) (changed bool, err error) {
	unlock, err := e.locker.Lock(ctx, e.locator, e.lockTTL)
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", e.locator, err)
	}
	defer func() {
		if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil && err == nil {
			err = uerr
		}
	}()
	return e.model.Commit(ctx, ws)
}
