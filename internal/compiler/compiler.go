package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/workspace"
	"golang.org/x/sync/errgroup"
)

// Builder compiles one project of a workspace snapshot.
type Builder interface {
	Compile(ctx context.Context, ws *workspace.Workspace, project domain.ProjectID) error
}

// Mode selects the scheduling strategy.
type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// ParseMode accepts "sequential" or "parallel", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeSequential, ModeParallel:
		return m, nil
	case "":
		return ModeSequential, nil
	default:
		return "", fmt.Errorf("compile mode %q: %w", s, domain.ErrNotFound)
	}
}

// Compiler compiles the projects of a workspace in dependency order.
type Compiler struct {
	builder     Builder
	maxParallel int
	logger      *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithMaxParallel bounds concurrent compilations. Zero or less means
// GOMAXPROCS.
func WithMaxParallel(n int) Option {
	return func(c *Compiler) {
		c.maxParallel = n
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a compiler backed by builder.
func New(builder Builder, opts ...Option) *Compiler {
	c := &Compiler{builder: builder, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run compiles ws with the selected mode and returns projects in the order
// they completed.
func (c *Compiler) Run(ctx context.Context, ws *workspace.Workspace, mode Mode) ([]domain.ProjectID, error) {
	switch mode {
	case ModeParallel:
		return c.Parallel(ctx, ws)
	case ModeSequential, "":
		return c.Sequential(ctx, ws)
	default:
		return nil, fmt.Errorf("compile mode %q: %w", mode, domain.ErrNotFound)
	}
}

// Sequential compiles one project at a time in topological order.
func (c *Compiler) Sequential(ctx context.Context, ws *workspace.Workspace) ([]domain.ProjectID, error) {
	order, err := Order(ws)
	if err != nil {
		return nil, err
	}
	done := make([]domain.ProjectID, 0, len(order))
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := c.compile(ctx, ws, id); err != nil {
			return done, err
		}
		done = append(done, id)
	}
	return done, nil
}

type projectState int

const (
	notStarted projectState = iota
	working
	completed
)

type outcome struct {
	id  int
	err error
}

// Parallel starts every project whose dependencies have completed, up to
// the parallelism bound, and waits for any of them to finish before looking
// for newly ready projects. The first failure cancels the rest.
func (c *Compiler) Parallel(ctx context.Context, ws *workspace.Workspace) ([]domain.ProjectID, error) {
	g, err := buildGraph(ws)
	if err != nil {
		return nil, err
	}
	if _, err := g.toposort(); err != nil {
		return nil, err
	}

	limit := c.maxParallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	total := len(g.ids)
	if total == 0 {
		return nil, ctx.Err()
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(min(limit, total))

	// Owned by this goroutine only; workers report through done.
	state := make([]projectState, total)
	done := make(chan outcome, total)
	finished := make([]domain.ProjectID, 0, total)

	ready := func(i int) bool {
		if state[i] != notStarted {
			return false
		}
		for _, d := range g.deps[i] {
			if state[d] != completed {
				return false
			}
		}
		return true
	}

schedule:
	for len(finished) < total {
		if gctx.Err() != nil {
			break
		}
		for i := range g.ids {
			if !ready(i) {
				continue
			}
			state[i] = working
			eg.Go(func() error {
				err := c.compile(gctx, ws, g.ids[i])
				done <- outcome{id: i, err: err}
				return err
			})
		}

		select {
		case o := <-done:
			if o.err != nil {
				break schedule
			}
			state[o.id] = completed
			finished = append(finished, g.ids[o.id])
		case <-gctx.Done():
			break schedule
		}
	}

	if err := eg.Wait(); err != nil {
		return finished, err
	}
	if len(finished) < total {
		return finished, ctx.Err()
	}
	return finished, nil
}

func (c *Compiler) compile(ctx context.Context, ws *workspace.Workspace, id domain.ProjectID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.logger.Debug("compiling project", "project", id)
	if err := c.builder.Compile(ctx, ws, id); err != nil {
		return fmt.Errorf("compile %s: %w", id, err)
	}
	return nil
}
