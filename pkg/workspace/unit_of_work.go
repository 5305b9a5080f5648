package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/swallow/internal/logging"
	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/google/uuid"
)

// Transformation is a single edit applied to a document's syntax tree.
// Apply receives an editable copy; returning an error discards the copy.
type Transformation interface {
	Name() string
	Apply(ctx context.Context, root *syntax.File) error
}

type unitState int

const (
	stateNotStarted unitState = iota
	stateExecuted
)

// UnitOfWork stages transformations per document and applies them once.
type UnitOfWork struct {
	id      string
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	mu      sync.Mutex
	state   unitState
	ws      *Workspace
	pending map[domain.DocumentID][]Transformation
}

// Option configures a UnitOfWork.
type Option func(*UnitOfWork)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(u *UnitOfWork) {
		u.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(u *UnitOfWork) {
		u.logger = logger
	}
}

// NewUnitOfWork creates an empty unit of work over ws.
func NewUnitOfWork(ws *Workspace, opts ...Option) *UnitOfWork {
	u := &UnitOfWork{
		id:      uuid.NewString(),
		logger:  logging.NewNop(),
		ws:      ws,
		pending: make(map[domain.DocumentID][]Transformation),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ID identifies the unit of work in events and logs.
func (u *UnitOfWork) ID() string { return u.id }

// RecordChange appends t to the document's transformation list. Insertion
// order is application order.
func (u *UnitOfWork) RecordChange(id domain.DocumentID, t Transformation) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.state != stateNotStarted {
		return domain.ErrAlreadyExecuted
	}
	if _, ok := u.ws.Document(id); !ok {
		return fmt.Errorf("document %q: %w", id, domain.ErrNotFound)
	}
	u.pending[id] = append(u.pending[id], t)
	return nil
}

// NumberOfDocuments returns how many documents have pending transformations.
func (u *UnitOfWork) NumberOfDocuments() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending)
}

// NumberOfTransformations returns the pending count for one document.
func (u *UnitOfWork) NumberOfTransformations(id domain.DocumentID) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.pending[id])
}

// Workspace returns the current snapshot: the original before Execute, the
// result (possibly partial, on failure) afterwards.
func (u *UnitOfWork) Workspace() *Workspace {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.ws
}

// Execute applies every pending transformation and returns the resulting
// snapshot. It may run only once; later calls return domain.ErrAlreadyExecuted.
//
// Documents are processed in workspace order. A failing transformation stops
// execution: its document keeps its previous root, documents replaced before
// it stay replaced, and the returned snapshot reflects exactly that.
func (u *UnitOfWork) Execute(ctx context.Context) (*Workspace, error) {
	u.mu.Lock()
	if u.state != stateNotStarted {
		u.mu.Unlock()
		return nil, domain.ErrAlreadyExecuted
	}
	u.state = stateExecuted
	current := u.ws
	pending := u.pending
	u.mu.Unlock()

	// Hooks run without the lock held so they may query progress.
	for _, id := range current.Documents() {
		transformations := pending[id]
		if len(transformations) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return current, fmt.Errorf("execute cancelled before %s: %w", id, err)
		}
		next, err := u.executeDocument(ctx, current, id, transformations)
		if err != nil {
			return current, err
		}
		current = next

		u.mu.Lock()
		u.ws = current
		u.mu.Unlock()
	}
	return current, nil
}

func (u *UnitOfWork) executeDocument(ctx context.Context, ws *Workspace, id domain.DocumentID, transformations []Transformation) (*Workspace, error) {
	doc, _ := ws.Document(id)
	docEvent := &domain.DocumentEvent{
		EventBase:       u.base(domain.EventBeginDocument),
		Document:        id,
		Path:            doc.Path,
		Transformations: len(transformations),
	}
	if u.hooks.OnBeginDocument != nil {
		u.hooks.OnBeginDocument(ctx, docEvent)
	}

	root := doc.Root
	for i, t := range transformations {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("execute cancelled in %s: %w", id, err)
		}
		event := &domain.TransformationEvent{
			EventBase:      u.base(domain.EventBeginTransformation),
			Document:       id,
			Transformation: t.Name(),
			Index:          i,
		}
		if u.hooks.OnBeginTransformation != nil {
			u.hooks.OnBeginTransformation(ctx, event)
		}

		start := time.Now()
		view := syntax.Clone(root)
		err := t.Apply(ctx, view)

		finish := &domain.TransformationEvent{
			EventBase:      u.base(domain.EventFinishTransformation),
			Document:       id,
			Transformation: t.Name(),
			Index:          i,
			Duration:       time.Since(start),
			Err:            err,
		}
		if u.hooks.OnFinishTransformation != nil {
			u.hooks.OnFinishTransformation(ctx, finish)
		}
		if err != nil {
			u.logger.Warn("transformation failed, document left unchanged",
				"unit_id", u.id,
				"document", id,
				"transformation", t.Name(),
				"err", err,
			)
			return nil, fmt.Errorf("document %s: transformation %d (%s): %w", id, i, t.Name(), err)
		}
		root = view
	}

	next, err := ws.WithDocumentRoot(id, root)
	if err != nil {
		return nil, err
	}

	done := *docEvent
	done.EventBase = u.base(domain.EventFinishDocument)
	if u.hooks.OnFinishDocument != nil {
		u.hooks.OnFinishDocument(ctx, &done)
	}
	u.logger.Debug("document committed", "unit_id", u.id, "document", id, "transformations", len(transformations))
	return next, nil
}

func (u *UnitOfWork) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, UnitID: u.id}
}
