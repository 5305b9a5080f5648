package workspace_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
	"github.com/aretw0/swallow/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// renameType is a minimal transformation used to observe application order.
type renameType struct {
	suffix string
	fail   error
}

func (r renameType) Name() string { return "rename-type" + r.suffix }

func (r renameType) Apply(_ context.Context, root *syntax.File) error {
	root.Types[0].Name += r.suffix
	return r.fail
}

func threeDocs(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New("mem://uow",
		workspace.ProjectSpec{Name: "Core", Documents: []*syntax.File{
			file("a.src", "A", "X"),
			file("b.src", "B", "Y"),
			file("c.src", "C", "Z"),
		}},
	)
	require.NoError(t, err)
	return ws
}

func TestUnitOfWork_AppliesInRegistrationOrder(t *testing.T) {
	ws := threeDocs(t)
	var events []string
	hooks := domain.LifecycleHooks{
		OnBeginDocument: func(_ context.Context, e *domain.DocumentEvent) {
			events = append(events, fmt.Sprintf("begin-doc %s (%d)", e.Document, e.Transformations))
		},
		OnFinishDocument: func(_ context.Context, e *domain.DocumentEvent) {
			events = append(events, "finish-doc "+string(e.Document))
		},
		OnBeginTransformation: func(_ context.Context, e *domain.TransformationEvent) {
			events = append(events, fmt.Sprintf("begin %s#%d", e.Transformation, e.Index))
		},
		OnFinishTransformation: func(_ context.Context, e *domain.TransformationEvent) {
			events = append(events, fmt.Sprintf("finish %s#%d", e.Transformation, e.Index))
		},
	}
	uow := workspace.NewUnitOfWork(ws, workspace.WithLifecycleHooks(hooks))

	// Recorded out of document order on purpose.
	require.NoError(t, uow.RecordChange("c.src", renameType{suffix: "1"}))
	require.NoError(t, uow.RecordChange("a.src", renameType{suffix: "1"}))
	require.NoError(t, uow.RecordChange("a.src", renameType{suffix: "2"}))

	assert.Equal(t, 2, uow.NumberOfDocuments())
	assert.Equal(t, 2, uow.NumberOfTransformations("a.src"))
	assert.Equal(t, 0, uow.NumberOfTransformations("b.src"))

	result, err := uow.Execute(context.Background())
	require.NoError(t, err)

	a, _ := result.Document("a.src")
	c, _ := result.Document("c.src")
	assert.Equal(t, "A12", a.Root.Types[0].Name)
	assert.Equal(t, "C1", c.Root.Types[0].Name)

	assert.Equal(t, []string{
		"begin-doc a.src (2)",
		"begin rename-type1#0",
		"finish rename-type1#0",
		"begin rename-type2#1",
		"finish rename-type2#1",
		"finish-doc a.src",
		"begin-doc c.src (1)",
		"begin rename-type1#0",
		"finish rename-type1#0",
		"finish-doc c.src",
	}, events, "b.src has no transformations and fires no events")

	orig, _ := ws.Document("a.src")
	assert.Equal(t, "A", orig.Root.Types[0].Name, "input snapshot is never mutated")
}

func TestUnitOfWork_ExecuteTwiceFails(t *testing.T) {
	ws := threeDocs(t)
	uow := workspace.NewUnitOfWork(ws)
	require.NoError(t, uow.RecordChange("a.src", renameType{suffix: "Async"}))

	first, err := uow.Execute(context.Background())
	require.NoError(t, err)

	second, err := uow.Execute(context.Background())
	assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)
	assert.Nil(t, second)

	doc, _ := uow.Workspace().Document("a.src")
	assert.Equal(t, "AAsync", doc.Root.Types[0].Name, "first execution's commit is unaffected")
	assert.Same(t, first, uow.Workspace())

	err = uow.RecordChange("b.src", renameType{suffix: "x"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExecuted)
}

func TestUnitOfWork_FailureKeepsDocumentAtomic(t *testing.T) {
	ws := threeDocs(t)
	boom := errors.New("boom")
	uow := workspace.NewUnitOfWork(ws)

	require.NoError(t, uow.RecordChange("a.src", renameType{suffix: "Ok"}))
	require.NoError(t, uow.RecordChange("b.src", renameType{suffix: "Partial"}))
	require.NoError(t, uow.RecordChange("b.src", renameType{suffix: "Broken", fail: boom}))
	require.NoError(t, uow.RecordChange("c.src", renameType{suffix: "Never"}))

	result, err := uow.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "b.src")

	a, _ := result.Document("a.src")
	b, _ := result.Document("b.src")
	c, _ := result.Document("c.src")
	assert.Equal(t, "AOk", a.Root.Types[0].Name, "earlier documents stay committed")
	assert.Equal(t, "B", b.Root.Types[0].Name, "failing document is not partially committed")
	assert.Equal(t, "C", c.Root.Types[0].Name, "later documents are not reached")
	assert.Same(t, result, uow.Workspace())
}

func TestUnitOfWork_RecordChangeUnknownDocument(t *testing.T) {
	uow := workspace.NewUnitOfWork(threeDocs(t))
	err := uow.RecordChange("nope.src", renameType{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnitOfWork_Cancellation(t *testing.T) {
	ws := threeDocs(t)
	uow := workspace.NewUnitOfWork(ws)
	require.NoError(t, uow.RecordChange("a.src", renameType{suffix: "1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := uow.Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	doc, _ := result.Document("a.src")
	assert.Equal(t, "A", doc.Root.Types[0].Name)
}

func TestUnitOfWork_HooksMayQueryProgress(t *testing.T) {
	ws := threeDocs(t)
	var seen []int
	var uow *workspace.UnitOfWork
	uow = workspace.NewUnitOfWork(ws, workspace.WithLifecycleHooks(domain.LifecycleHooks{
		OnBeginDocument: func(_ context.Context, e *domain.DocumentEvent) {
			seen = append(seen, uow.NumberOfTransformations(e.Document))
		},
	}))
	require.NoError(t, uow.RecordChange("b.src", renameType{suffix: "1"}))

	_, err := uow.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1}, seen)
	assert.NotEmpty(t, uow.ID())
}
