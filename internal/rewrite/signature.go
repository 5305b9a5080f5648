package rewrite

import (
	"context"
	"fmt"
	"slices"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
)

// DefaultTaskType is the envelope used when SignatureWrap.TaskType is empty.
const DefaultTaskType = "Task"

// SignatureWrap turns the method declared at Target into its asynchronous
// form. When Method is set it selects the target by "Name" or "Type.Name"
// instead, and must match exactly one method.
type SignatureWrap struct {
	Target domain.Span
	Method string
	// Async adds the async marker. Declarations without a body (partial or
	// abstract signatures) only have their result wrapped.
	Async bool
	// TaskType is the envelope: void becomes TaskType, T becomes TaskType<T>.
	TaskType string
	// AwaitableTypes are result types left unwrapped.
	AwaitableTypes []string
	// NewName renames the declaration when non-empty.
	NewName string
}

// Name implements workspace.Transformation.
func (s SignatureWrap) Name() string { return "wrap-signature" }

// Apply rewrites the signature of the targeted method in root.
func (s SignatureWrap) Apply(ctx context.Context, root *syntax.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var m *syntax.MethodDecl
	var err error
	if s.Method != "" {
		m, err = methodNamed(root, s.Method)
	} else {
		m, err = methodAt(root, s.Target)
	}
	if err != nil {
		return err
	}
	if s.Async && m.Body != nil {
		m.AddModifier(syntax.AsyncModifier)
	}
	m.Result = WrapResult(m.Result, s.TaskType, s.AwaitableTypes)
	if s.NewName != "" {
		m.Name.Name = s.NewName
	}
	return nil
}

func methodAt(root *syntax.File, span domain.Span) (*syntax.MethodDecl, error) {
	member, _, ok := syntax.FindMember(root, span)
	if !ok {
		return nil, fmt.Errorf("no declaration at %s: %w", span, domain.ErrNotFound)
	}
	m, ok := member.(*syntax.MethodDecl)
	if !ok {
		return nil, fmt.Errorf("declaration at %s is not a method: %w", span, domain.ErrUnsupportedShape)
	}
	return m, nil
}

func methodNamed(root *syntax.File, name string) (*syntax.MethodDecl, error) {
	var found []*syntax.MethodDecl
	for _, ref := range syntax.Methods(root) {
		if matches(ref, []string{name}) {
			found = append(found, ref.Method)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("method %s: %w", name, domain.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("method %s matches %d declarations: %w", name, len(found), domain.ErrUnsupportedShape)
	}
}

func matches(ref syntax.MethodRef, targets []string) bool {
	return slices.Contains(targets, ref.Method.Name.Name) ||
		slices.Contains(targets, ref.Type.Name+"."+ref.Method.Name.Name)
}

// Rename renames the method declared at Target.
type Rename struct {
	Target  domain.Span
	NewName string
}

// Name implements workspace.Transformation.
func (Rename) Name() string { return "rename-declaration" }

// Apply renames the method declared at r.Target.
func (r Rename) Apply(ctx context.Context, root *syntax.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := methodAt(root, r.Target)
	if err != nil {
		return err
	}
	m.Name.Name = r.NewName
	return nil
}

// WrapResult returns the task-shaped form of result. Results already named by
// one of awaitable are returned unchanged.
func WrapResult(result domain.TypeRef, taskType string, awaitable []string) domain.TypeRef {
	if taskType == "" {
		taskType = DefaultTaskType
	}
	if result.Name == taskType || slices.Contains(awaitable, result.Name) {
		return result
	}
	if result.IsVoid() {
		return domain.TypeRef{Name: taskType}
	}
	return domain.TypeRef{Name: taskType, Args: []domain.TypeRef{result}}
}

// MarkAsync adds the async marker to every method named by Targets, either
// as "Name" or "Type.Name".
type MarkAsync struct {
	Targets []string
}

// Name implements workspace.Transformation.
func (MarkAsync) Name() string { return "mark-async" }

// Apply adds the async marker to every target method in root.
func (a MarkAsync) Apply(ctx context.Context, root *syntax.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	marked := 0
	for _, ref := range syntax.Methods(root) {
		if !matches(ref, a.Targets) {
			continue
		}
		if ref.Method.Body == nil {
			return fmt.Errorf("method %s.%s has no body to mark async: %w", ref.Type.Name, ref.Method.Name.Name, domain.ErrUnsupportedShape)
		}
		ref.Method.AddModifier(syntax.AsyncModifier)
		marked++
	}
	if marked == 0 {
		return fmt.Errorf("methods %v: %w", a.Targets, domain.ErrNotFound)
	}
	return nil
}
