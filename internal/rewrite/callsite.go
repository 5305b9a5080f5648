package rewrite

import (
	"context"
	"fmt"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
)

// Mode selects how a call site is rewritten.
type Mode int

const (
	// RenameOnly renames the identifier and nothing else.
	RenameOnly Mode = iota
	// Await wraps the invocation in an await expression.
	Await
	// BlockingWait waits for the invocation's result synchronously.
	BlockingWait
)

// String returns the catalog name of the mode.
func (m Mode) String() string {
	switch m {
	case RenameOnly:
		return "rename-reference"
	case Await:
		return "await-call"
	case BlockingWait:
		return "blocking-wait"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// CallSite rewrites the reference whose identifier spans Span.
type CallSite struct {
	Span    domain.Span
	NewName string
	Mode    Mode
}

// Name returns the catalog name of the call-site mode.
func (c CallSite) Name() string { return c.Mode.String() }

// Apply rewrites the call whose identifier spans c.Span in root.
func (c CallSite) Apply(ctx context.Context, root *syntax.File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ident, ancestors, ok := syntax.FindIdent(root, c.Span)
	if !ok {
		return fmt.Errorf("no identifier at %s: %w", c.Span, domain.ErrUnsupportedShape)
	}
	if c.NewName != "" {
		ident.Name = c.NewName
	}
	if c.Mode == RenameOnly {
		return nil
	}

	call, ok := parent(ancestors).(*syntax.CallExpr)
	if !ok || call.Fun != ident {
		return fmt.Errorf("identifier %s at %s is not invoked: %w", ident.Text(), c.Span, domain.ErrUnsupportedShape)
	}
	switch outer := grandparent(ancestors).(type) {
	case *syntax.AwaitExpr:
		if outer.X == syntax.Expr(call) {
			return fmt.Errorf("call %s at %s is already awaited: %w", ident.Text(), c.Span, domain.ErrUnsupportedShape)
		}
	case *syntax.BlockingWaitExpr:
		if outer.X == syntax.Expr(call) {
			return fmt.Errorf("call %s at %s is already waited on: %w", ident.Text(), c.Span, domain.ErrUnsupportedShape)
		}
	}

	trivia := call.Trivia
	call.Trivia = syntax.Trivia{}
	var wrapper syntax.Expr
	if c.Mode == Await {
		wrapper = &syntax.AwaitExpr{X: call, Trivia: trivia}
	} else {
		wrapper = &syntax.BlockingWaitExpr{X: call, Trivia: trivia}
	}
	if !syntax.ReplaceExpr(root, call, wrapper) {
		return fmt.Errorf("call %s at %s cannot be replaced: %w", ident.Text(), c.Span, domain.ErrUnsupportedShape)
	}
	return nil
}

func parent(ancestors []syntax.Node) syntax.Node {
	if len(ancestors) == 0 {
		return nil
	}
	return ancestors[len(ancestors)-1]
}

func grandparent(ancestors []syntax.Node) syntax.Node {
	if len(ancestors) < 2 {
		return nil
	}
	return ancestors[len(ancestors)-2]
}
