package syntax

import "github.com/aretw0/swallow/pkg/domain"

// Inspect traverses f in depth-first order. fn receives each node together
// with its ancestors (outermost first); returning false skips the node's
// children.
func Inspect(f *File, fn func(n Node, ancestors []Node) bool) {
	w := &inspector{fn: fn}
	w.visit(f, func() {
		for _, t := range f.Types {
			w.typeDecl(t)
		}
	})
}

type inspector struct {
	fn    func(Node, []Node) bool
	stack []Node
}

func (w *inspector) visit(n Node, children func()) {
	if !w.fn(n, w.stack) {
		return
	}
	if children == nil {
		return
	}
	w.stack = append(w.stack, n)
	children()
	w.stack = w.stack[:len(w.stack)-1]
}

func (w *inspector) typeDecl(t *TypeDecl) {
	w.visit(t, func() {
		for _, m := range t.Members {
			w.member(m)
		}
	})
}

func (w *inspector) member(m Member) {
	w.visit(m, func() {
		if name := m.MemberName(); name != nil {
			w.visit(name, nil)
		}
		switch m := m.(type) {
		case *MethodDecl:
			w.block(m.Body)
		case *PropertyDecl:
			w.block(m.Getter)
		case *FieldDecl:
			w.expr(m.Init)
		}
	})
}

func (w *inspector) block(b *Block) {
	if b == nil {
		return
	}
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *ExprStmt:
			w.expr(s.X)
		case *ReturnStmt:
			w.expr(s.X)
		}
	}
}

func (w *inspector) expr(e Expr) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *CallExpr:
		w.visit(e, func() {
			w.visit(e.Fun, nil)
			for _, a := range e.Args {
				w.expr(a)
			}
		})
	case *NameOfExpr:
		w.visit(e, func() { w.visit(e.X, nil) })
	case *AwaitExpr:
		w.visit(e, func() { w.expr(e.X) })
	case *BlockingWaitExpr:
		w.visit(e, func() { w.expr(e.X) })
	default:
		w.visit(e, nil)
	}
}

// ReplaceExpr swaps the first slot holding old for repl. It reports whether a
// slot was found.
func ReplaceExpr(f *File, old, repl Expr) bool {
	found := false
	eachSlot(f, func(slot *Expr) bool {
		if *slot == old {
			*slot = repl
			found = true
			return false
		}
		return true
	})
	return found
}

// eachSlot calls fn with a pointer to every expression slot in pre-order and
// stops when fn returns false.
func eachSlot(f *File, fn func(*Expr) bool) {
	var walk func(slot *Expr) bool
	walk = func(slot *Expr) bool {
		if *slot == nil {
			return true
		}
		if !fn(slot) {
			return false
		}
		switch e := (*slot).(type) {
		case *CallExpr:
			for i := range e.Args {
				if !walk(&e.Args[i]) {
					return false
				}
			}
		case *AwaitExpr:
			return walk(&e.X)
		case *BlockingWaitExpr:
			return walk(&e.X)
		}
		return true
	}
	blockSlots := func(b *Block) bool {
		if b == nil {
			return true
		}
		for _, s := range b.Stmts {
			switch s := s.(type) {
			case *ExprStmt:
				if !walk(&s.X) {
					return false
				}
			case *ReturnStmt:
				if !walk(&s.X) {
					return false
				}
			}
		}
		return true
	}
	for _, t := range f.Types {
		for _, m := range t.Members {
			var ok bool
			switch m := m.(type) {
			case *MethodDecl:
				ok = blockSlots(m.Body)
			case *PropertyDecl:
				ok = blockSlots(m.Getter)
			case *FieldDecl:
				ok = walk(&m.Init)
			}
			if !ok {
				return
			}
		}
	}
}

// FindMember returns the member whose span equals span, with its type.
func FindMember(f *File, span domain.Span) (Member, *TypeDecl, bool) {
	for _, t := range f.Types {
		for _, m := range t.Members {
			if m.NodeSpan() == span {
				return m, t, true
			}
		}
	}
	return nil, nil, false
}

// EnclosingMember returns the innermost member whose span contains pos.
func EnclosingMember(f *File, pos domain.Position) (Member, *TypeDecl, bool) {
	for _, t := range f.Types {
		if !t.Span.Contains(pos) {
			continue
		}
		for _, m := range t.Members {
			if m.NodeSpan().Contains(pos) {
				return m, t, true
			}
		}
	}
	return nil, nil, false
}

// FindIdent returns the identifier whose span equals span and its ancestors.
func FindIdent(f *File, span domain.Span) (*Ident, []Node, bool) {
	var (
		found *Ident
		path  []Node
	)
	Inspect(f, func(n Node, ancestors []Node) bool {
		if found != nil {
			return false
		}
		if id, ok := n.(*Ident); ok && id.Span == span {
			found = id
			path = append([]Node(nil), ancestors...)
			return false
		}
		return n.NodeSpan().IsZero() || n.NodeSpan().Encloses(span)
	})
	return found, path, found != nil
}

// Methods returns every method in f with its containing type.
func Methods(f *File) []MethodRef {
	var out []MethodRef
	for _, t := range f.Types {
		for _, m := range t.Members {
			if md, ok := m.(*MethodDecl); ok {
				out = append(out, MethodRef{Type: t, Method: md})
			}
		}
	}
	return out
}

// MethodRef pairs a method with the type that declares it.
type MethodRef struct {
	Type   *TypeDecl
	Method *MethodDecl
}
