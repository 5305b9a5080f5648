package syntax

import (
	"slices"

	"github.com/aretw0/swallow/pkg/domain"
)

// Clone returns a deep copy of f. Spans are copied unchanged.
func Clone(f *File) *File {
	if f == nil {
		return nil
	}
	out := &File{Path: f.Path, Types: make([]*TypeDecl, len(f.Types))}
	for i, t := range f.Types {
		out.Types[i] = cloneType(t)
	}
	return out
}

func cloneType(t *TypeDecl) *TypeDecl {
	c := *t
	c.Interfaces = slices.Clone(t.Interfaces)
	c.Members = make([]Member, len(t.Members))
	for i, m := range t.Members {
		c.Members[i] = cloneMember(m)
	}
	return &c
}

func cloneMember(m Member) Member {
	switch m := m.(type) {
	case *MethodDecl:
		c := *m
		c.Modifiers = slices.Clone(m.Modifiers)
		c.Result = cloneTypeRef(m.Result)
		c.Name = cloneIdent(m.Name)
		c.Params = make([]domain.Parameter, len(m.Params))
		for i, p := range m.Params {
			c.Params[i] = domain.Parameter{Name: p.Name, Type: cloneTypeRef(p.Type)}
		}
		c.Body = cloneBlock(m.Body)
		return &c
	case *PropertyDecl:
		c := *m
		c.Modifiers = slices.Clone(m.Modifiers)
		c.Type = cloneTypeRef(m.Type)
		c.Name = cloneIdent(m.Name)
		c.Getter = cloneBlock(m.Getter)
		return &c
	case *FieldDecl:
		c := *m
		c.Modifiers = slices.Clone(m.Modifiers)
		c.Type = cloneTypeRef(m.Type)
		c.Name = cloneIdent(m.Name)
		c.Init = CloneExpr(m.Init)
		return &c
	}
	return m
}

func cloneTypeRef(t domain.TypeRef) domain.TypeRef {
	c := domain.TypeRef{Name: t.Name}
	if len(t.Args) > 0 {
		c.Args = make([]domain.TypeRef, len(t.Args))
		for i, a := range t.Args {
			c.Args[i] = cloneTypeRef(a)
		}
	}
	return c
}

func cloneIdent(id *Ident) *Ident {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func cloneBlock(b *Block) *Block {
	if b == nil {
		return nil
	}
	c := &Block{Stmts: make([]Stmt, len(b.Stmts))}
	for i, s := range b.Stmts {
		switch s := s.(type) {
		case *ExprStmt:
			c.Stmts[i] = &ExprStmt{X: CloneExpr(s.X)}
		case *ReturnStmt:
			c.Stmts[i] = &ReturnStmt{X: CloneExpr(s.X)}
		}
	}
	return c
}

// CloneExpr returns a deep copy of e.
func CloneExpr(e Expr) Expr {
	switch e := e.(type) {
	case nil:
		return nil
	case *Ident:
		return cloneIdent(e)
	case *Literal:
		c := *e
		return &c
	case *CallExpr:
		c := *e
		c.Fun = cloneIdent(e.Fun)
		c.Args = make([]Expr, len(e.Args))
		for i, a := range e.Args {
			c.Args[i] = CloneExpr(a)
		}
		return &c
	case *NameOfExpr:
		c := *e
		c.X = cloneIdent(e.X)
		return &c
	case *AwaitExpr:
		c := *e
		c.X = CloneExpr(e.X)
		return &c
	case *BlockingWaitExpr:
		c := *e
		c.X = CloneExpr(e.X)
		return &c
	}
	return e
}
