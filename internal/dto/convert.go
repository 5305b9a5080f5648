package dto

import (
	"fmt"
	"strings"

	"github.com/aretw0/swallow/pkg/domain"
	"github.com/aretw0/swallow/pkg/syntax"
)

// ToFile builds the syntax tree of a manifest document.
func ToFile(d Document) (*syntax.File, error) {
	f := &syntax.File{Path: d.Path}
	for _, t := range d.Types {
		decl, err := toType(t)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.Path, err)
		}
		f.Types = append(f.Types, decl)
	}
	return f, nil
}

func toType(t Type) (*syntax.TypeDecl, error) {
	if t.Name == "" {
		return nil, fmt.Errorf("type without a name")
	}
	kind := domain.TypeKind(t.Kind)
	switch kind {
	case "":
		kind = domain.TypeKindClass
	case domain.TypeKindClass, domain.TypeKindInterface:
	default:
		return nil, fmt.Errorf("type %s: unknown kind %q", t.Name, t.Kind)
	}
	decl := &syntax.TypeDecl{
		Name:       t.Name,
		Kind:       kind,
		Base:       t.Base,
		Interfaces: t.Interfaces,
		Partial:    t.Partial,
	}
	for i, m := range t.Members {
		member, err := toMember(m, kind)
		if err != nil {
			return nil, fmt.Errorf("type %s member %d: %w", t.Name, i, err)
		}
		decl.Members = append(decl.Members, member)
	}
	return decl, nil
}

func toMember(m Member, kind domain.TypeKind) (syntax.Member, error) {
	switch {
	case m.Method != nil:
		md := m.Method
		result, err := ParseTypeRef(md.Returns)
		if err != nil {
			return nil, err
		}
		out := &syntax.MethodDecl{
			Modifiers: md.Modifiers,
			Result:    result,
			Name:      &syntax.Ident{Name: md.Name},
		}
		for _, p := range md.Params {
			pt, err := ParseTypeRef(p.Type)
			if err != nil {
				return nil, err
			}
			out.Params = append(out.Params, domain.Parameter{Name: p.Name, Type: pt})
		}
		if kind == domain.TypeKindInterface || md.Abstract {
			if len(md.Body) > 0 {
				return nil, fmt.Errorf("method %s: abstract signature with a body", md.Name)
			}
			return out, nil
		}
		if out.Body, err = toBlock(md.Body); err != nil {
			return nil, fmt.Errorf("method %s: %w", md.Name, err)
		}
		return out, nil
	case m.Property != nil:
		p := m.Property
		pt, err := ParseTypeRef(p.Type)
		if err != nil {
			return nil, err
		}
		getter, err := toBlock(p.Getter)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", p.Name, err)
		}
		return &syntax.PropertyDecl{Modifiers: p.Modifiers, Type: pt, Name: &syntax.Ident{Name: p.Name}, Getter: getter}, nil
	case m.Field != nil:
		fd := m.Field
		ft, err := ParseTypeRef(fd.Type)
		if err != nil {
			return nil, err
		}
		out := &syntax.FieldDecl{Modifiers: fd.Modifiers, Type: ft, Name: &syntax.Ident{Name: fd.Name}}
		if fd.Init != nil {
			if out.Init, err = toExpr(*fd.Init); err != nil {
				return nil, fmt.Errorf("field %s: %w", fd.Name, err)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("member must be a method, property or field")
	}
}

func toBlock(stmts []Stmt) (*syntax.Block, error) {
	b := &syntax.Block{}
	for i, s := range stmts {
		switch {
		case s.Call != nil:
			call, err := toCall(*s.Call)
			if err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
			b.Stmts = append(b.Stmts, &syntax.ExprStmt{X: call})
		case s.Return != nil:
			var x syntax.Expr
			if *s.Return != (Expr{}) {
				var err error
				if x, err = toExpr(*s.Return); err != nil {
					return nil, fmt.Errorf("statement %d: %w", i, err)
				}
			}
			b.Stmts = append(b.Stmts, &syntax.ReturnStmt{X: x})
		case s.Expr != nil:
			x, err := toExpr(*s.Expr)
			if err != nil {
				return nil, fmt.Errorf("statement %d: %w", i, err)
			}
			b.Stmts = append(b.Stmts, &syntax.ExprStmt{X: x})
		default:
			return nil, fmt.Errorf("statement %d is empty", i)
		}
	}
	return b, nil
}

func toExpr(e Expr) (syntax.Expr, error) {
	switch {
	case e.Call != nil:
		call, err := toCall(*e.Call)
		if err != nil {
			return nil, err
		}
		return call, nil
	case e.NameOf != "":
		return &syntax.NameOfExpr{X: ident(e.NameOf)}, nil
	case e.Ident != "":
		return ident(e.Ident), nil
	case e.Literal != "":
		return &syntax.Literal{Value: e.Literal}, nil
	case e.Await != nil:
		x, err := toExpr(*e.Await)
		if err != nil {
			return nil, err
		}
		return &syntax.AwaitExpr{X: x, Trivia: liftTrivia(x)}, nil
	case e.Wait != nil:
		x, err := toExpr(*e.Wait)
		if err != nil {
			return nil, err
		}
		return &syntax.BlockingWaitExpr{X: x, Trivia: liftTrivia(x)}, nil
	default:
		return nil, fmt.Errorf("empty expression")
	}
}

func toCall(c Call) (*syntax.CallExpr, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("call without a target")
	}
	call := &syntax.CallExpr{
		Fun:    ident(c.Target),
		Trivia: syntax.Trivia{Leading: c.Leading, Trailing: c.Trailing},
	}
	for i, a := range c.Args {
		x, err := toExpr(a)
		if err != nil {
			return nil, fmt.Errorf("call %s argument %d: %w", c.Target, i, err)
		}
		call.Args = append(call.Args, x)
	}
	return call, nil
}

// liftTrivia moves a wrapped call's trivia onto its wrapper.
func liftTrivia(x syntax.Expr) syntax.Trivia {
	call, ok := x.(*syntax.CallExpr)
	if !ok {
		return syntax.Trivia{}
	}
	t := call.Trivia
	call.Trivia = syntax.Trivia{}
	return t
}

func ident(text string) *syntax.Ident {
	if i := strings.LastIndex(text, "."); i >= 0 {
		return &syntax.Ident{Qualifier: text[:i], Name: text[i+1:]}
	}
	return &syntax.Ident{Name: text}
}

// FromFile is the inverse of ToFile.
func FromFile(f *syntax.File) Document {
	d := Document{Path: f.Path}
	for _, t := range f.Types {
		dt := Type{
			Name:       t.Name,
			Base:       t.Base,
			Interfaces: t.Interfaces,
			Partial:    t.Partial,
		}
		if t.Kind != domain.TypeKindClass {
			dt.Kind = string(t.Kind)
		}
		for _, m := range t.Members {
			dt.Members = append(dt.Members, fromMember(m, t.Kind))
		}
		d.Types = append(d.Types, dt)
	}
	return d
}

func fromMember(m syntax.Member, kind domain.TypeKind) Member {
	switch m := m.(type) {
	case *syntax.MethodDecl:
		out := &Method{Name: m.Name.Name, Modifiers: m.Modifiers}
		if !m.Result.IsVoid() {
			out.Returns = m.Result.String()
		}
		for _, p := range m.Params {
			out.Params = append(out.Params, Param{Name: p.Name, Type: p.Type.String()})
		}
		if m.Body == nil {
			out.Abstract = kind != domain.TypeKindInterface
		} else {
			out.Body = fromBlock(m.Body)
		}
		return Member{Method: out}
	case *syntax.PropertyDecl:
		out := &Property{Name: m.Name.Name, Type: m.Type.String(), Modifiers: m.Modifiers}
		if m.Getter != nil {
			out.Getter = fromBlock(m.Getter)
		}
		return Member{Property: out}
	case *syntax.FieldDecl:
		out := &Field{Name: m.Name.Name, Type: m.Type.String(), Modifiers: m.Modifiers}
		if m.Init != nil {
			x := fromExpr(m.Init)
			out.Init = &x
		}
		return Member{Field: out}
	}
	return Member{}
}

func fromBlock(b *syntax.Block) []Stmt {
	out := make([]Stmt, 0, len(b.Stmts))
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *syntax.ExprStmt:
			if call, ok := s.X.(*syntax.CallExpr); ok {
				c := fromCall(call)
				out = append(out, Stmt{Call: &c})
				continue
			}
			x := fromExpr(s.X)
			out = append(out, Stmt{Expr: &x})
		case *syntax.ReturnStmt:
			x := Expr{}
			if s.X != nil {
				x = fromExpr(s.X)
			}
			out = append(out, Stmt{Return: &x})
		}
	}
	return out
}

func fromExpr(e syntax.Expr) Expr {
	switch e := e.(type) {
	case *syntax.CallExpr:
		c := fromCall(e)
		return Expr{Call: &c}
	case *syntax.NameOfExpr:
		return Expr{NameOf: e.X.Text()}
	case *syntax.Ident:
		return Expr{Ident: e.Text()}
	case *syntax.Literal:
		return Expr{Literal: e.Value}
	case *syntax.AwaitExpr:
		x := fromExpr(e.X)
		// The manifest keeps trivia on the call; ToFile lifts it back.
		if x.Call != nil {
			x.Call.Leading = e.Trivia.Leading + x.Call.Leading
			x.Call.Trailing += e.Trivia.Trailing
		}
		return Expr{Await: &x}
	case *syntax.BlockingWaitExpr:
		x := fromExpr(e.X)
		if x.Call != nil {
			x.Call.Leading = e.Trivia.Leading + x.Call.Leading
			x.Call.Trailing += e.Trivia.Trailing
		}
		return Expr{Wait: &x}
	}
	return Expr{}
}

func fromCall(c *syntax.CallExpr) Call {
	out := Call{Target: c.Fun.Text(), Leading: c.Trivia.Leading, Trailing: c.Trivia.Trailing}
	for _, a := range c.Args {
		out.Args = append(out.Args, fromExpr(a))
	}
	return out
}
