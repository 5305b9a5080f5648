package syntax

import (
	"strings"

	"github.com/aretw0/swallow/pkg/domain"
)

const indentUnit = "    "

// Format renders f and assigns the span of every node to its byte range in
// the returned text. Rendering is deterministic: the same tree always
// produces the same text.
func Format(f *File) string {
	p := &printer{}
	for i, t := range f.Types {
		if i > 0 {
			p.b.WriteString("\n")
		}
		p.typeDecl(t)
	}
	return p.b.String()
}

type printer struct {
	b strings.Builder
}

func (p *printer) pos() int { return p.b.Len() }

func (p *printer) write(parts ...string) {
	for _, s := range parts {
		p.b.WriteString(s)
	}
}

func (p *printer) typeDecl(t *TypeDecl) {
	start := p.pos()
	if t.Partial {
		p.write("partial ")
	}
	kind := t.Kind
	if kind == "" {
		kind = domain.TypeKindClass
	}
	p.write(string(kind), " ", t.Name)
	supers := make([]string, 0, 1+len(t.Interfaces))
	if t.Base != "" {
		supers = append(supers, t.Base)
	}
	supers = append(supers, t.Interfaces...)
	if len(supers) > 0 {
		p.write(" : ", strings.Join(supers, ", "))
	}
	p.write(" {\n")
	for _, m := range t.Members {
		p.member(m)
	}
	p.write("}")
	t.Span = domain.Span{Start: start, End: p.pos()}
	p.write("\n")
}

func (p *printer) modifiers(mods []string) {
	for _, m := range mods {
		p.write(m, " ")
	}
}

func (p *printer) member(m Member) {
	p.write(indentUnit)
	start := p.pos()
	switch m := m.(type) {
	case *MethodDecl:
		p.modifiers(m.Modifiers)
		p.write(m.Result.String(), " ")
		p.ident(m.Name)
		p.write("(")
		for i, param := range m.Params {
			if i > 0 {
				p.write(", ")
			}
			p.write(param.Type.String(), " ", param.Name)
		}
		p.write(")")
		if m.Body == nil {
			p.write(";")
		} else {
			p.write(" ")
			p.block(m.Body, 1)
		}
		m.Span = domain.Span{Start: start, End: p.pos()}
	case *PropertyDecl:
		p.modifiers(m.Modifiers)
		p.write(m.Type.String(), " ")
		p.ident(m.Name)
		p.write(" {\n", strings.Repeat(indentUnit, 2), "get ")
		getter := m.Getter
		if getter == nil {
			getter = &Block{}
		}
		p.block(getter, 2)
		p.write("\n", indentUnit, "}")
		m.Span = domain.Span{Start: start, End: p.pos()}
	case *FieldDecl:
		p.modifiers(m.Modifiers)
		p.write(m.Type.String(), " ")
		p.ident(m.Name)
		if m.Init != nil {
			p.write(" = ")
			p.expr(m.Init)
		}
		p.write(";")
		m.Span = domain.Span{Start: start, End: p.pos()}
	}
	p.write("\n")
}

func (p *printer) block(b *Block, depth int) {
	p.write("{\n")
	inner := strings.Repeat(indentUnit, depth+1)
	for _, s := range b.Stmts {
		p.write(inner)
		switch s := s.(type) {
		case *ExprStmt:
			p.expr(s.X)
		case *ReturnStmt:
			p.write("return")
			if s.X != nil {
				p.write(" ")
				p.expr(s.X)
			}
		}
		p.write(";\n")
	}
	p.write(strings.Repeat(indentUnit, depth), "}")
}

func (p *printer) ident(id *Ident) {
	start := p.pos()
	p.write(id.Text())
	id.Span = domain.Span{Start: start, End: p.pos()}
}

func (p *printer) expr(e Expr) {
	switch e := e.(type) {
	case *Ident:
		p.ident(e)
	case *Literal:
		start := p.pos()
		p.write(e.Value)
		e.Span = domain.Span{Start: start, End: p.pos()}
	case *CallExpr:
		p.write(e.Trivia.Leading)
		start := p.pos()
		p.ident(e.Fun)
		p.write("(")
		for i, arg := range e.Args {
			if i > 0 {
				p.write(", ")
			}
			p.expr(arg)
		}
		p.write(")")
		e.Span = domain.Span{Start: start, End: p.pos()}
		p.write(e.Trivia.Trailing)
	case *NameOfExpr:
		start := p.pos()
		p.write("nameof(")
		p.ident(e.X)
		p.write(")")
		e.Span = domain.Span{Start: start, End: p.pos()}
	case *AwaitExpr:
		p.write(e.Trivia.Leading)
		start := p.pos()
		p.write("await ")
		p.expr(e.X)
		e.Span = domain.Span{Start: start, End: p.pos()}
		p.write(e.Trivia.Trailing)
	case *BlockingWaitExpr:
		p.write(e.Trivia.Leading)
		start := p.pos()
		p.expr(e.X)
		p.write(".GetAwaiter().GetResult()")
		e.Span = domain.Span{Start: start, End: p.pos()}
		p.write(e.Trivia.Trailing)
	}
}
