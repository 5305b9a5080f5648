package syntax

import (
	"slices"

	"github.com/aretw0/swallow/pkg/domain"
)

// AsyncModifier is the asynchronous execution marker.
const AsyncModifier = "async"

// Node is implemented by every element of the tree.
type Node interface {
	NodeSpan() domain.Span
}

// Trivia is the formatting attached around an expression (comments, spacing).
type Trivia struct {
	Leading  string `json:"leading,omitempty" yaml:"leading,omitempty"`
	Trailing string `json:"trailing,omitempty" yaml:"trailing,omitempty"`
}

// File is the root of a document.
type File struct {
	Path  string
	Types []*TypeDecl
}

// NodeSpan covers the whole text of the file.
func (f *File) NodeSpan() domain.Span {
	if len(f.Types) == 0 {
		return domain.Span{}
	}
	return domain.Span{Start: 0, End: f.Types[len(f.Types)-1].Span.End}
}

// TypeDecl declares a class or interface.
type TypeDecl struct {
	Span       domain.Span
	Name       string
	Kind       domain.TypeKind
	Base       string
	Interfaces []string
	Partial    bool
	Members    []Member
}

func (t *TypeDecl) NodeSpan() domain.Span { return t.Span }

// Member is a method, property or field declaration.
type Member interface {
	Node
	MemberName() *Ident
	member()
}

// MethodDecl declares a method. Body is nil for signatures without a body.
type MethodDecl struct {
	Span      domain.Span
	Modifiers []string
	Result    domain.TypeRef
	Name      *Ident
	Params    []domain.Parameter
	Body      *Block
}

func (m *MethodDecl) NodeSpan() domain.Span { return m.Span }
func (m *MethodDecl) MemberName() *Ident    { return m.Name }
func (m *MethodDecl) member()               {}

// HasModifier reports whether the method carries the given modifier.
func (m *MethodDecl) HasModifier(mod string) bool {
	return slices.Contains(m.Modifiers, mod)
}

// AddModifier appends mod unless it is already present.
func (m *MethodDecl) AddModifier(mod string) {
	if !m.HasModifier(mod) {
		m.Modifiers = append(m.Modifiers, mod)
	}
}

// IsAsync reports whether the method carries the async marker.
func (m *MethodDecl) IsAsync() bool {
	return m.HasModifier(AsyncModifier)
}

// PropertyDecl declares a property with a getter body.
type PropertyDecl struct {
	Span      domain.Span
	Modifiers []string
	Type      domain.TypeRef
	Name      *Ident
	Getter    *Block
}

func (p *PropertyDecl) NodeSpan() domain.Span { return p.Span }
func (p *PropertyDecl) MemberName() *Ident    { return p.Name }
func (p *PropertyDecl) member()               {}

// FieldDecl declares a field with an optional initializer.
type FieldDecl struct {
	Span      domain.Span
	Modifiers []string
	Type      domain.TypeRef
	Name      *Ident
	Init      Expr
}

func (f *FieldDecl) NodeSpan() domain.Span { return f.Span }
func (f *FieldDecl) MemberName() *Ident    { return f.Name }
func (f *FieldDecl) member()               {}

// Block is a sequence of statements.
type Block struct {
	Stmts []Stmt
}

// Stmt is an ExprStmt or a ReturnStmt.
type Stmt interface {
	stmt()
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	X Expr
}

func (*ExprStmt) stmt() {}

// ReturnStmt returns X, or nothing when X is nil.
type ReturnStmt struct {
	X Expr
}

func (*ReturnStmt) stmt() {}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	expr()
}

// Ident is a possibly qualified name, e.g. Repository.Load.
type Ident struct {
	Span      domain.Span
	Qualifier string
	Name      string
}

func (i *Ident) NodeSpan() domain.Span { return i.Span }
func (*Ident) expr()                   {}

// Text returns the identifier as written.
func (i *Ident) Text() string {
	if i.Qualifier == "" {
		return i.Name
	}
	return i.Qualifier + "." + i.Name
}

// CallExpr invokes Fun with Args.
type CallExpr struct {
	Span   domain.Span
	Fun    *Ident
	Args   []Expr
	Trivia Trivia
}

func (c *CallExpr) NodeSpan() domain.Span { return c.Span }
func (*CallExpr) expr()                   {}

// NameOfExpr is a name literal: it mentions X without invoking it.
type NameOfExpr struct {
	Span domain.Span
	X    *Ident
}

func (n *NameOfExpr) NodeSpan() domain.Span { return n.Span }
func (*NameOfExpr) expr()                   {}

// AwaitExpr awaits X.
type AwaitExpr struct {
	Span   domain.Span
	X      Expr
	Trivia Trivia
}

func (a *AwaitExpr) NodeSpan() domain.Span { return a.Span }
func (*AwaitExpr) expr()                   {}

// BlockingWaitExpr waits synchronously for X's result through its awaiter.
type BlockingWaitExpr struct {
	Span   domain.Span
	X      Expr
	Trivia Trivia
}

func (b *BlockingWaitExpr) NodeSpan() domain.Span { return b.Span }
func (*BlockingWaitExpr) expr()                   {}

// Literal is a constant written verbatim.
type Literal struct {
	Span  domain.Span
	Value string
}

func (l *Literal) NodeSpan() domain.Span { return l.Span }
func (*Literal) expr()                   {}
