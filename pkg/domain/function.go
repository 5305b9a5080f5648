package domain

import "strings"

// FunctionID is an opaque handle for a callable symbol, issued by the code
// model provider. The provider guarantees that two handles denoting the same
// symbol are equal; callers must compare them with == and nothing else.
type FunctionID string

// TypeKind distinguishes concrete types from pure contracts.
type TypeKind string

const (
	TypeKindClass     TypeKind = "class"
	TypeKindInterface TypeKind = "interface"
)

// TypeRef names a type, optionally with type arguments (e.g. Task<int>).
type TypeRef struct {
	Name string    `json:"name" yaml:"name"`
	Args []TypeRef `json:"args,omitempty" yaml:"args,omitempty"`
}

// Void is the "no value" return type.
var Void = TypeRef{Name: "void"}

// IsVoid reports whether the type denotes "no value".
func (t TypeRef) IsVoid() bool {
	return t.Name == "" || t.Name == Void.Name
}

// Equal compares two type references structurally.
func (t TypeRef) Equal(other TypeRef) bool {
	if t.Name != other.Name || len(t.Args) != len(other.Args) {
		return false
	}
	for i := range t.Args {
		if !t.Args[i].Equal(other.Args[i]) {
			return false
		}
	}
	return true
}

func (t TypeRef) String() string {
	if t.Name == "" {
		return Void.Name
	}
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

// Parameter is one formal parameter of a function.
type Parameter struct {
	Name string  `json:"name" yaml:"name"`
	Type TypeRef `json:"type" yaml:"type"`
}

// FunctionInfo is the provider's view of a callable symbol.
type FunctionInfo struct {
	ID             FunctionID  `json:"id"`
	Name           string      `json:"name"`
	ContainingType string      `json:"containing_type"`
	Parameters     []Parameter `json:"parameters,omitempty"`
	Result         TypeRef     `json:"result"`
	Async          bool        `json:"async"`
	// HasBody is false for abstract or interface signatures.
	HasBody bool `json:"has_body"`
	// CanBeAsync reports whether the declaration may carry an async marker.
	CanBeAsync   bool       `json:"can_be_async"`
	Declarations []Location `json:"declarations,omitempty"`
}

// ParameterTypes returns the parameter types in declaration order.
func (f FunctionInfo) ParameterTypes() []TypeRef {
	out := make([]TypeRef, len(f.Parameters))
	for i, p := range f.Parameters {
		out[i] = p.Type
	}
	return out
}

// TypeInfo is the provider's view of a type and its members.
type TypeInfo struct {
	Name       string       `json:"name"`
	Kind       TypeKind     `json:"kind"`
	Base       string       `json:"base,omitempty"`
	Interfaces []string     `json:"interfaces,omitempty"`
	Members    []FunctionID `json:"members,omitempty"`
}
