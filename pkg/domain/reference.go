package domain

// ReferenceKind classifies how a reference location uses the function.
// The provider assigns it while searching, so consumers never inspect syntax.
type ReferenceKind int

const (
	// NameOnlyReference names the function without invoking it
	// (e.g. a name literal).
	NameOnlyReference ReferenceKind = iota
	// InvocationInAwaitableContext invokes the function from a body that can
	// carry an async marker.
	InvocationInAwaitableContext
	// InvocationInNonAwaitableContext invokes the function from a context that
	// cannot become asynchronous (property getter, field initializer).
	InvocationInNonAwaitableContext
)

func (k ReferenceKind) String() string {
	switch k {
	case NameOnlyReference:
		return "name-only"
	case InvocationInAwaitableContext:
		return "invocation"
	case InvocationInNonAwaitableContext:
		return "invocation-non-awaitable"
	default:
		return "unknown"
	}
}

// IsInvocation reports whether the reference is a call.
func (k ReferenceKind) IsInvocation() bool {
	return k == InvocationInAwaitableContext || k == InvocationInNonAwaitableContext
}

// ReferenceLocation is a place in source that names a function.
type ReferenceLocation struct {
	Document DocumentID    `json:"document"`
	Span     Span          `json:"span"`
	Kind     ReferenceKind `json:"kind"`
	Target   FunctionID    `json:"target"`
	// Enclosing is empty when the enclosing function cannot be determined.
	Enclosing FunctionID `json:"enclosing,omitempty"`
}

// HasEnclosing reports whether the enclosing function was resolved.
func (r ReferenceLocation) HasEnclosing() bool {
	return r.Enclosing != ""
}

// Location returns the document/span pair of the reference.
func (r ReferenceLocation) Location() Location {
	return Location{Document: r.Document, Span: r.Span}
}
