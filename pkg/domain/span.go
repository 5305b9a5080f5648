package domain

import "fmt"

// Position is a byte offset into a document's rendered text.
type Position int

// Span is a half-open byte range [Start, End) in a document.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos Position) bool {
	return int(pos) >= s.Start && int(pos) < s.End
}

// Encloses reports whether other lies within s.
func (s Span) Encloses(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// IsZero reports whether the span was never assigned.
func (s Span) IsZero() bool {
	return s.Start == 0 && s.End == 0
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// DocumentID identifies a document inside a workspace.
type DocumentID string

// ProjectID identifies a project inside a workspace.
type ProjectID string

// Location is a span inside a specific document.
type Location struct {
	Document DocumentID `json:"document"`
	Span     Span       `json:"span"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s%s", l.Document, l.Span)
}
