package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBeginDocument        EventType = "begin_document"
	EventFinishDocument       EventType = "finish_document"
	EventBeginTransformation  EventType = "begin_transformation"
	EventFinishTransformation EventType = "finish_transformation"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UnitID    string    `json:"unit_id"`
}

// DocumentEvent marks the start or end of a document's edit sequence.
type DocumentEvent struct {
	EventBase
	Document        DocumentID `json:"document"`
	Path            string     `json:"path"`
	Transformations int        `json:"transformations"`
}

// TransformationEvent marks the start or end of a single transformation.
type TransformationEvent struct {
	EventBase
	Document       DocumentID    `json:"document"`
	Transformation string        `json:"transformation"`
	Index          int           `json:"index"`
	Duration       time.Duration `json:"duration,omitempty"`
	Err            error         `json:"-"`
}

// LifecycleHooks defines callbacks for unit of work observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnBeginDocument        func(context.Context, *DocumentEvent)
	OnFinishDocument       func(context.Context, *DocumentEvent)
	OnBeginTransformation  func(context.Context, *TransformationEvent)
	OnFinishTransformation func(context.Context, *TransformationEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnBeginDocument:        chainDocument(h.OnBeginDocument, other.OnBeginDocument),
		OnFinishDocument:       chainDocument(h.OnFinishDocument, other.OnFinishDocument),
		OnBeginTransformation:  chainTransformation(h.OnBeginTransformation, other.OnBeginTransformation),
		OnFinishTransformation: chainTransformation(h.OnFinishTransformation, other.OnFinishTransformation),
	}
}

func chainDocument(a, b func(context.Context, *DocumentEvent)) func(context.Context, *DocumentEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *DocumentEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainTransformation(a, b func(context.Context, *TransformationEvent)) func(context.Context, *TransformationEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TransformationEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
