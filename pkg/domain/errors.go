package domain

import "errors"

// ErrNotFound is returned when a requested transformation, filter, function,
// document or project does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExecuted is returned when a unit of work is executed (or changed)
// after its first execution.
var ErrAlreadyExecuted = errors.New("unit of work already executed")

// ErrUnsupportedShape is returned when a transformation's structural
// precondition does not hold for its target.
var ErrUnsupportedShape = errors.New("unsupported syntax shape")

// ErrInvalidWorkspace is returned when a workspace snapshot cannot be built,
// e.g. a document belongs to two projects.
var ErrInvalidWorkspace = errors.New("invalid workspace")
