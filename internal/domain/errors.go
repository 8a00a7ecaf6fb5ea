package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidFigure signals a figure that failed validation.
	ErrInvalidFigure = errors.New("invalid figure")
	// ErrInvalidQuery signals a malformed search request (bad pagination, unknown shape).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrOwnerRequired signals a call without an owner scope.
	ErrOwnerRequired = errors.New("owner id is required")
	// ErrConflict signals an id already taken by another owner.
	ErrConflict = errors.New("id already in use")
)
