package store

import "errors"

// Sentinel errors for the store package.
var (
	// ErrNotFound is returned when no archived session log matches.
	ErrNotFound = errors.New("session log not found")

	// ErrTitleExists is returned when saving under a title already in use.
	ErrTitleExists = errors.New("title already exists")

	// ErrInvalidID is returned when an id is not a valid UUID.
	ErrInvalidID = errors.New("invalid session log id")

	// ErrEmptyTitle is returned when saving without a title.
	ErrEmptyTitle = errors.New("empty title")
)
