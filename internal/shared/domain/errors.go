package domain

import "errors"

var (
	// ErrNotExist is returned by repositories when no row matches.
	ErrNotExist = errors.New("record does not exist")
	// ErrConflict is returned when an insert violates a uniqueness
	// constraint.
	ErrConflict = errors.New("record already exists")
)
