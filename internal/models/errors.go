package models

import "errors"

var (
	// ErrNotFound is returned by stores when a user or game does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when creating a user whose name is taken.
	ErrConflict = errors.New("already exists")

	// ErrBadRequest marks malformed input from a caller.
	ErrBadRequest = errors.New("bad request")
)
