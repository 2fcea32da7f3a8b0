package session

import "errors"

var (
	// ErrNotFound indicates the session doesn't exist.
	ErrNotFound = errors.New("session not found")
	// ErrEnded indicates the session has already ended.
	ErrEnded = errors.New("session has ended")
	// ErrInvalidInput indicates invalid session input.
	ErrInvalidInput = errors.New("invalid session input")
)
