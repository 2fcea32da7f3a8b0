package participant

import "errors"

var (
	// ErrNotFound indicates the participant doesn't exist.
	ErrNotFound = errors.New("participant not found")
	// ErrSessionFull indicates the session reached its participant cap.
	ErrSessionFull = errors.New("session is full")
	// ErrNameTaken indicates the display name is already in use in the session.
	ErrNameTaken = errors.New("display name already taken")
	// ErrInvalidInput indicates invalid participant input.
	ErrInvalidInput = errors.New("invalid participant input")
)
