package response

import "errors"

var (
	// ErrActivityNotActive indicates the activity is not accepting
	// responses in its current state.
	ErrActivityNotActive = errors.New("activity is not active")
	// ErrResponseLimit indicates the activity's response cap is reached.
	ErrResponseLimit = errors.New("activity response limit reached")
	// ErrDuplicateResponse indicates the participant already responded and
	// the activity disallows multiple responses.
	ErrDuplicateResponse = errors.New("participant already responded")
	// ErrInvalidResponse indicates the activity type rejected the payload.
	ErrInvalidResponse = errors.New("invalid response data")
	// ErrInvalidInput indicates invalid input for response operations.
	ErrInvalidInput = errors.New("invalid response input")
)
