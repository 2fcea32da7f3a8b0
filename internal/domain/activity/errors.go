package activity

import (
	"errors"
	"fmt"

	"github.com/crowdkit/crowdkit/internal/schema"
)

var (
	// ErrNotFound indicates the activity doesn't exist.
	ErrNotFound = errors.New("activity not found")
	// ErrSessionNotFound indicates the owning session doesn't exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidInput indicates invalid input for activity operations.
	ErrInvalidInput = errors.New("invalid activity input")
	// ErrInvalidTransition indicates an illegal lifecycle move.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrInvalidConfiguration indicates the configuration failed validation
	// at a point where validity is required (draft -> active).
	ErrInvalidConfiguration = errors.New("invalid activity configuration")
	// ErrNotDraft indicates a structural edit was attempted outside draft.
	ErrNotDraft = errors.New("activity is not in draft state")
	// ErrOrderIndexTaken indicates the order index is already used within
	// the session.
	ErrOrderIndexTaken = errors.New("order index already used in session")
)

// TransitionError reports an illegal lifecycle move together with the edges
// that are currently legal, so clients can self-correct.
type TransitionError struct {
	From  State
	To    State
	Valid []State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition from %s to %s (valid: %v)", e.From, e.To, e.Valid)
}

// Is lets callers match with errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// ConfigurationError carries the validation result that blocked a
// draft -> active transition.
type ConfigurationError struct {
	Result schema.Result
}

func (e *ConfigurationError) Error() string {
	msgs := e.Result.Strings()
	if len(msgs) == 0 {
		return "configuration failed validation"
	}
	return fmt.Sprintf("configuration failed validation: %s", msgs[0])
}

// Is lets callers match with errors.Is(err, ErrInvalidConfiguration).
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfiguration
}
