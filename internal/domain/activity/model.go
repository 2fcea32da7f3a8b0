package activity

import "time"

// State is the lifecycle state of an activity instance.
type State string

const (
	StateDraft     State = "draft"
	StateActive    State = "active"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// ValidState reports whether s is one of the five lifecycle states.
func ValidState(s State) bool {
	switch s {
	case StateDraft, StateActive, StatePaused, StateCompleted, StateCancelled:
		return true
	}
	return false
}

// Metadata is the open-ended activity metadata mapping. Well-known keys have
// typed accessors; everything else rides along untouched.
type Metadata map[string]any

// Well-known metadata keys.
const (
	MetaDurationSeconds    = "duration_seconds"
	MetaMaxResponses       = "max_responses"
	MetaAllowMultiple      = "allow_multiple_responses"
	MetaShowLiveResults    = "show_live_results"
	MetaRequiresModeration = "requires_moderation"
)

// DurationSeconds returns the configured run duration, if set.
func (m Metadata) DurationSeconds() (int, bool) {
	return m.intValue(MetaDurationSeconds)
}

// MaxResponses returns the response cap, if set.
func (m Metadata) MaxResponses() (int, bool) {
	return m.intValue(MetaMaxResponses)
}

// AllowMultipleResponses reports whether a participant may submit more than
// one response. Defaults to false.
func (m Metadata) AllowMultipleResponses() bool {
	v, _ := m[MetaAllowMultiple].(bool)
	return v
}

// ShowLiveResults reports whether non-admin personas may see in-progress
// results. Defaults to false when unset.
func (m Metadata) ShowLiveResults() bool {
	v, _ := m[MetaShowLiveResults].(bool)
	return v
}

// RequiresModeration reports whether submissions need moderation.
func (m Metadata) RequiresModeration() bool {
	v, _ := m[MetaRequiresModeration].(bool)
	return v
}

func (m Metadata) intValue(key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		// JSON round-trips land here.
		if v == float64(int(v)) {
			return int(v), true
		}
	}
	return 0, false
}

// Merge layers overrides on top of defaults without mutating either.
func Merge(defaults, overrides map[string]any) Metadata {
	merged := make(Metadata, len(defaults)+len(overrides))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}

// Activity is one instance of a registered type bound to a session.
type Activity struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"session_id"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	Configuration map[string]any `json:"configuration"`
	Metadata      Metadata       `json:"activity_metadata"`
	State         State          `json:"state"`
	OrderIndex    int            `json:"order_index"`
	ExpiresAt     *time.Time     `json:"expires_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// StatusLabel is the deprecated free-text status shown to legacy consumers.
// State is authoritative; the label is derived so the two never diverge.
// Paused activities report "active" because the legacy vocabulary has no
// pause.
func (a *Activity) StatusLabel() string {
	if a.State == StatePaused {
		return string(StateActive)
	}
	return string(a.State)
}

// ExpiryDue reports whether the lazy expiry transition applies: the deadline
// has passed while the activity is active or paused.
func (a *Activity) ExpiryDue(now time.Time) bool {
	if a.ExpiresAt == nil {
		return false
	}
	if a.State != StateActive && a.State != StatePaused {
		return false
	}
	return !now.Before(*a.ExpiresAt)
}
