// Package eventlog records what happened in a session: activity lifecycle
// moves, submissions, participants coming and going. Admin clients read it as
// a timeline; nothing in the runtime depends on it.
package eventlog

import (
	"context"
	"time"
)

// EventType classifies a session event.
type EventType string

const (
	TypeSessionCreated    EventType = "session_created"
	TypeSessionEnded      EventType = "session_ended"
	TypeParticipantJoined EventType = "participant_joined"
	TypeParticipantLeft   EventType = "participant_left"
	TypeActivityCreated   EventType = "activity_created"
	TypeActivityUpdated   EventType = "activity_updated"
	TypeActivityDeleted   EventType = "activity_deleted"
	TypeStateChanged      EventType = "state_changed"
	TypeResponseSubmitted EventType = "response_submitted"
)

// Event is one entry in a session's timeline.
type Event struct {
	ID            int64     `json:"id"`
	SessionID     string    `json:"session_id"`
	ActivityID    *string   `json:"activity_id,omitempty"`
	ParticipantID *string   `json:"participant_id,omitempty"`
	Type          EventType `json:"type"`
	Summary       string    `json:"summary"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListOptions filters timeline reads.
type ListOptions struct {
	ActivityID *string
	Types      []EventType
	Limit      int
	Offset     int
}

// Repository persists session events.
type Repository interface {
	Record(ctx context.Context, event *Event) error
	List(ctx context.Context, sessionID string, opts ListOptions) ([]Event, error)
}
