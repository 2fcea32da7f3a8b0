package session

import (
	"context"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
)

// Status is the lifecycle status of a session.
type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

// Session is one live, multi-participant run of activities.
type Session struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	JoinCode        string     `json:"join_code"`
	AdminCode       string     `json:"admin_code,omitempty"`
	MaxParticipants int        `json:"max_participants"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

// StatusSnapshot is the session-level poll payload: which activity is live,
// how many participants are present, and when the snapshot was taken.
type StatusSnapshot struct {
	SessionID         string    `json:"session_id"`
	Status            Status    `json:"status"`
	CurrentActivityID *string   `json:"current_activity_id,omitempty"`
	ParticipantCount  int       `json:"participant_count"`
	LastUpdated       time.Time `json:"last_updated"`
}

// Repository provides persistence for sessions.
type Repository interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	GetByJoinCode(ctx context.Context, code string) (*Session, error)
	Exists(ctx context.Context, id string) (bool, error)
	Update(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]Session, error)
	CodeExists(ctx context.Context, code string) (bool, error)
}

// ParticipantCounter reports how many participants a session has.
type ParticipantCounter interface {
	CountBySession(ctx context.Context, sessionID string) (int, error)
}

// ActivityDirectory locates a session's currently active activity, with lazy
// expiry already applied.
type ActivityDirectory interface {
	ActiveBySession(ctx context.Context, sessionID string) (*activity.Activity, error)
}
