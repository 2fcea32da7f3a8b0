package participant

import (
	"context"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/session"
)

// Presence is derived from the participant's last heartbeat, never stored.
type Presence string

const (
	PresenceActive       Presence = "active"
	PresenceIdle         Presence = "idle"
	PresenceDisconnected Presence = "disconnected"
)

// Heartbeat age thresholds for presence derivation.
const (
	activeWindow = 30 * time.Second
	idleWindow   = 120 * time.Second
)

// Participant is one attendee of a session.
type Participant struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
	Presence    Presence  `json:"presence"`
}

// PresenceAt derives the presence bucket for the given instant.
func (p *Participant) PresenceAt(now time.Time) Presence {
	age := now.Sub(p.LastSeenAt)
	switch {
	case age < activeWindow:
		return PresenceActive
	case age < idleWindow:
		return PresenceIdle
	default:
		return PresenceDisconnected
	}
}

// Repository provides persistence for participants.
type Repository interface {
	Create(ctx context.Context, p *Participant) error
	Get(ctx context.Context, id string) (*Participant, error)
	Update(ctx context.Context, p *Participant) error
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]Participant, error)
	CountBySession(ctx context.Context, sessionID string) (int, error)
	NameExists(ctx context.Context, sessionID, displayName string) (bool, error)
}

// SessionDirectory resolves the session a participant joins. Satisfied by the
// session service.
type SessionDirectory interface {
	GetByJoinCode(ctx context.Context, code string) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
}
