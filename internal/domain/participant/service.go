package participant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/crowdkit/crowdkit/internal/repository"
	"github.com/google/uuid"
)

const maxDisplayNameLength = 50

// Service handles participant membership and presence.
type Service struct {
	repo     Repository
	sessions SessionDirectory
	events   *eventlog.Service
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new participant service.
func NewService(
	repo Repository,
	sessions SessionDirectory,
	events *eventlog.Service,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		sessions: sessions,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join admits a participant into the session behind the join code. The
// display name must be unique within the session and the session must have
// room.
func (s *Service) Join(ctx context.Context, joinCode, displayName string) (*Participant, error) {
	displayName = strings.TrimSpace(displayName)
	if joinCode == "" || displayName == "" {
		return nil, ErrInvalidInput
	}
	if len(displayName) > maxDisplayNameLength {
		return nil, fmt.Errorf("%w: display name exceeds %d characters", ErrInvalidInput, maxDisplayNameLength)
	}

	sess, err := s.sessions.GetByJoinCode(ctx, joinCode)
	if err != nil {
		return nil, err
	}
	if sess.Status == session.StatusEnded {
		return nil, session.ErrEnded
	}

	if sess.MaxParticipants > 0 {
		count, err := s.repo.CountBySession(ctx, sess.ID)
		if err != nil {
			return nil, fmt.Errorf("counting participants: %w", err)
		}
		if count >= sess.MaxParticipants {
			return nil, ErrSessionFull
		}
	}

	taken, err := s.repo.NameExists(ctx, sess.ID, displayName)
	if err != nil {
		return nil, fmt.Errorf("checking display name: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, displayName)
	}

	now := s.now()
	p := &Participant{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		DisplayName: displayName,
		JoinedAt:    now,
		LastSeenAt:  now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %q", ErrNameTaken, displayName)
		}
		return nil, fmt.Errorf("creating participant: %w", err)
	}
	p.Presence = p.PresenceAt(now)

	if s.events != nil {
		s.events.Record(ctx, eventlog.Event{
			SessionID:     sess.ID,
			ParticipantID: &p.ID,
			Type:          eventlog.TypeParticipantJoined,
			Summary:       fmt.Sprintf("%s joined", p.DisplayName),
		})
	}
	s.logger.Info("participant joined", "session_id", sess.ID, "participant_id", p.ID)
	return p, nil
}

// Get loads a participant by id.
func (s *Service) Get(ctx context.Context, id string) (*Participant, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading participant: %w", err)
	}
	p.Presence = p.PresenceAt(s.now())
	return p, nil
}

// Heartbeat records that a participant is still present.
func (s *Service) Heartbeat(ctx context.Context, id string) (*Participant, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.LastSeenAt = s.now()
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("updating participant: %w", err)
	}
	p.Presence = PresenceActive
	return p, nil
}

// ListBySession returns a session's participants with presence derived at
// call time.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]Participant, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing participants: %w", err)
	}
	now := s.now()
	for i := range list {
		list[i].Presence = list[i].PresenceAt(now)
	}
	return list, nil
}

// Remove drops a participant from their session.
func (s *Service) Remove(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting participant: %w", err)
	}
	if s.events != nil {
		s.events.Record(ctx, eventlog.Event{
			SessionID:     p.SessionID,
			ParticipantID: &p.ID,
			Type:          eventlog.TypeParticipantLeft,
			Summary:       fmt.Sprintf("%s left", p.DisplayName),
		})
	}
	return nil
}

// CountBySession reports how many participants a session has. It satisfies
// the session service's counter dependency.
func (s *Service) CountBySession(ctx context.Context, sessionID string) (int, error) {
	return s.repo.CountBySession(ctx, sessionID)
}
