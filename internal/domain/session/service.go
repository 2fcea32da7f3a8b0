package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/repository"
	"github.com/google/uuid"
)

// Join and admin codes avoid ambiguous characters (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const defaultCodeLength = 6

// Service handles session operations.
type Service struct {
	repo         Repository
	participants ParticipantCounter
	activities   ActivityDirectory
	events       *eventlog.Service
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new session service.
func NewService(
	repo Repository,
	participants ParticipantCounter,
	activities ActivityDirectory,
	events *eventlog.Service,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:         repo,
		participants: participants,
		activities:   activities,
		events:       events,
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest describes a new session.
type CreateRequest struct {
	Title           string
	MaxParticipants int
}

// Create starts a new session with freshly generated join and admin codes.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	if req.Title == "" {
		return nil, ErrInvalidInput
	}
	if req.MaxParticipants < 0 {
		return nil, ErrInvalidInput
	}

	joinCode, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}
	adminCode, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &Session{
		ID:              uuid.NewString(),
		Title:           req.Title,
		JoinCode:        joinCode,
		AdminCode:       adminCode,
		MaxParticipants: req.MaxParticipants,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	if s.events != nil {
		s.events.Record(ctx, eventlog.Event{
			SessionID: sess.ID,
			Type:      eventlog.TypeSessionCreated,
			Summary:   fmt.Sprintf("session %q created", sess.Title),
		})
	}
	s.logger.Info("created session", "session_id", sess.ID, "join_code", sess.JoinCode)
	return sess, nil
}

// Get loads a session by id.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// GetByJoinCode loads a session by its participant join code.
func (s *Service) GetByJoinCode(ctx context.Context, code string) (*Session, error) {
	if code == "" {
		return nil, ErrInvalidInput
	}
	sess, err := s.repo.GetByJoinCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return sess, nil
}

// List returns sessions, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Session, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// End closes a session. Ending is idempotent.
func (s *Service) End(ctx context.Context, id string) (*Session, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.Status == StatusEnded {
		return sess, nil
	}

	now := s.now()
	sess.Status = StatusEnded
	sess.EndedAt = &now
	sess.UpdatedAt = now
	if err := s.repo.Update(ctx, sess); err != nil {
		return nil, fmt.Errorf("ending session: %w", err)
	}

	if s.events != nil {
		s.events.Record(ctx, eventlog.Event{
			SessionID: sess.ID,
			Type:      eventlog.TypeSessionEnded,
			Summary:   fmt.Sprintf("session %q ended", sess.Title),
		})
	}
	s.logger.Info("ended session", "session_id", sess.ID)
	return sess, nil
}

// Delete removes a session and, through the store's cascade, its activities
// and responses.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// Status builds the session-level poll snapshot.
func (s *Service) Status(ctx context.Context, id string) (*StatusSnapshot, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.participants.CountBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("counting participants: %w", err)
	}

	snapshot := &StatusSnapshot{
		SessionID:        sess.ID,
		Status:           sess.Status,
		ParticipantCount: count,
		LastUpdated:      s.now(),
	}

	current, err := s.activities.ActiveBySession(ctx, id)
	if err != nil {
		return nil, err
	}
	if current != nil {
		snapshot.CurrentActivityID = &current.ID
	}
	return snapshot, nil
}

// uniqueCode generates a code and retries on the rare collision.
func (s *Service) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code, err := randomCode(defaultCodeLength)
		if err != nil {
			return "", err
		}
		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("checking code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique session code")
}

func randomCode(length int) (string, error) {
	buf := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generating code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
