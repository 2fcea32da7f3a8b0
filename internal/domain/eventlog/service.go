package eventlog

import (
	"context"
	"log/slog"
	"time"
)

// Service records and lists session events. Recording is best-effort: a
// timeline write never fails the operation that produced it.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new event log service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Record stores an event, stamping CreatedAt when missing.
func (s *Service) Record(ctx context.Context, event Event) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	if err := s.repo.Record(ctx, &event); err != nil {
		s.logger.Warn("failed to record session event",
			"session_id", event.SessionID,
			"type", event.Type,
			"error", err)
	}
}

// List returns a session's timeline, newest first.
func (s *Service) List(ctx context.Context, sessionID string, opts ListOptions) ([]Event, error) {
	if opts.Limit <= 0 || opts.Limit > 500 {
		opts.Limit = 100
	}
	return s.repo.List(ctx, sessionID, opts)
}
