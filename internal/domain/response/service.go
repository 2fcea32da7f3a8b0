package response

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/google/uuid"
)

// Service collects participant submissions. Every submission runs under the
// activity's guard lock shared with the lifecycle service, so the limit and
// duplicate checks cannot race with each other or with transitions.
type Service struct {
	repo       Repository
	activities *activity.Service
	registry   *registry.Registry
	events     *eventlog.Service
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new response collector.
func NewService(
	repo Repository,
	activities *activity.Service,
	reg *registry.Registry,
	events *eventlog.Service,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:       repo,
		activities: activities,
		registry:   reg,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit stores a participant response. The activity must be active (after
// lazy expiry is applied); the duplicate and limit policies come from the
// activity's metadata. A submission that reaches max_responses completes the
// activity atomically with the accepted write.
func (s *Service) Submit(ctx context.Context, activityID, participantID string, data map[string]any) (*Response, error) {
	if activityID == "" || participantID == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.activities.Guard().Lock(activityID)
	defer unlock()

	act, err := s.activities.LoadLocked(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if act.State != activity.StateActive {
		if err := s.closedByCap(ctx, act, participantID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: state is %s", ErrActivityNotActive, act.State)
	}

	def, err := s.registry.Resolve(act.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", registry.ErrTypeUnavailable, act.Type)
	}

	count, err := s.repo.CountByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("counting responses: %w", err)
	}
	maxResponses, capped := act.Metadata.MaxResponses()
	if capped && count >= maxResponses {
		return nil, ErrResponseLimit
	}

	if !act.Metadata.AllowMultipleResponses() {
		exists, err := s.repo.HasParticipantResponse(ctx, activityID, participantID)
		if err != nil {
			return nil, fmt.Errorf("checking existing response: %w", err)
		}
		if exists {
			return nil, ErrDuplicateResponse
		}
	}

	processed, err := def.Handler.ProcessResponse(act.Configuration, participantID, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	now := s.now()
	resp := &Response{
		ID:            uuid.NewString(),
		SessionID:     act.SessionID,
		ActivityID:    activityID,
		ParticipantID: participantID,
		Data:          processed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("storing response: %w", err)
	}

	if s.events != nil {
		s.events.Record(ctx, eventlog.Event{
			SessionID:     act.SessionID,
			ActivityID:    &activityID,
			ParticipantID: &participantID,
			Type:          eventlog.TypeResponseSubmitted,
			Summary:       fmt.Sprintf("response submitted to %q", act.Title),
		})
	}

	// The write that fills the last slot closes the activity in the same
	// guarded section, so no concurrent submission can slip past the cap.
	if capped && count+1 >= maxResponses {
		if err := s.activities.CompleteLocked(ctx, act, "response limit reached"); err != nil {
			return nil, err
		}
	}

	s.logger.Info("response submitted",
		"activity_id", activityID, "participant_id", participantID, "count", count+1)
	return resp, nil
}

// closedByCap distinguishes an activity that completed by filling its response
// cap from one that is merely inactive. A repeat submitter against a full
// activity reports the duplicate, anyone else the exhausted limit; the generic
// not-active refusal is reserved for the other states.
func (s *Service) closedByCap(ctx context.Context, act *activity.Activity, participantID string) error {
	if act.State != activity.StateCompleted {
		return nil
	}
	maxResponses, capped := act.Metadata.MaxResponses()
	if !capped {
		return nil
	}
	count, err := s.repo.CountByActivity(ctx, act.ID)
	if err != nil {
		return fmt.Errorf("counting responses: %w", err)
	}
	if count < maxResponses {
		return nil
	}

	if !act.Metadata.AllowMultipleResponses() {
		exists, err := s.repo.HasParticipantResponse(ctx, act.ID, participantID)
		if err != nil {
			return fmt.Errorf("checking existing response: %w", err)
		}
		if exists {
			return ErrDuplicateResponse
		}
	}
	return ErrResponseLimit
}

// ListByActivity returns an activity's responses in arrival order.
func (s *Service) ListByActivity(ctx context.Context, activityID string, opts ListOptions) ([]Response, error) {
	if activityID == "" {
		return nil, ErrInvalidInput
	}
	if opts.Limit <= 0 || opts.Limit > 1000 {
		opts.Limit = 100
	}
	return s.repo.ListByActivity(ctx, activityID, opts)
}
