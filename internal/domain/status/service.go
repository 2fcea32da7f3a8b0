// Package status assembles the per-activity polling payload: lifecycle
// state, response counters, valid transitions, and persona-shaped results.
// Clients poll it instead of holding a push channel open.
package status

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/registry"
)

// Service computes activity status snapshots and result aggregates.
type Service struct {
	activities *activity.Service
	responses  response.Repository
	registry   *registry.Registry
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new status service.
func NewService(
	activities *activity.Service,
	responses response.Repository,
	reg *registry.Registry,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		activities: activities,
		responses:  responses,
		registry:   reg,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Activity builds the polling snapshot for one activity, shaped for the
// requesting persona. Results are attached for admins unconditionally; other
// personas see them only when the activity publishes live results or has
// completed.
func (s *Service) Activity(ctx context.Context, activityID string, persona registry.Persona) (*ActivityStatus, error) {
	act, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}

	count, err := s.responses.CountByActivity(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("counting responses: %w", err)
	}
	lastResponseAt, err := s.responses.LastResponseAt(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("finding last response: %w", err)
	}

	transitions := s.activities.TransitionsFor(act)
	labels := make([]string, len(transitions))
	for i, t := range transitions {
		labels[i] = string(t)
	}

	st := &ActivityStatus{
		ActivityID:       act.ID,
		Status:           act.StatusLabel(),
		State:            string(act.State),
		ResponseCount:    count,
		ExpiresAt:        act.ExpiresAt,
		ActivityMetadata: act.Metadata,
		ValidTransitions: labels,
		LastResponseAt:   lastResponseAt,
		LastUpdated:      s.now(),
	}

	if s.resultsVisible(act, persona) {
		results, err := s.resultsFor(ctx, act, persona)
		if err != nil {
			return nil, err
		}
		st.Results = results
	}
	return st, nil
}

// Results computes the aggregate for an activity without the surrounding
// status envelope. Used by the admin results endpoint.
func (s *Service) Results(ctx context.Context, activityID string, persona registry.Persona) (map[string]any, error) {
	act, err := s.activities.Get(ctx, activityID)
	if err != nil {
		return nil, err
	}
	return s.resultsFor(ctx, act, persona)
}

// resultsVisible applies the live-results policy. Admins always see results;
// everyone sees them once the activity is done.
func (s *Service) resultsVisible(act *activity.Activity, persona registry.Persona) bool {
	if persona == registry.PersonaAdmin {
		return true
	}
	if act.State == activity.StateCompleted {
		return true
	}
	return act.Metadata.ShowLiveResults()
}

// resultsFor recomputes the aggregate from stored responses. When the
// activity's type is no longer registered the read degrades to a count-only
// aggregate instead of failing.
func (s *Service) resultsFor(ctx context.Context, act *activity.Activity, persona registry.Persona) (map[string]any, error) {
	stored, err := s.responses.ListByActivity(ctx, act.ID, response.ListOptions{Limit: 10000})
	if err != nil {
		return nil, fmt.Errorf("listing responses: %w", err)
	}

	def, err := s.registry.Resolve(act.Type)
	if err != nil {
		s.logger.Warn("activity type unavailable, using count-only results",
			"activity_id", act.ID, "type", act.Type)
		return map[string]any{"total_responses": len(stored)}, nil
	}

	payloads := make([]registry.Response, len(stored))
	for i, r := range stored {
		payloads[i] = registry.Response{
			ParticipantID: r.ParticipantID,
			Data:          r.Data,
			CreatedAt:     r.CreatedAt,
		}
	}

	results := def.Handler.Results(act.Configuration, payloads)
	if view := def.Views[persona]; view != nil {
		return view(act.Configuration, results), nil
	}
	return results, nil
}
