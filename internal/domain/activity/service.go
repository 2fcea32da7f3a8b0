package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/registry"
	"github.com/crowdkit/crowdkit/internal/repository"
	"github.com/crowdkit/crowdkit/internal/schema"
	"github.com/google/uuid"
)

// Service drives activities through their lifecycle.
type Service struct {
	repo     Repository
	sessions SessionDirectory
	registry *registry.Registry
	events   *eventlog.Service
	guard    *Guard
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new activity service.
func NewService(
	repo Repository,
	sessions SessionDirectory,
	reg *registry.Registry,
	events *eventlog.Service,
	guard *Guard,
	logger *slog.Logger,
	opts ...Option,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		sessions: sessions,
		registry: reg,
		events:   events,
		guard:    guard,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Guard exposes the per-activity lock shared with the response collector.
func (s *Service) Guard() *Guard {
	return s.guard
}

// CreateRequest describes a new activity. Drafts may hold a provisionally
// invalid configuration; validity is enforced at draft -> active.
type CreateRequest struct {
	SessionID     string
	Type          string
	Title         string
	Description   string
	Configuration map[string]any
	Metadata      map[string]any
	OrderIndex    int
}

// Create registers a new draft activity in a session.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Activity, error) {
	if req.SessionID == "" || req.Title == "" || req.OrderIndex < 0 {
		return nil, ErrInvalidInput
	}

	def, err := s.registry.Resolve(req.Type)
	if err != nil {
		return nil, err
	}

	exists, err := s.sessions.Exists(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("checking session: %w", err)
	}
	if !exists {
		return nil, ErrSessionNotFound
	}

	if req.Configuration == nil {
		req.Configuration = map[string]any{}
	}

	now := s.now()
	act := &Activity{
		ID:            uuid.NewString(),
		SessionID:     req.SessionID,
		Type:          req.Type,
		Title:         req.Title,
		Description:   req.Description,
		Configuration: req.Configuration,
		Metadata:      Merge(def.Handler.DefaultMetadata(), req.Metadata),
		State:         StateDraft,
		OrderIndex:    req.OrderIndex,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, act); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrOrderIndexTaken
		}
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	s.recordEvent(ctx, act, eventlog.TypeActivityCreated,
		fmt.Sprintf("activity %q (%s) created", act.Title, act.Type))
	s.logger.Info("created activity", "activity_id", act.ID, "type", act.Type, "session_id", act.SessionID)
	return act, nil
}

// Get loads an activity, applying the lazy expiry transition first so callers
// always observe the post-deadline state.
func (s *Service) Get(ctx context.Context, id string) (*Activity, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.guard.Lock(id)
	defer unlock()
	return s.getLocked(ctx, id)
}

// ListBySession returns a session's activities ordered by order index, each
// with lazy expiry applied.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]Activity, error) {
	if sessionID == "" {
		return nil, ErrInvalidInput
	}

	acts, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}

	now := s.now()
	for i := range acts {
		if !acts[i].ExpiryDue(now) {
			continue
		}
		refreshed, err := s.Get(ctx, acts[i].ID)
		if err != nil {
			return nil, err
		}
		acts[i] = *refreshed
	}
	return acts, nil
}

// ActiveBySession returns the session's currently active activity with lazy
// expiry applied, or nil when none is live.
func (s *Service) ActiveBySession(ctx context.Context, sessionID string) (*Activity, error) {
	act, err := s.repo.ActiveBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("finding active activity: %w", err)
	}

	refreshed, err := s.Get(ctx, act.ID)
	if err != nil {
		return nil, err
	}
	if refreshed.State != StateActive {
		return nil, nil
	}
	return refreshed, nil
}

// UpdateRequest holds the editable fields of a draft.
type UpdateRequest struct {
	Title         *string
	Description   *string
	Configuration map[string]any
	Metadata      map[string]any
	OrderIndex    *int
}

// Update edits a draft activity. Activities outside draft are structurally
// frozen; only lifecycle transitions apply to them.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Activity, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.guard.Lock(id)
	defer unlock()

	act, err := s.getLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	if act.State != StateDraft {
		return nil, ErrNotDraft
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, ErrInvalidInput
		}
		act.Title = *req.Title
	}
	if req.Description != nil {
		act.Description = *req.Description
	}
	if req.Configuration != nil {
		act.Configuration = req.Configuration
	}
	if req.Metadata != nil {
		act.Metadata = Merge(act.Metadata, req.Metadata)
	}
	if req.OrderIndex != nil {
		if *req.OrderIndex < 0 {
			return nil, ErrInvalidInput
		}
		act.OrderIndex = *req.OrderIndex
	}
	act.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, act); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrOrderIndexTaken
		}
		return nil, fmt.Errorf("updating activity: %w", err)
	}

	s.recordEvent(ctx, act, eventlog.TypeActivityUpdated,
		fmt.Sprintf("activity %q updated", act.Title))
	return act, nil
}

// Delete removes a draft activity. Non-drafts are only destroyed with their
// session.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}

	unlock := s.guard.Lock(id)
	defer unlock()

	act, err := s.getLocked(ctx, id)
	if err != nil {
		return err
	}
	if act.State != StateDraft {
		return ErrNotDraft
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting activity: %w", err)
	}
	s.guard.Forget(id)

	s.recordEvent(ctx, act, eventlog.TypeActivityDeleted,
		fmt.Sprintf("activity %q deleted", act.Title))
	return nil
}

// Transition moves an activity to target. Illegal edges fail with a
// TransitionError carrying the currently valid target set; draft -> active
// additionally requires the configuration to pass validation.
func (s *Service) Transition(ctx context.Context, id string, target State, reason string) (*Activity, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}

	unlock := s.guard.Lock(id)
	defer unlock()

	act, err := s.getLocked(ctx, id)
	if err != nil {
		return nil, err
	}

	def, err := s.registry.Resolve(act.Type)
	if err != nil {
		// The type was registered once (the instance exists) but is gone
		// now; freeze the write path instead of silently proceeding.
		return nil, fmt.Errorf("%w: %q", registry.ErrTypeUnavailable, act.Type)
	}

	valid := s.validTargets(act, def)
	if !ValidState(target) || !contains(valid, target) {
		return nil, &TransitionError{From: act.State, To: target, Valid: valid}
	}

	if act.State == StateDraft && target == StateActive {
		if res := def.Schema.Validate(act.Configuration); !res.Valid {
			return nil, &ConfigurationError{Result: res}
		}
	}

	now := s.now()
	from := act.State
	act.State = target
	act.UpdatedAt = now

	if target == StateActive && act.ExpiresAt == nil {
		if seconds, ok := act.Metadata.DurationSeconds(); ok && seconds > 0 {
			deadline := now.Add(time.Duration(seconds) * time.Second)
			act.ExpiresAt = &deadline
		}
	}

	if err := s.repo.Update(ctx, act); err != nil {
		return nil, fmt.Errorf("updating activity: %w", err)
	}

	s.notifyStateChange(def, act, from, target)
	s.recordEvent(ctx, act, eventlog.TypeStateChanged,
		transitionSummary(act, from, target, reason))
	s.logger.Info("activity state changed",
		"activity_id", act.ID, "from", from, "to", target, "reason", reason)
	return act, nil
}

// ValidateConfig runs the pre-submission configuration check for a type.
// Failures are data, not errors: admins fix the configuration and retry.
func (s *Service) ValidateConfig(typeID string, cfg map[string]any) (schema.Result, error) {
	def, err := s.registry.Resolve(typeID)
	if err != nil {
		return schema.Result{}, err
	}
	return def.Schema.Validate(cfg), nil
}

// LoadLocked loads an activity with lazy expiry applied. The caller must
// hold the activity's guard lock; the response collector shares the guard so
// submission checks and state changes serialize with transitions.
func (s *Service) LoadLocked(ctx context.Context, id string) (*Activity, error) {
	return s.getLocked(ctx, id)
}

// CompleteLocked transitions a loaded activity to completed, with hooks and
// timeline recording. The caller must hold the activity's guard lock.
func (s *Service) CompleteLocked(ctx context.Context, act *Activity, reason string) error {
	if act.State == StateCompleted {
		return nil
	}

	from := act.State
	act.State = StateCompleted
	act.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, act); err != nil {
		return fmt.Errorf("completing activity: %w", err)
	}

	if def, err := s.registry.Resolve(act.Type); err == nil {
		s.notifyStateChange(def, act, from, StateCompleted)
	}
	s.recordEvent(ctx, act, eventlog.TypeStateChanged,
		transitionSummary(act, from, StateCompleted, reason))
	s.logger.Info("activity completed", "activity_id", act.ID, "reason", reason)
	return nil
}

// TransitionsFor reports the targets the activity can move to right now,
// including the type's optional veto. When the type is no longer registered
// the framework table alone applies; transition attempts will still fail
// until the type returns.
func (s *Service) TransitionsFor(act *Activity) []State {
	def, err := s.registry.Resolve(act.Type)
	if err != nil {
		return ValidTransitions(act.State)
	}
	return s.validTargets(act, def)
}

// getLocked loads an activity and applies lazy expiry. Callers must hold the
// activity's guard lock.
func (s *Service) getLocked(ctx context.Context, id string) (*Activity, error) {
	act, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading activity: %w", err)
	}

	if err := s.expireLocked(ctx, act); err != nil {
		return nil, err
	}
	return act, nil
}

// expireLocked applies the lazy expiry transition when the deadline has
// passed. There is no background timer; the deadline only takes effect at
// the moment of interaction.
func (s *Service) expireLocked(ctx context.Context, act *Activity) error {
	now := s.now()
	if !act.ExpiryDue(now) {
		return nil
	}

	from := act.State
	act.State = StateCompleted
	act.UpdatedAt = now
	if err := s.repo.Update(ctx, act); err != nil {
		return fmt.Errorf("expiring activity: %w", err)
	}

	if def, err := s.registry.Resolve(act.Type); err == nil {
		s.notifyStateChange(def, act, from, StateCompleted)
	}
	s.recordEvent(ctx, act, eventlog.TypeStateChanged,
		transitionSummary(act, from, StateCompleted, "deadline reached"))
	s.logger.Info("activity expired", "activity_id", act.ID, "expires_at", act.ExpiresAt)
	return nil
}

// validTargets narrows the framework table by the type's optional veto.
func (s *Service) validTargets(act *Activity, def registry.Definition) []State {
	table := ValidTransitions(act.State)
	vetoer, ok := def.Handler.(registry.TransitionVetoer)
	if !ok {
		return table
	}
	allowed := make([]State, 0, len(table))
	for _, target := range table {
		if vetoer.CanTransition(string(act.State), string(target)) {
			allowed = append(allowed, target)
		}
	}
	return allowed
}

func (s *Service) notifyStateChange(def registry.Definition, act *Activity, from, to State) {
	if observer, ok := def.Handler.(registry.StateObserver); ok {
		observer.OnStateChange(act.ID, string(from), string(to), act.Metadata)
	}
}

func (s *Service) recordEvent(ctx context.Context, act *Activity, t eventlog.EventType, summary string) {
	if s.events == nil {
		return
	}
	s.events.Record(ctx, eventlog.Event{
		SessionID:  act.SessionID,
		ActivityID: &act.ID,
		Type:       t,
		Summary:    summary,
	})
}

func transitionSummary(act *Activity, from, to State, reason string) string {
	if reason == "" {
		return fmt.Sprintf("activity %q moved %s -> %s", act.Title, from, to)
	}
	return fmt.Sprintf("activity %q moved %s -> %s (%s)", act.Title, from, to, reason)
}

func contains(states []State, target State) bool {
	for _, s := range states {
		if s == target {
			return true
		}
	}
	return false
}
