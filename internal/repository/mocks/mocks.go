package mocks

import (
	"context"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/domain/participant"
	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/stretchr/testify/mock"
)

// SessionRepository is a mock for session.Repository.
type SessionRepository struct {
	mock.Mock
}

func (m *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) GetByJoinCode(ctx context.Context, code string) (*session.Session, error) {
	args := m.Called(ctx, code)
	if sess, ok := args.Get(0).(*session.Session); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *SessionRepository) Update(ctx context.Context, sess *session.Session) error {
	args := m.Called(ctx, sess)
	return args.Error(0)
}

func (m *SessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SessionRepository) List(ctx context.Context, limit, offset int) ([]session.Session, error) {
	args := m.Called(ctx, limit, offset)
	if list, ok := args.Get(0).([]session.Session); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SessionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Create(ctx context.Context, act *activity.Activity) error {
	args := m.Called(ctx, act)
	return args.Error(0)
}

func (m *ActivityRepository) Get(ctx context.Context, id string) (*activity.Activity, error) {
	args := m.Called(ctx, id)
	if act, ok := args.Get(0).(*activity.Activity); ok {
		return act, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) Update(ctx context.Context, act *activity.Activity) error {
	args := m.Called(ctx, act)
	return args.Error(0)
}

func (m *ActivityRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ActivityRepository) ListBySession(ctx context.Context, sessionID string) ([]activity.Activity, error) {
	args := m.Called(ctx, sessionID)
	if list, ok := args.Get(0).([]activity.Activity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ActivityRepository) ActiveBySession(ctx context.Context, sessionID string) (*activity.Activity, error) {
	args := m.Called(ctx, sessionID)
	if act, ok := args.Get(0).(*activity.Activity); ok {
		return act, args.Error(1)
	}
	return nil, args.Error(1)
}

// SessionDirectory is a mock for activity.SessionDirectory.
type SessionDirectory struct {
	mock.Mock
}

func (m *SessionDirectory) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// ResponseRepository is a mock for response.Repository.
type ResponseRepository struct {
	mock.Mock
}

func (m *ResponseRepository) Create(ctx context.Context, resp *response.Response) error {
	args := m.Called(ctx, resp)
	return args.Error(0)
}

func (m *ResponseRepository) ListByActivity(ctx context.Context, activityID string, opts response.ListOptions) ([]response.Response, error) {
	args := m.Called(ctx, activityID, opts)
	if list, ok := args.Get(0).([]response.Response); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ResponseRepository) CountByActivity(ctx context.Context, activityID string) (int, error) {
	args := m.Called(ctx, activityID)
	return args.Int(0), args.Error(1)
}

func (m *ResponseRepository) HasParticipantResponse(ctx context.Context, activityID, participantID string) (bool, error) {
	args := m.Called(ctx, activityID, participantID)
	return args.Bool(0), args.Error(1)
}

func (m *ResponseRepository) LastResponseAt(ctx context.Context, activityID string) (*time.Time, error) {
	args := m.Called(ctx, activityID)
	if t, ok := args.Get(0).(*time.Time); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

// ParticipantRepository is a mock for participant.Repository.
type ParticipantRepository struct {
	mock.Mock
}

func (m *ParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ParticipantRepository) Get(ctx context.Context, id string) (*participant.Participant, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*participant.Participant); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ParticipantRepository) Update(ctx context.Context, p *participant.Participant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ParticipantRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ParticipantRepository) ListBySession(ctx context.Context, sessionID string) ([]participant.Participant, error) {
	args := m.Called(ctx, sessionID)
	if list, ok := args.Get(0).([]participant.Participant); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ParticipantRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

func (m *ParticipantRepository) NameExists(ctx context.Context, sessionID, displayName string) (bool, error) {
	args := m.Called(ctx, sessionID, displayName)
	return args.Bool(0), args.Error(1)
}

// EventRepository is a mock for eventlog.Repository.
type EventRepository struct {
	mock.Mock
}

func (m *EventRepository) Record(ctx context.Context, event *eventlog.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventRepository) List(ctx context.Context, sessionID string, opts eventlog.ListOptions) ([]eventlog.Event, error) {
	args := m.Called(ctx, sessionID, opts)
	if list, ok := args.Get(0).([]eventlog.Event); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
