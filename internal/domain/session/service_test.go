package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/crowdkit/crowdkit/internal/repository"
	"github.com/crowdkit/crowdkit/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubActivities struct {
	active *activity.Activity
}

func (s *stubActivities) ActiveBySession(_ context.Context, _ string) (*activity.Activity, error) {
	return s.active, nil
}

func TestSessionService_Create(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}

	repo.On("CodeExists", ctx, mock.Anything).Return(false, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := session.NewService(repo, &mocks.ParticipantRepository{}, &stubActivities{}, nil, nil)
	sess, err := svc.Create(ctx, session.CreateRequest{Title: "all hands", MaxParticipants: 50})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Len(t, sess.JoinCode, 6)
	require.Len(t, sess.AdminCode, 6)
	require.NotEqual(t, sess.JoinCode, sess.AdminCode)
	require.Equal(t, session.StatusActive, sess.Status)
}

func TestSessionService_Create_CodeCollisionRetries(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}

	// First generated code collides, the rest are fresh.
	repo.On("CodeExists", ctx, mock.Anything).Return(true, nil).Once()
	repo.On("CodeExists", ctx, mock.Anything).Return(false, nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := session.NewService(repo, &mocks.ParticipantRepository{}, &stubActivities{}, nil, nil)
	_, err := svc.Create(ctx, session.CreateRequest{Title: "retry"})
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "CodeExists", 3)
}

func TestSessionService_Create_InvalidInput(t *testing.T) {
	svc := session.NewService(&mocks.SessionRepository{}, &mocks.ParticipantRepository{}, &stubActivities{}, nil, nil)

	_, err := svc.Create(context.Background(), session.CreateRequest{Title: ""})
	require.ErrorIs(t, err, session.ErrInvalidInput)

	_, err = svc.Create(context.Background(), session.CreateRequest{Title: "x", MaxParticipants: -1})
	require.ErrorIs(t, err, session.ErrInvalidInput)
}

func TestSessionService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	repo.On("Get", ctx, "ghost").Return(nil, repository.ErrNotFound)

	svc := session.NewService(repo, &mocks.ParticipantRepository{}, &stubActivities{}, nil, nil)
	_, err := svc.Get(ctx, "ghost")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSessionService_End_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	endedAt := time.Now()

	repo.On("Get", ctx, "s1").Return(&session.Session{
		ID:      "s1",
		Title:   "done",
		Status:  session.StatusEnded,
		EndedAt: &endedAt,
	}, nil)

	svc := session.NewService(repo, &mocks.ParticipantRepository{}, &stubActivities{}, nil, nil)
	sess, err := svc.End(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, session.StatusEnded, sess.Status)
	repo.AssertNotCalled(t, "Update", ctx, mock.Anything)
}

func TestSessionService_End(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}

	repo.On("Get", ctx, "s1").Return(&session.Session{
		ID:     "s1",
		Title:  "live",
		Status: session.StatusActive,
	}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(sess *session.Session) bool {
		return sess.Status == session.StatusEnded && sess.EndedAt != nil
	})).Return(nil)

	svc := session.NewService(repo, &mocks.ParticipantRepository{}, &stubActivities{}, nil, nil)
	sess, err := svc.End(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, sess.EndedAt)
}

func TestSessionService_Status(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	participants := &mocks.ParticipantRepository{}

	repo.On("Get", ctx, "s1").Return(&session.Session{
		ID:     "s1",
		Status: session.StatusActive,
	}, nil)
	participants.On("CountBySession", ctx, "s1").Return(7, nil)

	current := &activity.Activity{ID: "a1", State: activity.StateActive}
	svc := session.NewService(repo, participants, &stubActivities{active: current}, nil, nil)

	snapshot, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 7, snapshot.ParticipantCount)
	require.NotNil(t, snapshot.CurrentActivityID)
	require.Equal(t, "a1", *snapshot.CurrentActivityID)
	require.False(t, snapshot.LastUpdated.IsZero())
}

func TestSessionService_Status_NoActiveActivity(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.SessionRepository{}
	participants := &mocks.ParticipantRepository{}

	repo.On("Get", ctx, "s1").Return(&session.Session{ID: "s1", Status: session.StatusActive}, nil)
	participants.On("CountBySession", ctx, "s1").Return(0, nil)

	svc := session.NewService(repo, participants, &stubActivities{}, nil, nil)
	snapshot, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, snapshot.CurrentActivityID)
}
