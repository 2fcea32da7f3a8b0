package eventlog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
	"github.com/crowdkit/crowdkit/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEventlogService_Record(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EventRepository{}

	repo.On("Record", ctx, mock.MatchedBy(func(e *eventlog.Event) bool {
		return e.SessionID == "s1" && !e.CreatedAt.IsZero()
	})).Return(nil)

	svc := eventlog.NewService(repo, nil)
	svc.Record(ctx, eventlog.Event{
		SessionID: "s1",
		Type:      eventlog.TypeSessionCreated,
		Summary:   "session created",
	})
	repo.AssertExpectations(t)
}

func TestEventlogService_Record_BestEffort(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EventRepository{}
	repo.On("Record", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := eventlog.NewService(repo, nil)
	// Must not panic or surface the failure.
	svc.Record(ctx, eventlog.Event{SessionID: "s1", Type: eventlog.TypeSessionEnded})
}

func TestEventlogService_List_ClampsLimit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.EventRepository{}

	repo.On("List", ctx, "s1", eventlog.ListOptions{Limit: 100}).Return([]eventlog.Event{}, nil).Twice()

	svc := eventlog.NewService(repo, nil)
	_, err := svc.List(ctx, "s1", eventlog.ListOptions{})
	require.NoError(t, err)
	_, err = svc.List(ctx, "s1", eventlog.ListOptions{Limit: 9999})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
