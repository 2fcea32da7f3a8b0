package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/stretchr/testify/require"
)

func newResponse(id, sessionID, activityID, participantID string, at time.Time) *response.Response {
	return &response.Response{
		ID:            id,
		SessionID:     sessionID,
		ActivityID:    activityID,
		ParticipantID: participantID,
		Data:          map[string]any{"selected_options": []any{"red"}},
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func TestResponseRepository_CreateListCount(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertSession(t, db, "s1", "ABC234", "XYZ789")
	insertActivity(t, db, "a1", "s1", 0)

	repo := NewResponseRepository(db)
	base := time.Now()
	require.NoError(t, repo.Create(ctx, newResponse("r1", "s1", "a1", "p1", base)))
	require.NoError(t, repo.Create(ctx, newResponse("r2", "s1", "a1", "p2", base.Add(time.Second))))

	count, err := repo.CountByActivity(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	list, err := repo.ListByActivity(ctx, "a1", response.ListOptions{Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "r1", list[0].ID, "oldest first")
	require.Equal(t, []any{"red"}, list[0].Data["selected_options"])
}

func TestResponseRepository_HasParticipantResponse(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertSession(t, db, "s1", "ABC234", "XYZ789")
	insertActivity(t, db, "a1", "s1", 0)

	repo := NewResponseRepository(db)
	require.NoError(t, repo.Create(ctx, newResponse("r1", "s1", "a1", "p1", time.Now())))

	has, err := repo.HasParticipantResponse(ctx, "a1", "p1")
	require.NoError(t, err)
	require.True(t, has)

	has, err = repo.HasParticipantResponse(ctx, "a1", "p2")
	require.NoError(t, err)
	require.False(t, has)
}

func TestResponseRepository_LastResponseAt(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertSession(t, db, "s1", "ABC234", "XYZ789")
	insertActivity(t, db, "a1", "s1", 0)

	repo := NewResponseRepository(db)

	last, err := repo.LastResponseAt(ctx, "a1")
	require.NoError(t, err)
	require.Nil(t, last)

	base := time.Now().Truncate(time.Second)
	require.NoError(t, repo.Create(ctx, newResponse("r1", "s1", "a1", "p1", base)))
	require.NoError(t, repo.Create(ctx, newResponse("r2", "s1", "a1", "p2", base.Add(time.Minute))))

	last, err = repo.LastResponseAt(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, last)
	require.WithinDuration(t, base.Add(time.Minute), *last, time.Second)
}
