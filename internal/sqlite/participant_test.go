package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/participant"
	"github.com/crowdkit/crowdkit/internal/repository"
	"github.com/stretchr/testify/require"
)

func newParticipant(id, sessionID, name string, at time.Time) *participant.Participant {
	return &participant.Participant{
		ID:          id,
		SessionID:   sessionID,
		DisplayName: name,
		JoinedAt:    at,
		LastSeenAt:  at,
	}
}

func TestParticipantRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertSession(t, db, "s1", "ABC234", "XYZ789")

	repo := NewParticipantRepository(db)
	require.NoError(t, repo.Create(ctx, newParticipant("p1", "s1", "alice", time.Now())))

	loaded, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "alice", loaded.DisplayName)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestParticipantRepository_NameUniquePerSession(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertSession(t, db, "s1", "ABC234", "XYZ789")
	insertSession(t, db, "s2", "DEF234", "UVW789")

	repo := NewParticipantRepository(db)
	now := time.Now()
	require.NoError(t, repo.Create(ctx, newParticipant("p1", "s1", "alice", now)))
	require.ErrorIs(t, repo.Create(ctx, newParticipant("p2", "s1", "alice", now)), repository.ErrConflict)

	// Same name in a different session is fine
	require.NoError(t, repo.Create(ctx, newParticipant("p3", "s2", "alice", now)))

	taken, err := repo.NameExists(ctx, "s1", "alice")
	require.NoError(t, err)
	require.True(t, taken)
}

func TestParticipantRepository_HeartbeatAndList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	insertSession(t, db, "s1", "ABC234", "XYZ789")

	repo := NewParticipantRepository(db)
	base := time.Now()
	require.NoError(t, repo.Create(ctx, newParticipant("p1", "s1", "alice", base)))
	require.NoError(t, repo.Create(ctx, newParticipant("p2", "s1", "bob", base.Add(time.Second))))

	p, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	p.LastSeenAt = base.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, p))

	list, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "alice", list[0].DisplayName, "join order")

	count, err := repo.CountBySession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, repo.Delete(ctx, "p2"))
	count, err = repo.CountBySession(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}
