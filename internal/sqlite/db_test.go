package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func insertSession(t *testing.T, db *DB, id, joinCode, adminCode string) {
	t.Helper()
	now := time.Now()
	sess := &session.Session{
		ID:        id,
		Title:     "test session",
		JoinCode:  joinCode,
		AdminCode: adminCode,
		Status:    session.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, NewSessionRepository(db).Create(context.Background(), sess))
}

func insertActivity(t *testing.T, db *DB, id, sessionID string, orderIndex int) {
	t.Helper()
	now := time.Now()
	act := &activity.Activity{
		ID:            id,
		SessionID:     sessionID,
		Type:          "poll",
		Title:         "test poll",
		Configuration: map[string]any{"question": "q", "options": []any{"a", "b"}},
		Metadata:      activity.Metadata{"duration_seconds": 300},
		State:         activity.StateDraft,
		OrderIndex:    orderIndex,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, NewActivityRepository(db).Create(context.Background(), act))
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"sessions",
		"participants",
		"activities",
		"responses",
		"session_events",
	}

	for _, table := range tables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		require.Equal(t, table, name)
	}
}
