package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/crowdkit/crowdkit/internal/domain/eventlog"
)

// EventRepository implements eventlog.Repository for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Record appends an event to the session timeline
func (r *EventRepository) Record(ctx context.Context, event *eventlog.Event) error {
	query := `
		INSERT INTO session_events (session_id, activity_id, participant_id, type, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		event.SessionID,
		event.ActivityID,
		event.ParticipantID,
		event.Type,
		event.Summary,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		event.ID = id
	}

	return nil
}

// List returns a session's timeline, newest first
func (r *EventRepository) List(ctx context.Context, sessionID string, opts eventlog.ListOptions) ([]eventlog.Event, error) {
	query := `
		SELECT id, session_id, activity_id, participant_id, type, summary, created_at
		FROM session_events
		WHERE session_id = ?
	`
	args := []any{sessionID}

	if opts.ActivityID != nil {
		query += " AND activity_id = ?"
		args = append(args, *opts.ActivityID)
	}
	if len(opts.Types) > 0 {
		placeholders := make([]string, len(opts.Types))
		for i, t := range opts.Types {
			placeholders[i] = "?"
			args = append(args, t)
		}
		query += " AND type IN (" + strings.Join(placeholders, ", ") + ")"
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, opts.Limit, opts.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []eventlog.Event
	for rows.Next() {
		var event eventlog.Event
		var activityID, participantID sql.NullString
		err := rows.Scan(
			&event.ID,
			&event.SessionID,
			&activityID,
			&participantID,
			&event.Type,
			&event.Summary,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if activityID.Valid {
			event.ActivityID = &activityID.String
		}
		if participantID.Valid {
			event.ParticipantID = &participantID.String
		}
		events = append(events, event)
	}

	return events, rows.Err()
}
