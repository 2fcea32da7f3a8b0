package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crowdkit/crowdkit/internal/domain/activity"
	"github.com/crowdkit/crowdkit/internal/repository"
)

// ActivityRepository implements activity.Repository for SQLite
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create creates a new activity
func (r *ActivityRepository) Create(ctx context.Context, act *activity.Activity) error {
	cfg, err := marshalJSON(act.Configuration)
	if err != nil {
		return err
	}
	meta, err := marshalJSON(act.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO activities (
			id, session_id, type, title, description, configuration,
			metadata, state, order_index, expires_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		act.ID,
		act.SessionID,
		act.Type,
		act.Title,
		act.Description,
		cfg,
		meta,
		act.State,
		act.OrderIndex,
		act.ExpiresAt,
		act.CreatedAt,
		act.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create activity: %w", err)
	}

	return nil
}

// Get retrieves an activity by ID
func (r *ActivityRepository) Get(ctx context.Context, id string) (*activity.Activity, error) {
	query := `
		SELECT
			id, session_id, type, title, description, configuration,
			metadata, state, order_index, expires_at, created_at, updated_at
		FROM activities
		WHERE id = ?
	`

	act, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}

	return act, nil
}

// Update updates an activity
func (r *ActivityRepository) Update(ctx context.Context, act *activity.Activity) error {
	cfg, err := marshalJSON(act.Configuration)
	if err != nil {
		return err
	}
	meta, err := marshalJSON(act.Metadata)
	if err != nil {
		return err
	}

	query := `
		UPDATE activities
		SET title = ?, description = ?, configuration = ?, metadata = ?,
		    state = ?, order_index = ?, expires_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		act.Title,
		act.Description,
		cfg,
		meta,
		act.State,
		act.OrderIndex,
		act.ExpiresAt,
		act.UpdatedAt,
		act.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to update activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes an activity and cascades to its responses
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListBySession returns a session's activities ordered by order index
func (r *ActivityRepository) ListBySession(ctx context.Context, sessionID string) ([]activity.Activity, error) {
	query := `
		SELECT
			id, session_id, type, title, description, configuration,
			metadata, state, order_index, expires_at, created_at, updated_at
		FROM activities
		WHERE session_id = ?
		ORDER BY order_index ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var activities []activity.Activity
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *act)
	}

	return activities, rows.Err()
}

// ActiveBySession returns the session's activity in the active state. At most
// one activity per session is active at a time by construction; if data drift
// ever breaks that, the lowest order index wins.
func (r *ActivityRepository) ActiveBySession(ctx context.Context, sessionID string) (*activity.Activity, error) {
	query := `
		SELECT
			id, session_id, type, title, description, configuration,
			metadata, state, order_index, expires_at, created_at, updated_at
		FROM activities
		WHERE session_id = ? AND state = 'active'
		ORDER BY order_index ASC
		LIMIT 1
	`

	act, err := scanActivity(r.db.QueryRowContext(ctx, query, sessionID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active activity: %w", err)
	}

	return act, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*activity.Activity, error) {
	var act activity.Activity
	var cfg, meta string
	var expiresAt sql.NullTime
	err := row.Scan(
		&act.ID,
		&act.SessionID,
		&act.Type,
		&act.Title,
		&act.Description,
		&cfg,
		&meta,
		&act.State,
		&act.OrderIndex,
		&expiresAt,
		&act.CreatedAt,
		&act.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if act.Configuration, err = unmarshalJSON(cfg); err != nil {
		return nil, err
	}
	metadata, err := unmarshalJSON(meta)
	if err != nil {
		return nil, err
	}
	act.Metadata = activity.Metadata(metadata)
	if expiresAt.Valid {
		act.ExpiresAt = &expiresAt.Time
	}

	return &act, nil
}
