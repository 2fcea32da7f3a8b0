package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crowdkit/crowdkit/internal/domain/session"
	"github.com/crowdkit/crowdkit/internal/repository"
)

// SessionRepository implements session.Repository for SQLite
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session
func (r *SessionRepository) Create(ctx context.Context, sess *session.Session) error {
	query := `
		INSERT INTO sessions (
			id, title, join_code, admin_code, max_participants,
			status, created_at, updated_at, ended_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		sess.ID,
		sess.Title,
		sess.JoinCode,
		sess.AdminCode,
		sess.MaxParticipants,
		sess.Status,
		sess.CreatedAt,
		sess.UpdatedAt,
		sess.EndedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	return r.getWhere(ctx, "id = ?", id)
}

// GetByJoinCode retrieves a session by its join code
func (r *SessionRepository) GetByJoinCode(ctx context.Context, code string) (*session.Session, error) {
	return r.getWhere(ctx, "join_code = ?", code)
}

func (r *SessionRepository) getWhere(ctx context.Context, where string, arg any) (*session.Session, error) {
	query := `
		SELECT
			id, title, join_code, admin_code, max_participants,
			status, created_at, updated_at, ended_at
		FROM sessions
		WHERE ` + where

	var sess session.Session
	var endedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&sess.ID,
		&sess.Title,
		&sess.JoinCode,
		&sess.AdminCode,
		&sess.MaxParticipants,
		&sess.Status,
		&sess.CreatedAt,
		&sess.UpdatedAt,
		&endedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}

	return &sess, nil
}

// Exists reports whether a session with the given ID exists
func (r *SessionRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sessions WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return count > 0, nil
}

// Update updates a session
func (r *SessionRepository) Update(ctx context.Context, sess *session.Session) error {
	query := `
		UPDATE sessions
		SET title = ?, max_participants = ?, status = ?,
		    updated_at = ?, ended_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		sess.Title,
		sess.MaxParticipants,
		sess.Status,
		sess.UpdatedAt,
		sess.EndedAt,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
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

// Delete removes a session and cascades to its participants, activities,
// and responses
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
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

// List returns sessions ordered by creation time, newest first
func (r *SessionRepository) List(ctx context.Context, limit, offset int) ([]session.Session, error) {
	query := `
		SELECT
			id, title, join_code, admin_code, max_participants,
			status, created_at, updated_at, ended_at
		FROM sessions
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var sess session.Session
		var endedAt sql.NullTime
		err := rows.Scan(
			&sess.ID,
			&sess.Title,
			&sess.JoinCode,
			&sess.AdminCode,
			&sess.MaxParticipants,
			&sess.Status,
			&sess.CreatedAt,
			&sess.UpdatedAt,
			&endedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if endedAt.Valid {
			sess.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// CodeExists reports whether a join or admin code is already in use
func (r *SessionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sessions WHERE join_code = ? OR admin_code = ?",
		code, code).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check code: %w", err)
	}
	return count > 0, nil
}
