package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/crowdkit/crowdkit/internal/domain/participant"
	"github.com/crowdkit/crowdkit/internal/repository"
)

// ParticipantRepository implements participant.Repository for SQLite
type ParticipantRepository struct {
	db *DB
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create creates a new participant
func (r *ParticipantRepository) Create(ctx context.Context, p *participant.Participant) error {
	query := `
		INSERT INTO participants (id, session_id, display_name, joined_at, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.SessionID,
		p.DisplayName,
		p.JoinedAt,
		p.LastSeenAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}

	return nil
}

// Get retrieves a participant by ID
func (r *ParticipantRepository) Get(ctx context.Context, id string) (*participant.Participant, error) {
	query := `
		SELECT id, session_id, display_name, joined_at, last_seen_at
		FROM participants
		WHERE id = ?
	`

	var p participant.Participant
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.SessionID,
		&p.DisplayName,
		&p.JoinedAt,
		&p.LastSeenAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}

	return &p, nil
}

// Update updates a participant's heartbeat fields
func (r *ParticipantRepository) Update(ctx context.Context, p *participant.Participant) error {
	query := `
		UPDATE participants
		SET display_name = ?, last_seen_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, p.DisplayName, p.LastSeenAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return fmt.Errorf("failed to update participant: %w", err)
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

// Delete removes a participant
func (r *ParticipantRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM participants WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete participant: %w", err)
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

// ListBySession returns a session's participants in join order
func (r *ParticipantRepository) ListBySession(ctx context.Context, sessionID string) ([]participant.Participant, error) {
	query := `
		SELECT id, session_id, display_name, joined_at, last_seen_at
		FROM participants
		WHERE session_id = ?
		ORDER BY joined_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []participant.Participant
	for rows.Next() {
		var p participant.Participant
		err := rows.Scan(&p.ID, &p.SessionID, &p.DisplayName, &p.JoinedAt, &p.LastSeenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// CountBySession returns how many participants a session has
func (r *ParticipantRepository) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM participants WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participants: %w", err)
	}
	return count, nil
}

// NameExists reports whether a display name is taken within a session
func (r *ParticipantRepository) NameExists(ctx context.Context, sessionID, displayName string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM participants WHERE session_id = ? AND display_name = ?",
		sessionID, displayName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check display name: %w", err)
	}
	return count > 0, nil
}
