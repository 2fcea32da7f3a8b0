package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/crowdkit/crowdkit/internal/domain/response"
	"github.com/crowdkit/crowdkit/internal/repository"
)

// ResponseRepository implements response.Repository for SQLite
type ResponseRepository struct {
	db *DB
}

// NewResponseRepository creates a new ResponseRepository
func NewResponseRepository(db *DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

// Create stores a new response
func (r *ResponseRepository) Create(ctx context.Context, resp *response.Response) error {
	data, err := marshalJSON(resp.Data)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO responses (
			id, session_id, activity_id, participant_id, data, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		resp.ID,
		resp.SessionID,
		resp.ActivityID,
		resp.ParticipantID,
		data,
		resp.CreatedAt,
		resp.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create response: %w", err)
	}

	return nil
}

// ListByActivity returns an activity's responses, oldest first so aggregation
// sees submissions in arrival order
func (r *ResponseRepository) ListByActivity(ctx context.Context, activityID string, opts response.ListOptions) ([]response.Response, error) {
	query := `
		SELECT id, session_id, activity_id, participant_id, data, created_at, updated_at
		FROM responses
		WHERE activity_id = ?
		ORDER BY created_at ASC
		LIMIT ? OFFSET ?
	`

	rows, err := r.db.QueryContext(ctx, query, activityID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list responses: %w", err)
	}
	defer rows.Close()

	var responses []response.Response
	for rows.Next() {
		var resp response.Response
		var data string
		err := rows.Scan(
			&resp.ID,
			&resp.SessionID,
			&resp.ActivityID,
			&resp.ParticipantID,
			&data,
			&resp.CreatedAt,
			&resp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if resp.Data, err = unmarshalJSON(data); err != nil {
			return nil, err
		}
		responses = append(responses, resp)
	}

	return responses, rows.Err()
}

// CountByActivity returns how many responses an activity has
func (r *ResponseRepository) CountByActivity(ctx context.Context, activityID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM responses WHERE activity_id = ?", activityID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return count, nil
}

// HasParticipantResponse reports whether the participant already submitted
func (r *ResponseRepository) HasParticipantResponse(ctx context.Context, activityID, participantID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM responses WHERE activity_id = ? AND participant_id = ?",
		activityID, participantID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check response: %w", err)
	}
	return count > 0, nil
}

// LastResponseAt returns the newest submission time, or nil with no responses
func (r *ResponseRepository) LastResponseAt(ctx context.Context, activityID string) (*time.Time, error) {
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(created_at) FROM responses WHERE activity_id = ?", activityID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to find last response: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}
