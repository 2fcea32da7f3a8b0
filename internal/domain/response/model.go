package response

import (
	"context"
	"time"
)

// Response is one participant submission for an activity. Responses are
// immutable after creation; the shape of Data is defined by the activity
// type that processed it.
type Response struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"session_id"`
	ActivityID    string         `json:"activity_id"`
	ParticipantID string         `json:"participant_id"`
	Data          map[string]any `json:"response_data"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ListOptions pages response reads.
type ListOptions struct {
	Limit  int
	Offset int
}

// Repository provides persistence for responses.
type Repository interface {
	Create(ctx context.Context, resp *Response) error
	ListByActivity(ctx context.Context, activityID string, opts ListOptions) ([]Response, error)
	CountByActivity(ctx context.Context, activityID string) (int, error)
	HasParticipantResponse(ctx context.Context, activityID, participantID string) (bool, error)
	LastResponseAt(ctx context.Context, activityID string) (*time.Time, error)
}
