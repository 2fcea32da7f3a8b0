package activity

import "context"

// Repository provides persistence for activities.
type Repository interface {
	Create(ctx context.Context, act *Activity) error
	Get(ctx context.Context, id string) (*Activity, error)
	Update(ctx context.Context, act *Activity) error
	Delete(ctx context.Context, id string) error
	ListBySession(ctx context.Context, sessionID string) ([]Activity, error)
	ActiveBySession(ctx context.Context, sessionID string) (*Activity, error)
}

// SessionDirectory answers whether a session exists and accepts activities.
type SessionDirectory interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
}
