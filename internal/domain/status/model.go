package status

import "time"

// ActivityStatus is the polling payload for one activity. Clients diff
// response_count and last_response_at between polls to detect change.
type ActivityStatus struct {
	ActivityID       string         `json:"activity_id"`
	Status           string         `json:"status"`
	State            string         `json:"state"`
	ResponseCount    int            `json:"response_count"`
	ExpiresAt        *time.Time     `json:"expires_at,omitempty"`
	ActivityMetadata map[string]any `json:"activity_metadata"`
	ValidTransitions []string       `json:"valid_transitions"`
	Results          map[string]any `json:"results,omitempty"`
	LastResponseAt   *time.Time     `json:"last_response_at,omitempty"`
	LastUpdated      time.Time      `json:"last_updated"`
}
