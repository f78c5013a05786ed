package models

import "time"

// Conversation statuses. A conversation starts active and ends exactly once.
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

type Conversation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	// Status is "active" or "ended"; there is no transition out of "ended".
	Status string `json:"status"`
	// Summary is set together with EndTime when the conversation ends.
	Summary   string     `json:"summary,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	// ShareToken grants read-only access without authentication. Re-sharing
	// overwrites it (last call wins).
	ShareToken string `json:"share_token,omitempty"`
}

// Ended reports whether the conversation has reached its terminal state.
func (c *Conversation) Ended() bool {
	return c.Status == StatusEnded
}
