// Package events defines the structure for events that are sent to Kafka.
package events

import "time"

// SessionCompletedEvent represents one completed tutoring session with a companion.
type SessionCompletedEvent struct {
	CompanionID string    `json:"companion_id"`
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}
