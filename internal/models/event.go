package models

import "time"

// AssessmentEvent is a single audit-log entry.
type AssessmentEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // ASSESSED | RESCORED | STATUS_CHANGE | SIMULATED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
