package service

import (
	"time"

	"opterra/internal/opterra"
)

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "ASSESSED", "RESCORED", "STATUS_CHANGE", "SIMULATED"
}

// Event types appended by the services.
const (
	EventAssessed     = "ASSESSED"
	EventRescored     = "RESCORED"
	EventStatusChange = "STATUS_CHANGE"
	EventSimulated    = "SIMULATED"
)

// SimulationResult pairs the stored metrics with the hypothetical post-repair
// snapshot.
type SimulationResult struct {
	AssessmentID string                 `json:"assessment_id"`
	Before       opterra.Metrics        `json:"before"`
	After        opterra.Metrics        `json:"after"`
	Applied      []opterra.RepairOption `json:"applied"`
}
