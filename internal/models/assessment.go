package models

import (
	"time"

	"opterra/internal/opterra"
)

// Assessment is one scored inspection of one unit: the immutable input, the
// metrics it produced, and the derived recommendation. The aging monitor
// refreshes Metrics/Recommendation/ScoredAt as calendar time passes; the
// input and CreatedAt never change.
type Assessment struct {
	ID             string                  `json:"id"`
	Label          string                  `json:"label"` // unit serial or address label
	Input          opterra.InspectionInput `json:"input"`
	Metrics        opterra.Metrics         `json:"metrics"`
	Recommendation opterra.Recommendation  `json:"recommendation"`
	CreatedAt      time.Time               `json:"created_at"`
	ScoredAt       time.Time               `json:"scored_at"`
}
