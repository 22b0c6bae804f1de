package service

import (
	"context"
	"time"

	"opterra/internal/models"
	"opterra/internal/opterra"
	"opterra/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Assessor scores field inspections and owns the assessment records.
type Assessor interface {
	Assess(ctx context.Context, label string, in opterra.InspectionInput) (models.Assessment, error)
	Get(ctx context.Context, id string) (*models.Assessment, error)
	List(ctx context.Context, limit int) ([]models.Assessment, error)
	Rescore(ctx context.Context, a models.Assessment, now time.Time) (models.Assessment, error)
	Preview(ctx context.Context, id string, now time.Time) (models.Assessment, error)
}

// Planner exposes the repair catalog, what-if simulation, and forward
// projection for a stored assessment.
type Planner interface {
	Catalog() []opterra.RepairOption
	Simulate(ctx context.Context, id string, repairIDs []string) (SimulationResult, error)
	Project(ctx context.Context, id string, months int) (opterra.Projection, error)
}

// EventLog exposes append-only audit logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.AssessmentEvent, error)
}

// AgingMonitor runs the background loop that re-scores stored assessments as
// calendar time passes. Stop via context cancellation in main() for graceful
// shutdown.
type AgingMonitor interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services.
type Service struct {
	Assessor
	Planner
	EventLog
	AgingMonitor
	Authorization
}

// AuthConfig carries token signing parameters from configuration.
type AuthConfig struct {
	SigningKey string
	TokenTTL   time.Duration
}

// NewService wires the repository layer and engine configuration into
// concrete services.
func NewService(repos *repository.Repository, cfg opterra.Config, auth AuthConfig) *Service {
	assessor := NewAssessorService(cfg, repos.Assessments, repos.Events)
	return &Service{
		Assessor:      assessor,
		Planner:       NewPlannerService(cfg, repos.Assessments, repos.Events),
		EventLog:      NewEventLogService(repos.Events),
		AgingMonitor:  NewAgingMonitorService(assessor, repos.Assessments, repos.Events),
		Authorization: NewAuthService(repos.Auth, auth),
	}
}
