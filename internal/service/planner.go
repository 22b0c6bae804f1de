package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"opterra/internal/models"
	"opterra/internal/opterra"
	"opterra/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrUnknownRepair  = errors.New("unknown repair option")
	ErrNoRepairs      = errors.New("at least one repair option is required")
	ErrInvalidHorizon = errors.New("projection months must be between 1 and 120")
)

const maxProjectionMonths = 120

type PlannerService struct {
	cfg            opterra.Config
	assessmentRepo repository.AssessmentRepo
	eventRepo      repository.EventRepo
}

func NewPlannerService(cfg opterra.Config, assessmentRepo repository.AssessmentRepo, eventRepo repository.EventRepo) *PlannerService {
	return &PlannerService{cfg: cfg, assessmentRepo: assessmentRepo, eventRepo: eventRepo}
}

// Catalog returns the fixed set of repair options.
func (s *PlannerService) Catalog() []opterra.RepairOption {
	return opterra.Catalog()
}

// Simulate folds the selected repair options onto a stored assessment's
// metrics and returns the before/after pair. The stored row is not touched;
// the simulation is a what-if view only.
func (s *PlannerService) Simulate(ctx context.Context, id string, repairIDs []string) (SimulationResult, error) {
	if len(repairIDs) == 0 {
		return SimulationResult{}, ErrNoRepairs
	}

	a, err := s.load(ctx, id)
	if err != nil {
		return SimulationResult{}, err
	}

	opts := make([]opterra.RepairOption, 0, len(repairIDs))
	for _, rid := range repairIDs {
		opt, ok := opterra.FindRepair(rid)
		if !ok {
			return SimulationResult{}, fmt.Errorf("%w: %q", ErrUnknownRepair, rid)
		}
		opts = append(opts, opt)
	}

	after := opterra.Simulate(s.cfg, a.Metrics, opts)

	if err := s.eventRepo.Append(ctx, models.AssessmentEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        EventSimulated,
		Description: fmt.Sprintf("Simulated %d repair(s) on %q: health %d -> %d", len(opts), a.Label, a.Metrics.HealthScore, after.HealthScore),
		Metadata: map[string]any{
			"assessment_id": a.ID,
			"repairs":       repairIDs,
			"health_before": a.Metrics.HealthScore,
			"health_after":  after.HealthScore,
		},
	}); err != nil {
		return SimulationResult{}, err
	}

	return SimulationResult{
		AssessmentID: a.ID,
		Before:       a.Metrics,
		After:        after,
		Applied:      opts,
	}, nil
}

// Project forecasts health and failure probability at the given horizon with
// no intervention.
func (s *PlannerService) Project(ctx context.Context, id string, months int) (opterra.Projection, error) {
	if months < 1 || months > maxProjectionMonths {
		return opterra.Projection{}, ErrInvalidHorizon
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return opterra.Projection{}, err
	}
	return opterra.Project(s.cfg, a.Metrics, months), nil
}

func (s *PlannerService) load(ctx context.Context, id string) (*models.Assessment, error) {
	a, err := s.assessmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAssessmentNotFound
	}
	return a, nil
}
