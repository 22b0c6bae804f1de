package service

import (
	"context"
	"time"

	"opterra/internal/repository"
)

// Re-scoring policy.
const (
	monitorBatchSize = 50
	// minRescoreAge keeps the loop from rewriting rows scored moments ago.
	minRescoreAge = time.Hour
)

// AgingMonitorService walks recent assessments on a timer and re-scores them
// with the wall-clock time elapsed since the last scoring, so stored health
// drifts downward the way the unit actually ages. Tier transitions produce
// STATUS_CHANGE events via the assessor.
type AgingMonitorService struct {
	assessor       Assessor
	assessmentRepo repository.AssessmentRepo
	eventRepo      repository.EventRepo
}

func NewAgingMonitorService(assessor Assessor, assessmentRepo repository.AssessmentRepo, eventRepo repository.EventRepo) *AgingMonitorService {
	return &AgingMonitorService{
		assessor:       assessor,
		assessmentRepo: assessmentRepo,
		eventRepo:      eventRepo,
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *AgingMonitorService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.sweep(ctx, now.UTC())
		}
	}
}

// sweep re-scores the current batch; individual failures skip the row so one
// bad record cannot stall the loop.
func (s *AgingMonitorService) sweep(ctx context.Context, now time.Time) {
	batch, err := s.assessmentRepo.ListRecent(ctx, monitorBatchSize)
	if err != nil {
		return
	}
	for _, a := range batch {
		if now.Sub(a.ScoredAt) < minRescoreAge {
			continue
		}
		_, _ = s.assessor.Rescore(ctx, a, now)
	}
}
