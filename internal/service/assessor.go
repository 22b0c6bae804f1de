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

// Domain errors surfaced to the HTTP layer.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrLabelRequired      = errors.New("label is required")
)

const defaultListLimit = 20

type AssessorService struct {
	cfg            opterra.Config
	assessmentRepo repository.AssessmentRepo
	eventRepo      repository.EventRepo
}

func NewAssessorService(cfg opterra.Config, assessmentRepo repository.AssessmentRepo, eventRepo repository.EventRepo) *AssessorService {
	return &AssessorService{cfg: cfg, assessmentRepo: assessmentRepo, eventRepo: eventRepo}
}

// Assess validates and scores one inspection, persists the assessment, and
// appends an ASSESSED audit event. Validation failures come back wrapped in
// opterra.ErrInvalidInput and nothing is persisted.
func (s *AssessorService) Assess(ctx context.Context, label string, in opterra.InspectionInput) (models.Assessment, error) {
	if label == "" {
		return models.Assessment{}, ErrLabelRequired
	}

	m, err := opterra.Score(s.cfg, in)
	if err != nil {
		return models.Assessment{}, err
	}
	rec := opterra.Recommend(s.cfg, m, in)

	now := time.Now().UTC()
	a := models.Assessment{
		ID:             uuid.NewString(),
		Label:          label,
		Input:          in,
		Metrics:        m,
		Recommendation: rec,
		CreatedAt:      now,
		ScoredAt:       now,
	}

	if err := s.assessmentRepo.Save(ctx, a); err != nil {
		return models.Assessment{}, err
	}

	if err := s.eventRepo.Append(ctx, models.AssessmentEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now,
		Type:        EventAssessed,
		Description: fmt.Sprintf("Assessed %q: health %d (%s), action %s", label, m.HealthScore, m.Status, rec.Action),
		Metadata: map[string]any{
			"assessment_id": a.ID,
			"health_score":  m.HealthScore,
			"status":        m.Status,
			"action":        rec.Action,
		},
	}); err != nil {
		return models.Assessment{}, err
	}

	return a, nil
}

// Get returns one stored assessment or ErrAssessmentNotFound.
func (s *AssessorService) Get(ctx context.Context, id string) (*models.Assessment, error) {
	a, err := s.assessmentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAssessmentNotFound
	}
	return a, nil
}

// List returns the most recent assessments, newest first.
func (s *AssessorService) List(ctx context.Context, limit int) ([]models.Assessment, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.assessmentRepo.ListRecent(ctx, limit)
}

// Preview returns a non-persisting view of a stored assessment re-scored as
// of now. Used by the live stream; the stored row is untouched.
func (s *AssessorService) Preview(ctx context.Context, id string, now time.Time) (models.Assessment, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return models.Assessment{}, err
	}

	in := a.Input.Aged(yearsSince(a.ScoredAt, now))

	m, err := opterra.Score(s.cfg, in)
	if err != nil {
		return models.Assessment{}, err
	}
	view := *a
	view.Metrics = m
	view.Recommendation = opterra.Recommend(s.cfg, m, in)
	view.ScoredAt = now.UTC()
	return view, nil
}

// Rescore re-runs the engine with the unit's calendar age advanced to now and
// persists the refreshed metrics. The stored inspection input is treated as
// immutable; aging is applied to a copy. Every re-score appends a RESCORED
// audit event, plus a STATUS_CHANGE event when the tier moved.
func (s *AssessorService) Rescore(ctx context.Context, a models.Assessment, now time.Time) (models.Assessment, error) {
	in := a.Input.Aged(yearsSince(a.ScoredAt, now))

	m, err := opterra.Score(s.cfg, in)
	if err != nil {
		return models.Assessment{}, err
	}
	rec := opterra.Recommend(s.cfg, m, in)

	if err := s.assessmentRepo.UpdateMetrics(ctx, a.ID, m, rec, now.UTC()); err != nil {
		return models.Assessment{}, err
	}

	prevStatus := a.Metrics.Status
	a.Metrics = m
	a.Recommendation = rec
	a.ScoredAt = now.UTC()

	if err := s.eventRepo.Append(ctx, models.AssessmentEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  now.UTC(),
		Type:        EventRescored,
		Description: fmt.Sprintf("Rescored %q: health %d (%s)", a.Label, m.HealthScore, m.Status),
		Metadata: map[string]any{
			"assessment_id": a.ID,
			"health_score":  m.HealthScore,
			"status":        m.Status,
		},
	}); err != nil {
		return models.Assessment{}, err
	}

	if m.Status != prevStatus {
		if err := s.eventRepo.Append(ctx, models.AssessmentEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  now.UTC(),
			Type:        EventStatusChange,
			Description: fmt.Sprintf("Status of %q changed %s -> %s", a.Label, prevStatus, m.Status),
			Metadata: map[string]any{
				"assessment_id": a.ID,
				"from":          prevStatus,
				"to":            m.Status,
				"health_score":  m.HealthScore,
			},
		}); err != nil {
			return models.Assessment{}, err
		}
	}

	return a, nil
}

// yearsSince converts the wall-clock gap between two instants to fractional
// years, never negative.
func yearsSince(from, to time.Time) float64 {
	elapsed := to.Sub(from)
	if elapsed < 0 {
		return 0
	}
	return elapsed.Hours() / (24 * 365.25)
}
