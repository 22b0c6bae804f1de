package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"opterra/internal/models"
	"opterra/internal/opterra"
)

// ---- Test doubles ----

type fakeAssessmentRepo struct {
	saved      []models.Assessment
	saveErr    error
	getResp    *models.Assessment
	getErr     error
	listResp   []models.Assessment
	listErr    error
	updates    []string
	updateErr  error
	lastUpdate opterra.Metrics
}

func (f *fakeAssessmentRepo) Save(ctx context.Context, a models.Assessment) error {
	f.saved = append(f.saved, a)
	return f.saveErr
}
func (f *fakeAssessmentRepo) Get(ctx context.Context, id string) (*models.Assessment, error) {
	return f.getResp, f.getErr
}
func (f *fakeAssessmentRepo) ListRecent(ctx context.Context, limit int) ([]models.Assessment, error) {
	return f.listResp, f.listErr
}
func (f *fakeAssessmentRepo) UpdateMetrics(ctx context.Context, id string, m opterra.Metrics, rec opterra.Recommendation, scoredAt time.Time) error {
	f.updates = append(f.updates, id)
	f.lastUpdate = m
	return f.updateErr
}

type fakeEventRepo struct {
	appendErr error
	events    []models.AssessmentEvent
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.AssessmentEvent) error {
	f.events = append(f.events, e)
	return f.appendErr
}
func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.AssessmentEvent, error) {
	var out []models.AssessmentEvent
	for _, e := range f.events {
		if typ == "" || e.Type == typ {
			out = append(out, e)
		}
	}
	return out, nil
}

func validInspection() opterra.InspectionInput {
	return opterra.InspectionInput{
		Unit:     opterra.FuelGasTank,
		AgeYears: 8,
		Location: opterra.LocationGarage,
	}
}

func newAssessor(arepo *fakeAssessmentRepo, erepo *fakeEventRepo) *AssessorService {
	return NewAssessorService(opterra.DefaultConfig(), arepo, erepo)
}

// ---- Tests ----

func TestAssessorService_Assess_PersistsAndAppendsEvent(t *testing.T) {
	arepo := &fakeAssessmentRepo{}
	erepo := &fakeEventRepo{}
	svc := newAssessor(arepo, erepo)

	t0 := time.Now().UTC()
	a, err := svc.Assess(context.Background(), "unit-42", validInspection())
	t1 := time.Now().UTC()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.ID == "" {
		t.Fatal("expected a generated assessment id")
	}
	if a.Label != "unit-42" {
		t.Fatalf("label: got %q", a.Label)
	}
	if a.CreatedAt.Before(t0) || a.CreatedAt.After(t1) {
		t.Fatalf("created_at %v outside [%v, %v]", a.CreatedAt, t0, t1)
	}
	if a.Metrics.HealthScore < 0 || a.Metrics.HealthScore > 100 {
		t.Fatalf("health out of range: %d", a.Metrics.HealthScore)
	}

	if len(arepo.saved) != 1 {
		t.Fatalf("expected 1 Save call, got %d", len(arepo.saved))
	}
	if len(erepo.events) != 1 || erepo.events[0].Type != EventAssessed {
		t.Fatalf("expected one ASSESSED event, got %#v", erepo.events)
	}
}

func TestAssessorService_Assess_RejectsInvalidInput(t *testing.T) {
	arepo := &fakeAssessmentRepo{}
	svc := newAssessor(arepo, &fakeEventRepo{})

	in := validInspection()
	in.AgeYears = -3
	_, err := svc.Assess(context.Background(), "unit-42", in)
	if !errors.Is(err, opterra.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if len(arepo.saved) != 0 {
		t.Fatal("nothing may be persisted for invalid input")
	}
}

func TestAssessorService_Assess_RequiresLabel(t *testing.T) {
	svc := newAssessor(&fakeAssessmentRepo{}, &fakeEventRepo{})
	_, err := svc.Assess(context.Background(), "", validInspection())
	if !errors.Is(err, ErrLabelRequired) {
		t.Fatalf("expected ErrLabelRequired, got %v", err)
	}
}

func TestAssessorService_Assess_SaveErrorPropagates(t *testing.T) {
	arepo := &fakeAssessmentRepo{saveErr: errors.New("db down")}
	erepo := &fakeEventRepo{}
	svc := newAssessor(arepo, erepo)

	if _, err := svc.Assess(context.Background(), "unit-42", validInspection()); err == nil {
		t.Fatal("expected error, got nil")
	}
	if len(erepo.events) != 0 {
		t.Fatal("no event may be appended when the save fails")
	}
}

func TestAssessorService_Get_NotFound(t *testing.T) {
	svc := newAssessor(&fakeAssessmentRepo{getResp: nil}, &fakeEventRepo{})
	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrAssessmentNotFound) {
		t.Fatalf("expected ErrAssessmentNotFound, got %v", err)
	}
}

func TestAssessorService_List_DefaultsLimit(t *testing.T) {
	arepo := &fakeAssessmentRepo{listResp: []models.Assessment{{ID: "a"}, {ID: "b"}}}
	svc := newAssessor(arepo, &fakeEventRepo{})

	got, err := svc.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 assessments, got %d", len(got))
	}
}

func storedAssessment(t *testing.T, scoredAt time.Time) models.Assessment {
	t.Helper()
	cfg := opterra.DefaultConfig()
	in := validInspection()
	m, err := opterra.Score(cfg, in)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	return models.Assessment{
		ID:             "stored-1",
		Label:          "unit-42",
		Input:          in,
		Metrics:        m,
		Recommendation: opterra.Recommend(cfg, m, in),
		CreatedAt:      scoredAt,
		ScoredAt:       scoredAt,
	}
}

func TestAssessorService_Rescore_AdvancesAgeAndPersists(t *testing.T) {
	arepo := &fakeAssessmentRepo{}
	erepo := &fakeEventRepo{}
	svc := newAssessor(arepo, erepo)

	scoredAt := time.Now().UTC().Add(-2 * 365 * 24 * time.Hour) // ~2 years ago
	a := storedAssessment(t, scoredAt)

	now := time.Now().UTC()
	got, err := svc.Rescore(context.Background(), a, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Metrics.CalendarAgeYears <= a.Input.AgeYears {
		t.Fatalf("calendar age must advance: got %.2f, stored %.2f", got.Metrics.CalendarAgeYears, a.Input.AgeYears)
	}
	if got.Input.AgeYears != a.Input.AgeYears {
		t.Fatal("the stored inspection input must stay immutable")
	}
	if len(arepo.updates) != 1 || arepo.updates[0] != "stored-1" {
		t.Fatalf("expected one UpdateMetrics call for stored-1, got %v", arepo.updates)
	}
	if !got.ScoredAt.Equal(now) {
		t.Fatalf("scored_at: got %v, want %v", got.ScoredAt, now)
	}

	rescored, _ := erepo.List(context.Background(), time.Time{}, time.Time{}, EventRescored)
	if len(rescored) != 1 {
		t.Fatalf("expected one RESCORED event, got %d", len(rescored))
	}
}

func TestAssessorService_Rescore_EmitsStatusChangeEventOnTierTransition(t *testing.T) {
	arepo := &fakeAssessmentRepo{}
	erepo := &fakeEventRepo{}
	svc := newAssessor(arepo, erepo)

	// Scored long enough ago that a healthy 8-year-old tank degrades tiers.
	scoredAt := time.Now().UTC().Add(-12 * 365 * 24 * time.Hour)
	a := storedAssessment(t, scoredAt)

	got, err := svc.Rescore(context.Background(), a, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Metrics.Status == a.Metrics.Status {
		t.Fatalf("precondition: tier should have degraded after 12 years (still %s)", got.Metrics.Status)
	}
	changes, _ := erepo.List(context.Background(), time.Time{}, time.Time{}, EventStatusChange)
	if len(changes) != 1 {
		t.Fatalf("expected one STATUS_CHANGE event, got %d", len(changes))
	}
	rescored, _ := erepo.List(context.Background(), time.Time{}, time.Time{}, EventRescored)
	if len(rescored) != 1 {
		t.Fatalf("expected one RESCORED event alongside the transition, got %d", len(rescored))
	}
}

func TestAssessorService_Rescore_CapsAdvancedAge(t *testing.T) {
	arepo := &fakeAssessmentRepo{}
	erepo := &fakeEventRepo{}
	svc := newAssessor(arepo, erepo)

	// Scored decades ago. The advanced age must cap at the validation maximum
	// instead of failing, so a long-neglected row keeps being re-scorable.
	scoredAt := time.Now().UTC().Add(-70 * 365 * 24 * time.Hour)
	a := storedAssessment(t, scoredAt)

	got, err := svc.Rescore(context.Background(), a, time.Now().UTC())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(arepo.updates) != 1 {
		t.Fatalf("expected one UpdateMetrics call, got %d", len(arepo.updates))
	}
	if got.Metrics.Status != opterra.TierHigh {
		t.Fatalf("a decades-stale tank should land in HIGH, got %s", got.Metrics.Status)
	}
}

func TestAssessorService_Preview_DoesNotPersist(t *testing.T) {
	scoredAt := time.Now().UTC().Add(-3 * 365 * 24 * time.Hour)
	a := storedAssessment(t, scoredAt)
	arepo := &fakeAssessmentRepo{getResp: &a}
	erepo := &fakeEventRepo{}
	svc := newAssessor(arepo, erepo)

	view, err := svc.Preview(context.Background(), "stored-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Metrics.CalendarAgeYears <= a.Input.AgeYears {
		t.Fatal("preview must re-score with age advanced")
	}
	if len(arepo.updates) != 0 || len(erepo.events) != 0 {
		t.Fatal("preview must not write anything")
	}
}
