package repository

import (
	"context"
	"database/sql"
	"time"

	"opterra/internal/models"
	"opterra/internal/opterra"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

type AssessmentRepo interface {
	Save(ctx context.Context, a models.Assessment) error
	Get(ctx context.Context, id string) (*models.Assessment, error)
	ListRecent(ctx context.Context, limit int) ([]models.Assessment, error)
	UpdateMetrics(ctx context.Context, id string, m opterra.Metrics, rec opterra.Recommendation, scoredAt time.Time) error
}

type EventRepo interface {
	Append(ctx context.Context, e models.AssessmentEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.AssessmentEvent, error)
}

type Repository struct {
	Assessments AssessmentRepo
	Events      EventRepo
	Auth        Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Assessments: NewAssessmentSQLite(db),
		Events:      NewEventSQLite(db),
		Auth:        NewUserSQLite(db),
	}
}
