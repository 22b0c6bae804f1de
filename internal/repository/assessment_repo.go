package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"opterra/internal/models"
	"opterra/internal/opterra"
)

type AssessmentSQLite struct {
	db *sql.DB
}

func NewAssessmentSQLite(db *sql.DB) *AssessmentSQLite {
	return &AssessmentSQLite{db: db}
}

var _ AssessmentRepo = (*AssessmentSQLite)(nil)

const (
	insertAssessmentSQL = `
		INSERT INTO assessments
			(id, label, input, unit, health, status, aging_rate, bio_age,
			 fail_pct, fail_definite, fail_cause, factors,
			 flush_due_months, anode_months, action, reason, severity,
			 created_at, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	selectAssessmentCols = `
		id, label, input, health, status, aging_rate, bio_age,
		fail_pct, fail_definite, fail_cause, factors,
		flush_due_months, anode_months, action, reason, severity,
		created_at, scored_at
	`

	updateMetricsSQL = `
		UPDATE assessments SET
			health=?, status=?, aging_rate=?, bio_age=?,
			fail_pct=?, fail_definite=?, fail_cause=?, factors=?,
			flush_due_months=?, anode_months=?,
			action=?, reason=?, severity=?, scored_at=?
		WHERE id=?
	`
)

// Save inserts a new assessment row. CreatedAt/ScoredAt are persisted as UTC,
// defaulting to now when zero.
func (r *AssessmentSQLite) Save(ctx context.Context, a models.Assessment) error {
	inputJSON, err := json.Marshal(a.Input)
	if err != nil {
		return fmt.Errorf("marshal inspection input: %w", err)
	}
	factorsJSON, err := json.Marshal(a.Metrics.Factors)
	if err != nil {
		return fmt.Errorf("marshal stress factors: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertAssessmentSQL,
		a.ID,
		a.Label,
		string(inputJSON),
		string(a.Input.Unit),
		a.Metrics.HealthScore,
		string(a.Metrics.Status),
		a.Metrics.AgingRate,
		a.Metrics.BiologicalAge,
		a.Metrics.FailureProb.Percent,
		a.Metrics.FailureProb.Definite,
		a.Metrics.FailureProb.Cause,
		string(factorsJSON),
		nullableMonths(a.Metrics.FlushDueMonths),
		nullableMonths(a.Metrics.AnodeDepletionMonths),
		string(a.Recommendation.Action),
		a.Recommendation.Reason,
		string(a.Recommendation.Severity),
		utcOrNow(a.CreatedAt),
		utcOrNow(a.ScoredAt),
	)
	if err != nil {
		return fmt.Errorf("insert assessment %q: %w", a.ID, err)
	}
	return nil
}

// Get fetches one assessment by id. Returns (nil, nil) if not found.
func (r *AssessmentSQLite) Get(ctx context.Context, id string) (*models.Assessment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+selectAssessmentCols+` FROM assessments WHERE id=?`, id)
	a, err := scanAssessment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select assessment %q: %w", id, err)
	}
	return a, nil
}

// ListRecent returns the newest assessments, most recent first.
func (r *AssessmentSQLite) ListRecent(ctx context.Context, limit int) ([]models.Assessment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+selectAssessmentCols+` FROM assessments ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Assessment, 0, limit)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMetrics refreshes the scored columns of an existing row; the input
// and created_at are immutable.
func (r *AssessmentSQLite) UpdateMetrics(ctx context.Context, id string, m opterra.Metrics, rec opterra.Recommendation, scoredAt time.Time) error {
	factorsJSON, err := json.Marshal(m.Factors)
	if err != nil {
		return fmt.Errorf("marshal stress factors: %w", err)
	}
	res, err := r.db.ExecContext(ctx, updateMetricsSQL,
		m.HealthScore,
		string(m.Status),
		m.AgingRate,
		m.BiologicalAge,
		m.FailureProb.Percent,
		m.FailureProb.Definite,
		m.FailureProb.Cause,
		string(factorsJSON),
		nullableMonths(m.FlushDueMonths),
		nullableMonths(m.AnodeDepletionMonths),
		string(rec.Action),
		rec.Reason,
		string(rec.Severity),
		utcOrNow(scoredAt),
		id,
	)
	if err != nil {
		return fmt.Errorf("update assessment %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update assessment %q: no such row", id)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (*models.Assessment, error) {
	var (
		a           models.Assessment
		inputJSON   string
		factorsJSON string
		failCause   sql.NullString
		flushDue    sql.NullInt64
		anodeMonths sql.NullInt64
		status      string
		action      string
		severity    string
	)
	if err := row.Scan(
		&a.ID,
		&a.Label,
		&inputJSON,
		&a.Metrics.HealthScore,
		&status,
		&a.Metrics.AgingRate,
		&a.Metrics.BiologicalAge,
		&a.Metrics.FailureProb.Percent,
		&a.Metrics.FailureProb.Definite,
		&failCause,
		&factorsJSON,
		&flushDue,
		&anodeMonths,
		&action,
		&a.Recommendation.Reason,
		&severity,
		&a.CreatedAt,
		&a.ScoredAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(inputJSON), &a.Input); err != nil {
		return nil, fmt.Errorf("unmarshal inspection input: %w", err)
	}
	if err := json.Unmarshal([]byte(factorsJSON), &a.Metrics.Factors); err != nil {
		return nil, fmt.Errorf("unmarshal stress factors: %w", err)
	}

	a.Metrics.Unit = a.Input.Unit
	a.Metrics.CalendarAgeYears = a.Input.AgeYears
	a.Metrics.Status = opterra.StatusTier(status)
	a.Recommendation.Action = opterra.Action(action)
	a.Recommendation.Severity = opterra.Severity(severity)
	if failCause.Valid {
		a.Metrics.FailureProb.Cause = failCause.String
	}
	if flushDue.Valid {
		v := int(flushDue.Int64)
		a.Metrics.FlushDueMonths = &v
	}
	if anodeMonths.Valid {
		v := int(anodeMonths.Int64)
		a.Metrics.AnodeDepletionMonths = &v
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.ScoredAt = a.ScoredAt.UTC()
	return &a, nil
}

func nullableMonths(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// utcOrNow persists timestamps as UTC, defaulting zero values to now.
func utcOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
