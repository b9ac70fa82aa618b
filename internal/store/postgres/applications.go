package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/rctandrade/jobfitia-train-interview/internal/store"
)

const createApplication = `-- name: CreateApplication :exec
INSERT INTO applications (id, job_id, candidate_id, cover_letter, resume_url, status, applied_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

// CreateApplication inserts a new application. The unique (job_id,
// candidate_id) index enforces one application per pair; a violation is
// reported as recruiting.ErrDuplicateApplication.
func (s *Store) CreateApplication(ctx context.Context, app *recruiting.Application) error {
	_, err := s.db.ExecContext(ctx, createApplication,
		app.ID,
		app.JobID,
		app.CandidateID,
		app.CoverLetter,
		app.ResumeURL,
		app.Status,
		app.AppliedAt,
		app.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return recruiting.ErrDuplicateApplication
		}
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

const getApplication = `-- name: GetApplication :one
SELECT id, job_id, candidate_id, cover_letter, resume_url, status, match_score, applied_at, updated_at
FROM applications
WHERE id = $1
`

func (s *Store) GetApplication(ctx context.Context, id uuid.UUID) (*recruiting.Application, error) {
	row := s.db.QueryRowContext(ctx, getApplication, id)

	app, err := scanApplication(row)
	if err != nil {
		return nil, notFoundIfNoRows(err, fmt.Sprintf("application %s", id))
	}
	return app, nil
}

const transitionStatus = `-- name: TransitionStatus :execrows
UPDATE applications
SET status = $1, updated_at = $2
WHERE id = $3 AND status = $4
`

// TransitionStatus performs a compare-and-swap on the status column. It
// reports false without error when the stored status no longer matches from.
func (s *Store) TransitionStatus(ctx context.Context, id uuid.UUID, from, to recruiting.ApplicationStatus, updatedAt time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, transitionStatus, to, updatedAt, id, from)
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update application status: %w", err)
	}
	return rows == 1, nil
}

const setMatchScore = `-- name: SetMatchScore :execrows
UPDATE applications
SET match_score = $1, updated_at = $2
WHERE id = $3
`

// SetMatchScore writes the match score, touching no other column.
func (s *Store) SetMatchScore(ctx context.Context, applicationID uuid.UUID, score int, updatedAt time.Time) error {
	result, err := s.db.ExecContext(ctx, setMatchScore, score, updatedAt, applicationID)
	if err != nil {
		return fmt.Errorf("update match score: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update match score: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("application %s: %w", applicationID, store.ErrNotFound)
	}
	return nil
}

const listScoredApplications = `-- name: ListScoredApplications :many
SELECT id, job_id, candidate_id, cover_letter, resume_url, status, match_score, applied_at, updated_at
FROM applications
WHERE job_id = $1 AND match_score IS NOT NULL
ORDER BY applied_at
`

func (s *Store) ListScoredApplications(ctx context.Context, jobID uuid.UUID) ([]*recruiting.Application, error) {
	return s.listApplications(ctx, listScoredApplications, jobID)
}

const listUnscoredApplications = `-- name: ListUnscoredApplications :many
SELECT id, job_id, candidate_id, cover_letter, resume_url, status, match_score, applied_at, updated_at
FROM applications
WHERE job_id = $1 AND match_score IS NULL
ORDER BY applied_at
`

func (s *Store) ListUnscoredApplications(ctx context.Context, jobID uuid.UUID) ([]*recruiting.Application, error) {
	return s.listApplications(ctx, listUnscoredApplications, jobID)
}

func (s *Store) listApplications(ctx context.Context, query string, jobID uuid.UUID) ([]*recruiting.Application, error) {
	rows, err := s.db.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]*recruiting.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*recruiting.Application, error) {
	var (
		app   recruiting.Application
		score sql.NullInt32
	)
	err := row.Scan(
		&app.ID,
		&app.JobID,
		&app.CandidateID,
		&app.CoverLetter,
		&app.ResumeURL,
		&app.Status,
		&score,
		&app.AppliedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if score.Valid {
		value := int(score.Int32)
		app.MatchScore = &value
	}
	return &app, nil
}
