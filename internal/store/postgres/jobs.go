package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
)

const getJob = `-- name: GetJob :one
SELECT id, company_id, title, description, requirements, employment_type,
       experience_level, remote, location, salary_min, salary_max,
       salary_currency, status, created_at, updated_at
FROM jobs
WHERE id = $1
`

func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*recruiting.JobPosting, error) {
	row := s.db.QueryRowContext(ctx, getJob, id)

	var job recruiting.JobPosting
	err := row.Scan(
		&job.ID,
		&job.CompanyID,
		&job.Title,
		&job.Description,
		pq.Array(&job.Requirements),
		&job.EmploymentType,
		&job.ExperienceLevel,
		&job.Remote,
		&job.Location,
		&job.SalaryMin,
		&job.SalaryMax,
		&job.SalaryCurrency,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundIfNoRows(err, fmt.Sprintf("job %s", id))
	}
	return &job, nil
}
