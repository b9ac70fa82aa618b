package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
)

const getProfile = `-- name: GetProfile :one
SELECT id, display_name, bio, location, skills, experience_years,
       preferred_salary_min, preferred_salary_max, created_at, updated_at
FROM profiles
WHERE id = $1
`

func (s *Store) GetProfile(ctx context.Context, id uuid.UUID) (*recruiting.CandidateProfile, error) {
	row := s.db.QueryRowContext(ctx, getProfile, id)

	var profile recruiting.CandidateProfile
	err := row.Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.Bio,
		&profile.Location,
		pq.Array(&profile.Skills),
		&profile.ExperienceYears,
		&profile.PreferredSalaryMin,
		&profile.PreferredSalaryMax,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, notFoundIfNoRows(err, fmt.Sprintf("profile %s", id))
	}
	return &profile, nil
}
