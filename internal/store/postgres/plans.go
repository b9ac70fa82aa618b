package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/rctandrade/jobfitia-train-interview/internal/curriculum"
)

const createPlan = `-- name: CreatePlan :exec
INSERT INTO training_plans (id, job_id, candidate_id, title, description, estimated_weeks, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

const createModule = `-- name: CreateModule :exec
INSERT INTO training_modules (id, plan_id, module_order, title, description, type, estimated_hours, resources, skills_developed)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// CreatePlanWithModules inserts the plan and all its modules in one
// transaction. Either everything is written or nothing is.
func (s *Store) CreatePlanWithModules(ctx context.Context, plan *curriculum.LearningPlan) error {
	if len(plan.Modules) == 0 {
		return fmt.Errorf("plan %s has no modules", plan.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin plan transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, createPlan,
		plan.ID,
		plan.JobID,
		plan.CandidateID,
		plan.Title,
		plan.Description,
		plan.EstimatedWeeks,
		plan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	for _, module := range plan.Modules {
		_, err = tx.ExecContext(ctx, createModule,
			module.ID,
			module.PlanID,
			module.Order,
			module.Title,
			module.Description,
			module.Type,
			module.EstimatedHours,
			pq.Array(module.Resources),
			pq.Array(module.SkillsDeveloped),
		)
		if err != nil {
			return fmt.Errorf("insert module %d: %w", module.Order, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit plan transaction: %w", err)
	}
	return nil
}
