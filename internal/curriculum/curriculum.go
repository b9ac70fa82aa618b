package curriculum

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ModuleType tags the teaching style of a learning module.
type ModuleType string

const (
	ModuleTheory   ModuleType = "theory"
	ModulePractice ModuleType = "practice"
	ModuleProject  ModuleType = "project"
)

// Valid reports whether t is a known module type.
func (t ModuleType) Valid() bool {
	switch t {
	case ModuleTheory, ModulePractice, ModuleProject:
		return true
	}
	return false
}

// LearningModule is one ordered unit of a learning plan. Modules are never
// mutated individually; only whole plans are regenerated.
type LearningModule struct {
	ID              uuid.UUID  `json:"id"`
	PlanID          uuid.UUID  `json:"plan_id"`
	Order           int        `json:"order"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Type            ModuleType `json:"type"`
	EstimatedHours  int        `json:"estimated_hours"`
	Resources       []string   `json:"resources,omitempty"`
	SkillsDeveloped []string   `json:"skills_developed,omitempty"`
}

// LearningPlan is a generated curriculum for one (candidate, job) pair. A
// persisted plan always owns at least one module.
type LearningPlan struct {
	ID             uuid.UUID         `json:"id"`
	JobID          uuid.UUID         `json:"job_id"`
	CandidateID    uuid.UUID         `json:"candidate_id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	EstimatedWeeks int               `json:"estimated_weeks"`
	Modules        []*LearningModule `json:"modules"`
	CreatedAt      time.Time         `json:"created_at"`
}

// PlanGenerationError reports a provider response that violates the plan
// schema. No partial plan is ever persisted after this error.
type PlanGenerationError struct {
	Reason string
	Err    error
}

func (e *PlanGenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("learning plan generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("learning plan generation failed: %s", e.Reason)
}

func (e *PlanGenerationError) Unwrap() error { return e.Err }
