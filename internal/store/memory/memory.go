// Package memory provides a mutex-guarded in-memory store implementation with
// the same semantics as the postgres store: duplicate detection, CAS status
// updates and atomic plan persistence. It backs the test suites and
// single-process use without a configured database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/curriculum"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/rctandrade/jobfitia-train-interview/internal/store"
)

type pairKey struct {
	job       uuid.UUID
	candidate uuid.UUID
}

// Store is an in-memory persisted store.
type Store struct {
	mu           sync.RWMutex
	jobs         map[uuid.UUID]recruiting.JobPosting
	profiles     map[uuid.UUID]recruiting.CandidateProfile
	applications map[uuid.UUID]recruiting.Application
	pairs        map[pairKey]uuid.UUID
	plans        map[uuid.UUID]curriculum.LearningPlan
}

func New() *Store {
	return &Store{
		jobs:         make(map[uuid.UUID]recruiting.JobPosting),
		profiles:     make(map[uuid.UUID]recruiting.CandidateProfile),
		applications: make(map[uuid.UUID]recruiting.Application),
		pairs:        make(map[pairKey]uuid.UUID),
		plans:        make(map[uuid.UUID]curriculum.LearningPlan),
	}
}

// PutJob stores or replaces a job posting.
func (s *Store) PutJob(_ context.Context, job *recruiting.JobPosting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = *job
	return nil
}

func (s *Store) GetJob(_ context.Context, id uuid.UUID) (*recruiting.JobPosting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, fmt.Errorf("job %s: %w", id, store.ErrNotFound)
	}
	return &job, nil
}

// PutProfile stores or replaces a candidate profile.
func (s *Store) PutProfile(_ context.Context, profile *recruiting.CandidateProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.ID] = *profile
	return nil
}

func (s *Store) GetProfile(_ context.Context, id uuid.UUID) (*recruiting.CandidateProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	return &profile, nil
}

func (s *Store) CreateApplication(_ context.Context, app *recruiting.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{job: app.JobID, candidate: app.CandidateID}
	if _, exists := s.pairs[key]; exists {
		return recruiting.ErrDuplicateApplication
	}

	s.pairs[key] = app.ID
	s.applications[app.ID] = *app
	return nil
}

func (s *Store) GetApplication(_ context.Context, id uuid.UUID) (*recruiting.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return nil, fmt.Errorf("application %s: %w", id, store.ErrNotFound)
	}
	return &app, nil
}

func (s *Store) TransitionStatus(_ context.Context, id uuid.UUID, from, to recruiting.ApplicationStatus, updatedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[id]
	if !ok {
		return false, fmt.Errorf("application %s: %w", id, store.ErrNotFound)
	}

	if app.Status != from {
		return false, nil
	}

	app.Status = to
	app.UpdatedAt = updatedAt
	s.applications[id] = app
	return true, nil
}

func (s *Store) SetMatchScore(_ context.Context, applicationID uuid.UUID, score int, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.applications[applicationID]
	if !ok {
		return fmt.Errorf("application %s: %w", applicationID, store.ErrNotFound)
	}

	app.MatchScore = &score
	app.UpdatedAt = updatedAt
	s.applications[applicationID] = app
	return nil
}

func (s *Store) ListScoredApplications(_ context.Context, jobID uuid.UUID) ([]*recruiting.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByJob(jobID, true), nil
}

func (s *Store) ListUnscoredApplications(_ context.Context, jobID uuid.UUID) ([]*recruiting.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listByJob(jobID, false), nil
}

func (s *Store) listByJob(jobID uuid.UUID, scored bool) []*recruiting.Application {
	apps := make([]*recruiting.Application, 0)
	for _, app := range s.applications {
		if app.JobID != jobID {
			continue
		}
		if (app.MatchScore != nil) != scored {
			continue
		}
		copied := app
		apps = append(apps, &copied)
	}

	sort.Slice(apps, func(i, j int) bool {
		return apps[i].AppliedAt.Before(apps[j].AppliedAt)
	})
	return apps
}

// CreatePlanWithModules stores the plan and its modules as one unit.
func (s *Store) CreatePlanWithModules(_ context.Context, plan *curriculum.LearningPlan) error {
	if len(plan.Modules) == 0 {
		return fmt.Errorf("plan %s has no modules", plan.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[plan.ID] = *plan
	return nil
}

// ListPlans returns every stored plan for the job, oldest first.
func (s *Store) ListPlans(_ context.Context, jobID uuid.UUID) ([]*curriculum.LearningPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	plans := make([]*curriculum.LearningPlan, 0)
	for _, plan := range s.plans {
		if plan.JobID != jobID {
			continue
		}
		copied := plan
		plans = append(plans, &copied)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.Before(plans[j].CreatedAt)
	})
	return plans, nil
}
