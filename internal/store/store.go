// Package store defines the persisted-store contracts shared by the
// intelligence components. Implementations live in the postgres and memory
// subpackages.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
)

// ErrNotFound reports a lookup for a record that does not exist.
var ErrNotFound = errors.New("record not found")

// JobStore provides read access to job postings.
type JobStore interface {
	GetJob(ctx context.Context, id uuid.UUID) (*recruiting.JobPosting, error)
}

// ProfileStore provides read access to candidate profiles.
type ProfileStore interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*recruiting.CandidateProfile, error)
}

// ApplicationStore extends the lifecycle manager's contract with the queries
// the scorer and the insights aggregator need. SetMatchScore is a single-field
// update and must be re-runnable; ListScoredApplications returns only
// applications with a non-nil match score.
type ApplicationStore interface {
	recruiting.ApplicationStore

	SetMatchScore(ctx context.Context, applicationID uuid.UUID, score int, updatedAt time.Time) error
	ListScoredApplications(ctx context.Context, jobID uuid.UUID) ([]*recruiting.Application, error)
	ListUnscoredApplications(ctx context.Context, jobID uuid.UUID) ([]*recruiting.Application, error)
}
