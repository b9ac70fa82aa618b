package recruiting

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus is the lifecycle state of an application.
type ApplicationStatus string

const (
	StatusPending   ApplicationStatus = "pending"
	StatusReviewing ApplicationStatus = "reviewing"
	StatusAccepted  ApplicationStatus = "accepted"
	StatusRejected  ApplicationStatus = "rejected"
)

// transitions is the full status state machine. Missing entries are invalid;
// accepted and rejected are terminal.
var transitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending:   {StatusReviewing, StatusAccepted, StatusRejected},
	StatusReviewing: {StatusAccepted, StatusRejected},
	StatusAccepted:  {},
	StatusRejected:  {},
}

// Valid reports whether s is a known application status.
func (s ApplicationStatus) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is allowed from s.
func (s ApplicationStatus) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether the status machine allows moving from one
// status to another.
func CanTransition(from, to ApplicationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Application links a candidate to a job posting. At most one application may
// exist per (job, candidate) pair.
type Application struct {
	ID          uuid.UUID
	JobID       uuid.UUID
	CandidateID uuid.UUID
	CoverLetter string
	ResumeURL   string
	Status      ApplicationStatus
	// MatchScore is nil until the match scorer has run.
	MatchScore *int
	AppliedAt  time.Time
	UpdatedAt  time.Time
}

// ErrDuplicateApplication reports a second application attempt for the same
// (job, candidate) pair.
var ErrDuplicateApplication = errors.New("an application for this job and candidate already exists")

// InvalidTransitionError reports a status change outside the state machine,
// including writes observed against a concurrently reached terminal state.
type InvalidTransitionError struct {
	From ApplicationStatus
	To   ApplicationStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid application status transition: %s -> %s", e.From, e.To)
}
