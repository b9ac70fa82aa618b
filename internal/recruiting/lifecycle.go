package recruiting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplicationStore is the slice of the persisted store the lifecycle manager
// needs. CreateApplication must enforce the (job, candidate) uniqueness
// invariant and report violations as ErrDuplicateApplication.
// TransitionStatus must apply the change as an atomic compare-and-swap: the
// update succeeds only when the stored status still equals from.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *Application) error
	GetApplication(ctx context.Context, id uuid.UUID) (*Application, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to ApplicationStatus, updatedAt time.Time) (bool, error)
}

// ApplyRequest is the input for creating an application.
type ApplyRequest struct {
	JobID       uuid.UUID
	CandidateID uuid.UUID
	CoverLetter string
	ResumeURL   string
}

// Manager owns the application status state machine and the uniqueness
// invariant.
type Manager struct {
	store  ApplicationStore
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(store ApplicationStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Apply creates a pending application for the given (job, candidate) pair.
// A second application for the same pair fails with ErrDuplicateApplication.
func (m *Manager) Apply(ctx context.Context, req ApplyRequest) (*Application, error) {
	if req.JobID == uuid.Nil {
		return nil, errors.New("job id is required")
	}
	if req.CandidateID == uuid.Nil {
		return nil, errors.New("candidate id is required")
	}

	now := m.now().UTC()
	app := &Application{
		ID:          uuid.New(),
		JobID:       req.JobID,
		CandidateID: req.CandidateID,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
		Status:      StatusPending,
		AppliedAt:   now,
		UpdatedAt:   now,
	}

	if err := m.store.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, ErrDuplicateApplication) {
			return nil, err
		}
		return nil, fmt.Errorf("create application: %w", err)
	}

	m.logger.Info("application created",
		zap.String("application_id", app.ID.String()),
		zap.String("job_id", app.JobID.String()),
		zap.String("candidate_id", app.CandidateID.String()),
	)

	return app, nil
}

// UpdateStatus moves an application along the status state machine. The write
// is a compare-and-swap against the status the caller observed; when a
// concurrent transition wins the race the current state is re-read and
// reported as an InvalidTransitionError, so a terminal status is never
// silently overwritten.
func (m *Manager) UpdateStatus(ctx context.Context, id uuid.UUID, next ApplicationStatus) (*Application, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown application status: %s", next)
	}

	app, err := m.store.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get application: %w", err)
	}

	if !CanTransition(app.Status, next) {
		return nil, &InvalidTransitionError{From: app.Status, To: next}
	}

	updatedAt := m.now().UTC()
	swapped, err := m.store.TransitionStatus(ctx, id, app.Status, next, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("transition application status: %w", err)
	}

	if !swapped {
		current, err := m.store.GetApplication(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get application after conflicting transition: %w", err)
		}
		return nil, &InvalidTransitionError{From: current.Status, To: next}
	}

	m.logger.Info("application status updated",
		zap.String("application_id", id.String()),
		zap.String("from", string(app.Status)),
		zap.String("to", string(next)),
	)

	app.Status = next
	app.UpdatedAt = updatedAt
	return app, nil
}
