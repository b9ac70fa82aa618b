package recruiting

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeStore struct {
	apps       map[uuid.UUID]*Application
	pairs      map[string]bool
	createErr  error
	transition func(id uuid.UUID, from, to ApplicationStatus) (bool, error)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:  make(map[uuid.UUID]*Application),
		pairs: make(map[string]bool),
	}
}

func (f *fakeStore) CreateApplication(_ context.Context, app *Application) error {
	if f.createErr != nil {
		return f.createErr
	}

	key := app.JobID.String() + "/" + app.CandidateID.String()
	if f.pairs[key] {
		return ErrDuplicateApplication
	}

	f.pairs[key] = true
	copied := *app
	f.apps[app.ID] = &copied
	return nil
}

func (f *fakeStore) GetApplication(_ context.Context, id uuid.UUID) (*Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, fmt.Errorf("application %s not found", id)
	}
	copied := *app
	return &copied, nil
}

func (f *fakeStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to ApplicationStatus, updatedAt time.Time) (bool, error) {
	if f.transition != nil {
		return f.transition(id, from, to)
	}

	app, ok := f.apps[id]
	if !ok {
		return false, fmt.Errorf("application %s not found", id)
	}
	if app.Status != from {
		return false, nil
	}

	app.Status = to
	app.UpdatedAt = updatedAt
	return true, nil
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    ApplicationStatus
		to      ApplicationStatus
		allowed bool
	}{
		{StatusPending, StatusReviewing, true},
		{StatusPending, StatusAccepted, true},
		{StatusPending, StatusRejected, true},
		{StatusReviewing, StatusAccepted, true},
		{StatusReviewing, StatusRejected, true},
		{StatusReviewing, StatusPending, false},
		{StatusAccepted, StatusRejected, false},
		{StatusAccepted, StatusReviewing, false},
		{StatusRejected, StatusPending, false},
		{StatusRejected, StatusAccepted, false},
		{StatusPending, StatusPending, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"_to_"+string(tc.to), func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.allowed {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	if StatusPending.Terminal() || StatusReviewing.Terminal() {
		t.Fatal("pending and reviewing are not terminal")
	}
	if !StatusAccepted.Terminal() || !StatusRejected.Terminal() {
		t.Fatal("accepted and rejected are terminal")
	}
}

func TestApplyCreatesPendingApplication(t *testing.T) {
	store := newFakeStore()
	manager := NewManager(store, nil)

	jobID, candidateID := uuid.New(), uuid.New()
	app, err := manager.Apply(context.Background(), ApplyRequest{
		JobID:       jobID,
		CandidateID: candidateID,
		CoverLetter: "I would love to join",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if app.ID == uuid.Nil {
		t.Fatal("expected a generated application id")
	}
	if app.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", app.Status)
	}
	if app.MatchScore != nil {
		t.Fatal("a new application must not carry a score")
	}
	if app.AppliedAt.IsZero() || !app.AppliedAt.Equal(app.UpdatedAt) {
		t.Fatalf("expected applied and updated timestamps to match, got %v / %v", app.AppliedAt, app.UpdatedAt)
	}
}

func TestApplyRejectsDuplicates(t *testing.T) {
	store := newFakeStore()
	manager := NewManager(store, nil)

	req := ApplyRequest{JobID: uuid.New(), CandidateID: uuid.New()}
	if _, err := manager.Apply(context.Background(), req); err != nil {
		t.Fatalf("first application failed: %v", err)
	}

	_, err := manager.Apply(context.Background(), req)
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}
}

func TestApplyValidatesIDs(t *testing.T) {
	manager := NewManager(newFakeStore(), nil)

	if _, err := manager.Apply(context.Background(), ApplyRequest{CandidateID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing job id")
	}
	if _, err := manager.Apply(context.Background(), ApplyRequest{JobID: uuid.New()}); err == nil {
		t.Fatal("expected error for missing candidate id")
	}
}

func TestUpdateStatusHappyPath(t *testing.T) {
	store := newFakeStore()
	manager := NewManager(store, nil)

	app, err := manager.Apply(context.Background(), ApplyRequest{JobID: uuid.New(), CandidateID: uuid.New()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	updated, err := manager.UpdateStatus(context.Background(), app.ID, StatusReviewing)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusReviewing {
		t.Fatalf("expected reviewing, got %s", updated.Status)
	}

	updated, err = manager.UpdateStatus(context.Background(), app.ID, StatusAccepted)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}
}

func TestUpdateStatusRejectsInvalidTransitions(t *testing.T) {
	store := newFakeStore()
	manager := NewManager(store, nil)

	app, err := manager.Apply(context.Background(), ApplyRequest{JobID: uuid.New(), CandidateID: uuid.New()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := manager.UpdateStatus(context.Background(), app.ID, StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}

	_, err = manager.UpdateStatus(context.Background(), app.ID, StatusReviewing)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError, got %v", err)
	}
	if invalid.From != StatusRejected || invalid.To != StatusReviewing {
		t.Fatalf("unexpected transition error: %+v", invalid)
	}

	stored, err := store.GetApplication(context.Background(), app.ID)
	if err != nil {
		t.Fatalf("get application: %v", err)
	}
	if stored.Status != StatusRejected {
		t.Fatalf("terminal status must not change, got %s", stored.Status)
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	manager := NewManager(newFakeStore(), nil)
	if _, err := manager.UpdateStatus(context.Background(), uuid.New(), ApplicationStatus("archived")); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestUpdateStatusConcurrentTransitionLosesRace(t *testing.T) {
	store := newFakeStore()
	manager := NewManager(store, nil)

	app, err := manager.Apply(context.Background(), ApplyRequest{JobID: uuid.New(), CandidateID: uuid.New()})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	// A competing writer accepts the application between the read and the swap.
	store.transition = func(id uuid.UUID, from, to ApplicationStatus) (bool, error) {
		store.transition = nil
		store.apps[id].Status = StatusAccepted
		return false, nil
	}

	_, err = manager.UpdateStatus(context.Background(), app.ID, StatusReviewing)
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTransitionError after lost race, got %v", err)
	}
	if invalid.From != StatusAccepted {
		t.Fatalf("expected error to report the winning status, got %s", invalid.From)
	}
}
