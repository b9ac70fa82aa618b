package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/rctandrade/jobfitia-train-interview/internal/store/memory"
)

func seedScoredApplication(t *testing.T, st *memory.Store, jobID uuid.UUID, score int, appliedAt time.Time) *recruiting.Application {
	t.Helper()
	ctx := context.Background()

	app := &recruiting.Application{
		ID:          uuid.New(),
		JobID:       jobID,
		CandidateID: uuid.New(),
		Status:      recruiting.StatusPending,
		AppliedAt:   appliedAt,
	}
	if err := st.CreateApplication(ctx, app); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	if err := st.SetMatchScore(ctx, app.ID, score, appliedAt); err != nil {
		t.Fatalf("seed score: %v", err)
	}
	app.MatchScore = &score
	return app
}

func TestInsightsEmptyJob(t *testing.T) {
	st := memory.New()
	aggregator := NewAggregator(st, nil)

	insights, err := aggregator.Insights(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if insights.TotalApplications != 0 || insights.AverageScore != 0 {
		t.Fatalf("expected zeroed insights, got %+v", insights)
	}
	if insights.TopCandidates == nil || len(insights.TopCandidates) != 0 {
		t.Fatalf("expected empty top candidates slice, got %v", insights.TopCandidates)
	}
}

func TestInsightsBucketsAndAverage(t *testing.T) {
	st := memory.New()
	jobID := uuid.New()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	// Boundary scores: 80 is a high match, 60 a medium one, 59 a low one.
	for i, score := range []int{95, 80, 60, 59, 10} {
		seedScoredApplication(t, st, jobID, score, base.Add(time.Duration(i)*time.Minute))
	}

	// Unscored applications must not be counted.
	unscored := &recruiting.Application{
		ID:          uuid.New(),
		JobID:       jobID,
		CandidateID: uuid.New(),
		Status:      recruiting.StatusPending,
		AppliedAt:   base,
	}
	if err := st.CreateApplication(context.Background(), unscored); err != nil {
		t.Fatalf("seed unscored application: %v", err)
	}

	insights, err := NewAggregator(st, nil).Insights(context.Background(), jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if insights.TotalApplications != 5 {
		t.Fatalf("expected 5 scored applications, got %d", insights.TotalApplications)
	}
	if insights.HighMatches != 2 || insights.MediumMatches != 1 || insights.LowMatches != 2 {
		t.Fatalf("unexpected buckets: %+v", insights)
	}

	// (95+80+60+59+10)/5 = 60.8, rounded to 61.
	if insights.AverageScore != 61 {
		t.Fatalf("expected average 61, got %d", insights.AverageScore)
	}
}

func TestInsightsTopCandidatesRankingAndTieBreak(t *testing.T) {
	st := memory.New()
	jobID := uuid.New()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	later := seedScoredApplication(t, st, jobID, 90, base.Add(time.Hour))
	earlier := seedScoredApplication(t, st, jobID, 90, base)
	top := seedScoredApplication(t, st, jobID, 99, base.Add(2*time.Hour))

	for i, score := range []int{70, 65, 50} {
		seedScoredApplication(t, st, jobID, score, base.Add(time.Duration(3+i)*time.Hour))
	}

	insights, err := NewAggregator(st, nil).Insights(context.Background(), jobID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(insights.TopCandidates) != 5 {
		t.Fatalf("expected top list capped at 5, got %d", len(insights.TopCandidates))
	}

	got := insights.TopCandidates
	if got[0].ApplicationID != top.ID {
		t.Fatalf("expected highest score first, got %+v", got[0])
	}
	if got[1].ApplicationID != earlier.ID || got[2].ApplicationID != later.ID {
		t.Fatalf("expected earlier application to win the tie, got %+v then %+v", got[1], got[2])
	}
	if got[4].MatchScore != 65 {
		t.Fatalf("expected score 50 to be cut off, got %d in last place", got[4].MatchScore)
	}
}

func TestInsightsRequiresJobID(t *testing.T) {
	if _, err := NewAggregator(memory.New(), nil).Insights(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil job id")
	}
}
