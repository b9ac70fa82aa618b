package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/store"
	"go.uber.org/zap"
)

const (
	highMatchThreshold   = 80
	mediumMatchThreshold = 60

	topCandidateLimit = 5
)

// MatchInsights is the derived aggregate over the scored applications of one
// job. It is recomputed on demand and never persisted.
type MatchInsights struct {
	JobID             uuid.UUID      `json:"jobId"`
	TotalApplications int            `json:"totalApplications"`
	HighMatches       int            `json:"highMatches"`
	MediumMatches     int            `json:"mediumMatches"`
	LowMatches        int            `json:"lowMatches"`
	AverageScore      int            `json:"averageScore"`
	TopCandidates     []TopCandidate `json:"topCandidates"`
}

// TopCandidate is one entry of the ranked shortlist.
type TopCandidate struct {
	ApplicationID uuid.UUID `json:"applicationId"`
	CandidateID   uuid.UUID `json:"candidateId"`
	MatchScore    int       `json:"matchScore"`
	AppliedAt     time.Time `json:"appliedAt"`
}

// Aggregator produces match insights for a job.
type Aggregator struct {
	store  store.ApplicationStore
	logger *zap.Logger
}

func NewAggregator(st store.ApplicationStore, logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{store: st, logger: logger}
}

// Insights aggregates all scored applications of the job: totals, score
// buckets and the top-5 shortlist ordered by score descending with earliest
// application as tie-break. A job without scored applications yields zeroes,
// not an error.
func (a *Aggregator) Insights(ctx context.Context, jobID uuid.UUID) (*MatchInsights, error) {
	if jobID == uuid.Nil {
		return nil, errors.New("job id is required")
	}

	apps, err := a.store.ListScoredApplications(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list scored applications: %w", err)
	}

	insights := &MatchInsights{
		JobID:             jobID,
		TotalApplications: len(apps),
		TopCandidates:     []TopCandidate{},
	}

	if len(apps) == 0 {
		return insights, nil
	}

	sum := 0
	for _, app := range apps {
		score := *app.MatchScore
		sum += score

		switch {
		case score >= highMatchThreshold:
			insights.HighMatches++
		case score >= mediumMatchThreshold:
			insights.MediumMatches++
		default:
			insights.LowMatches++
		}
	}

	insights.AverageScore = int(math.Round(float64(sum) / float64(len(apps))))

	ranked := make([]TopCandidate, 0, len(apps))
	for _, app := range apps {
		ranked = append(ranked, TopCandidate{
			ApplicationID: app.ID,
			CandidateID:   app.CandidateID,
			MatchScore:    *app.MatchScore,
			AppliedAt:     app.AppliedAt,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].MatchScore != ranked[j].MatchScore {
			return ranked[i].MatchScore > ranked[j].MatchScore
		}
		return ranked[i].AppliedAt.Before(ranked[j].AppliedAt)
	})

	if len(ranked) > topCandidateLimit {
		ranked = ranked[:topCandidateLimit]
	}
	insights.TopCandidates = ranked

	a.logger.Debug("match insights computed",
		zap.String("job_id", jobID.String()),
		zap.Int("total", insights.TotalApplications),
		zap.Int("average_score", insights.AverageScore),
	)

	return insights, nil
}
