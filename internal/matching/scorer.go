package matching

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/ai"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/rctandrade/jobfitia-train-interview/internal/store"
	"github.com/rctandrade/jobfitia-train-interview/internal/util"
	"go.uber.org/zap"
)

// Weighting of the score criteria lives in the prompt template: it is an
// instruction to the model, not a formula computed here, so only the shape and
// range of the answer can be validated.
//
//go:embed score_prompt.md
var scorePromptTemplate string

const scoreSystemPrompt = "You are an HR expert who evaluates compatibility between candidates and job postings. Be precise and objective in the analysis."

const (
	scoreMaxTokens   = 10
	scoreTemperature = 0.1

	minMatchScore = 0
	maxMatchScore = 100

	defaultMaxLogLength = 200

	unspecified = "Not specified"
)

type generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

// Store combines the read and write access the scorer needs.
type Store interface {
	store.JobStore
	store.ProfileStore
	store.ApplicationStore
}

// InvalidScoreError reports provider output that does not parse as an integer
// in [0,100]. Out-of-range output is never clamped and never persisted.
type InvalidScoreError struct {
	Raw string
}

func (e *InvalidScoreError) Error() string {
	return fmt.Sprintf("invalid match score from provider: %q", util.TruncateForLog(e.Raw, 40))
}

// ScoreRequest identifies the application to score.
type ScoreRequest struct {
	ApplicationID uuid.UUID `json:"applicationId"`
	JobID         uuid.UUID `json:"jobId"`
	CandidateID   uuid.UUID `json:"candidateId"`
}

// ScoreResult is the invocation surface result for a single scoring call.
type ScoreResult struct {
	Success       bool      `json:"success"`
	ApplicationID uuid.UUID `json:"applicationId"`
	MatchScore    int       `json:"matchScore,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// Scorer computes and persists compatibility scores for applications.
type Scorer struct {
	generator generator
	store     Store
	logger    *zap.Logger
	maxLogLen int
	now       func() time.Time
}

func NewScorer(generator generator, st Store, logger *zap.Logger, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		generator: generator,
		store:     st,
		logger:    logger,
		maxLogLen: maxLogLength,
		now:       time.Now,
	}
}

// Score computes the compatibility score for one application and persists it
// onto the application record. Scoring is idempotent: rerunning overwrites the
// previous score. On any failure nothing is written.
func (s *Scorer) Score(ctx context.Context, req ScoreRequest) (int, error) {
	if req.ApplicationID == uuid.Nil {
		return 0, errors.New("application id is required")
	}
	if req.JobID == uuid.Nil {
		return 0, errors.New("job id is required")
	}
	if req.CandidateID == uuid.Nil {
		return 0, errors.New("candidate id is required")
	}

	app, err := s.store.GetApplication(ctx, req.ApplicationID)
	if err != nil {
		return 0, fmt.Errorf("get application: %w", err)
	}

	job, err := s.store.GetJob(ctx, req.JobID)
	if err != nil {
		return 0, fmt.Errorf("get job: %w", err)
	}

	profile, err := s.store.GetProfile(ctx, req.CandidateID)
	if err != nil {
		return 0, fmt.Errorf("get candidate profile: %w", err)
	}

	prompt := buildScorePrompt(job, profile)

	s.logger.Debug("match score request",
		zap.String("application_id", app.ID.String()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.Generate(ctx, ai.Request{
		System:      scoreSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   scoreMaxTokens,
		Temperature: scoreTemperature,
	})
	if err != nil {
		return 0, err
	}

	score, err := parseScore(raw)
	if err != nil {
		return 0, err
	}

	if err := s.store.SetMatchScore(ctx, app.ID, score, s.now().UTC()); err != nil {
		return 0, fmt.Errorf("persist match score: %w", err)
	}

	s.logger.Info("match score persisted",
		zap.String("application_id", app.ID.String()),
		zap.Int("match_score", score),
	)

	return score, nil
}

// Run wraps Score into the invocation surface result shape.
func (s *Scorer) Run(ctx context.Context, req ScoreRequest) ScoreResult {
	score, err := s.Score(ctx, req)
	if err != nil {
		return ScoreResult{ApplicationID: req.ApplicationID, Error: err.Error()}
	}
	return ScoreResult{Success: true, ApplicationID: req.ApplicationID, MatchScore: score}
}

// ScorePending scores every application of the job that has no score yet.
// Individual failures do not stop the batch.
func (s *Scorer) ScorePending(ctx context.Context, jobID uuid.UUID) ([]ScoreResult, error) {
	if jobID == uuid.Nil {
		return nil, errors.New("job id is required")
	}

	pending, err := s.store.ListUnscoredApplications(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("list unscored applications: %w", err)
	}

	results := make([]ScoreResult, 0, len(pending))
	for _, app := range pending {
		result := s.Run(ctx, ScoreRequest{
			ApplicationID: app.ID,
			JobID:         app.JobID,
			CandidateID:   app.CandidateID,
		})
		if !result.Success {
			s.logger.Warn("scoring failed",
				zap.String("application_id", app.ID.String()),
				zap.String("error", result.Error),
			)
		}
		results = append(results, result)
	}

	return results, nil
}

func parseScore(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	score, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, &InvalidScoreError{Raw: raw}
	}
	if score < minMatchScore || score > maxMatchScore {
		return 0, &InvalidScoreError{Raw: raw}
	}
	return score, nil
}

func buildScorePrompt(job *recruiting.JobPosting, profile *recruiting.CandidateProfile) string {
	replacements := map[string]string{
		"{{JOB_TITLE}}":            orUnspecified(job.Title),
		"{{JOB_DESCRIPTION}}":      orUnspecified(job.Description),
		"{{JOB_REQUIREMENTS}}":     listOrUnspecified(job.Requirements),
		"{{JOB_EMPLOYMENT_TYPE}}":  orUnspecified(job.EmploymentType),
		"{{JOB_EXPERIENCE_LEVEL}}": orUnspecified(job.ExperienceLevel),
		"{{JOB_SALARY}}":           salaryRange(job.SalaryMin, job.SalaryMax),
		"{{JOB_LOCATION}}":         jobLocation(job),
		"{{CANDIDATE_NAME}}":       orUnspecified(profile.DisplayName),
		"{{CANDIDATE_BIO}}":        orUnspecified(profile.Bio),
		"{{CANDIDATE_LOCATION}}":   orUnspecified(profile.Location),
		"{{CANDIDATE_SKILLS}}":     listOrUnspecified(profile.Skills),
		"{{CANDIDATE_EXPERIENCE}}": yearsOrUnspecified(profile.ExperienceYears),
		"{{CANDIDATE_SALARY}}":     salaryRange(profile.PreferredSalaryMin, profile.PreferredSalaryMax),
	}

	prompt := scorePromptTemplate
	for placeholder, value := range replacements {
		prompt = strings.ReplaceAll(prompt, placeholder, value)
	}
	return prompt
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return unspecified
	}
	return strings.TrimSpace(s)
}

func listOrUnspecified(items []string) string {
	if len(items) == 0 {
		return unspecified
	}
	return strings.Join(items, ", ")
}

func yearsOrUnspecified(years int) string {
	if years <= 0 {
		return unspecified
	}
	return strconv.Itoa(years)
}

func salaryRange(min, max int) string {
	if min <= 0 || max <= 0 {
		return unspecified
	}
	return fmt.Sprintf("%d - %d", min, max)
}

func jobLocation(job *recruiting.JobPosting) string {
	location := orUnspecified(job.Location)
	if job.Remote {
		if location == unspecified {
			return "Remote"
		}
		return location + " (remote)"
	}
	return location
}
