package curriculum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/rctandrade/jobfitia-train-interview/internal/ai"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/rctandrade/jobfitia-train-interview/internal/util"
	"go.uber.org/zap"
)

//go:embed plan_prompt.md
var planPromptTemplate string

const planSystemPrompt = "You are an expert in career development and professional education. Create personalized and practical learning paths."

const (
	planMaxTokens   = 2000
	planTemperature = 0.7

	defaultMaxLogLength = 200

	unspecified = "Not specified"
)

type generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

// PlanStore persists a plan and its modules as one logical unit: either the
// plan with all its modules is stored or nothing is.
type PlanStore interface {
	CreatePlanWithModules(ctx context.Context, plan *LearningPlan) error
}

// GenerateResult is the invocation surface result for plan generation.
type GenerateResult struct {
	Success      bool          `json:"success"`
	LearningPath *LearningPlan `json:"learningPath,omitempty"`
	Error        string        `json:"error,omitempty"`
}

// Generator produces learning plans for a (candidate, job) pair.
type Generator struct {
	generator generator
	store     PlanStore
	logger    *zap.Logger
	maxLogLen int
	now       func() time.Time
}

func NewGenerator(gen generator, store PlanStore, logger *zap.Logger, maxLogLength int) *Generator {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Generator{
		generator: gen,
		store:     store,
		logger:    logger,
		maxLogLen: maxLogLength,
		now:       time.Now,
	}
}

// Generate builds the skill-gap prompt, requests a structured plan and
// persists it atomically. Any schema violation in the provider response is a
// fatal PlanGenerationError and nothing is written. Regeneration always
// creates a new independent plan.
func (g *Generator) Generate(ctx context.Context, profile *recruiting.CandidateProfile, job *recruiting.JobPosting) (*LearningPlan, error) {
	if profile == nil {
		return nil, errors.New("candidate profile is required")
	}
	if job == nil {
		return nil, errors.New("job posting is required")
	}

	prompt := buildPlanPrompt(profile, job)

	g.logger.Debug("learning plan request",
		zap.String("job_id", job.ID.String()),
		zap.String("candidate_id", profile.ID.String()),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, g.maxLogLen)),
	)

	raw, err := g.generator.Generate(ctx, ai.Request{
		System:      planSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   planMaxTokens,
		Temperature: planTemperature,
	})
	if err != nil {
		return nil, err
	}

	payload, err := parsePlanPayload(raw)
	if err != nil {
		return nil, err
	}

	plan := g.buildPlan(payload, profile, job)

	if err := g.store.CreatePlanWithModules(ctx, plan); err != nil {
		return nil, fmt.Errorf("persist learning plan: %w", err)
	}

	g.logger.Info("learning plan created",
		zap.String("plan_id", plan.ID.String()),
		zap.String("job_id", job.ID.String()),
		zap.Int("modules", len(plan.Modules)),
		zap.Int("estimated_weeks", plan.EstimatedWeeks),
	)

	return plan, nil
}

// Run wraps Generate into the invocation surface result shape.
func (g *Generator) Run(ctx context.Context, profile *recruiting.CandidateProfile, job *recruiting.JobPosting) GenerateResult {
	plan, err := g.Generate(ctx, profile, job)
	if err != nil {
		return GenerateResult{Error: err.Error()}
	}
	return GenerateResult{Success: true, LearningPath: plan}
}

type planPayload struct {
	Title          string          `mapstructure:"title"`
	Description    string          `mapstructure:"description"`
	EstimatedWeeks int             `mapstructure:"estimated_weeks"`
	Modules        []modulePayload `mapstructure:"modules"`
}

type modulePayload struct {
	Title           string   `mapstructure:"title"`
	Description     string   `mapstructure:"description"`
	Type            string   `mapstructure:"type"`
	EstimatedHours  int      `mapstructure:"estimated_hours"`
	Resources       []string `mapstructure:"resources"`
	SkillsDeveloped []string `mapstructure:"skills_developed"`
}

// parsePlanPayload decodes the provider response into the plan schema.
// Decoding is lenient about number/string representations; validation is not.
func parsePlanPayload(raw string) (*planPayload, error) {
	cleaned := ai.ExtractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &PlanGenerationError{Reason: "response is not valid JSON", Err: err}
	}

	var payload planPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &payload,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build plan decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, &PlanGenerationError{Reason: "response does not match the plan schema", Err: err}
	}

	if err := payload.validate(); err != nil {
		return nil, err
	}

	return &payload, nil
}

func (p *planPayload) validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return &PlanGenerationError{Reason: "missing plan title"}
	}
	if strings.TrimSpace(p.Description) == "" {
		return &PlanGenerationError{Reason: "missing plan description"}
	}
	if p.EstimatedWeeks <= 0 {
		return &PlanGenerationError{Reason: "estimated_weeks must be a positive number"}
	}
	if len(p.Modules) == 0 {
		return &PlanGenerationError{Reason: "plan has no modules"}
	}

	for i, module := range p.Modules {
		if strings.TrimSpace(module.Title) == "" {
			return &PlanGenerationError{Reason: fmt.Sprintf("module %d has no title", i+1)}
		}
		if strings.TrimSpace(module.Description) == "" {
			return &PlanGenerationError{Reason: fmt.Sprintf("module %d has no description", i+1)}
		}
		if !ModuleType(module.Type).Valid() {
			return &PlanGenerationError{Reason: fmt.Sprintf("module %d has unknown type %q", i+1, module.Type)}
		}
		if module.EstimatedHours <= 0 {
			return &PlanGenerationError{Reason: fmt.Sprintf("module %d has no estimated hours", i+1)}
		}
	}

	return nil
}

func (g *Generator) buildPlan(payload *planPayload, profile *recruiting.CandidateProfile, job *recruiting.JobPosting) *LearningPlan {
	plan := &LearningPlan{
		ID:             uuid.New(),
		JobID:          job.ID,
		CandidateID:    profile.ID,
		Title:          strings.TrimSpace(payload.Title),
		Description:    strings.TrimSpace(payload.Description),
		EstimatedWeeks: payload.EstimatedWeeks,
		CreatedAt:      g.now().UTC(),
	}

	for i, module := range payload.Modules {
		plan.Modules = append(plan.Modules, &LearningModule{
			ID:              uuid.New(),
			PlanID:          plan.ID,
			Order:           i + 1,
			Title:           strings.TrimSpace(module.Title),
			Description:     strings.TrimSpace(module.Description),
			Type:            ModuleType(module.Type),
			EstimatedHours:  module.EstimatedHours,
			Resources:       module.Resources,
			SkillsDeveloped: module.SkillsDeveloped,
		})
	}

	return plan
}

func buildPlanPrompt(profile *recruiting.CandidateProfile, job *recruiting.JobPosting) string {
	replacements := map[string]string{
		"{{CANDIDATE_EXPERIENCE}}": experienceOrUnspecified(profile.ExperienceYears),
		"{{CANDIDATE_SKILLS}}":     listOrUnspecified(profile.Skills),
		"{{CANDIDATE_BIO}}":        orUnspecified(profile.Bio),
		"{{JOB_TITLE}}":            orUnspecified(job.Title),
		"{{JOB_DESCRIPTION}}":      orUnspecified(job.Description),
		"{{JOB_REQUIREMENTS}}":     listOrUnspecified(job.Requirements),
		"{{JOB_EXPERIENCE_LEVEL}}": orUnspecified(job.ExperienceLevel),
	}

	prompt := planPromptTemplate
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

func experienceOrUnspecified(years int) string {
	if years <= 0 {
		return unspecified
	}
	return strconv.Itoa(years) + " years"
}
