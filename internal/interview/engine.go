package interview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/rctandrade/jobfitia-train-interview/internal/ai"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
	"github.com/rctandrade/jobfitia-train-interview/internal/util"
	"go.uber.org/zap"
)

//go:embed analysis_prompt.md
var analysisPromptTemplate string

const questionSystemPrompt = "You are an experienced professional interviewer. Ask relevant questions, give constructive feedback and be empathetic. Keep a professional but friendly tone."

const analysisSystemPrompt = "You are an expert in human resources and professional development. Provide constructive and actionable feedback."

const (
	questionMaxTokens   = 300
	questionTemperature = 0.8

	analysisMaxTokens   = 1500
	analysisTemperature = 0.3

	defaultMaxLogLength = 200

	unspecified = "Not specified"
)

type generator interface {
	Generate(ctx context.Context, req ai.Request) (string, error)
}

// Engine drives interview sessions through their state machine. Sessions are
// owned by the caller and passed into every operation; the engine itself holds
// no per-interview state, so independent sessions may run concurrently.
type Engine struct {
	generator generator
	logger    *zap.Logger
	maxLogLen int
}

func NewEngine(gen generator, logger *zap.Logger, maxLogLength int) *Engine {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Engine{generator: gen, logger: logger, maxLogLen: maxLogLength}
}

// Start creates a session of the given type and asks the first question,
// built from candidate context only.
func (e *Engine) Start(ctx context.Context, interviewType Type, profile *recruiting.CandidateProfile) (*Session, error) {
	if !interviewType.Valid() {
		return nil, fmt.Errorf("unsupported interview type: %s", interviewType)
	}
	if profile == nil {
		return nil, errors.New("candidate profile is required")
	}

	question, err := e.nextQuestion(ctx, interviewType, profile, nil)
	if err != nil {
		return nil, err
	}

	session := &Session{
		Type:            interviewType,
		Profile:         profile,
		State:           StateInProgress,
		Step:            1,
		CurrentQuestion: question,
	}

	e.logger.Info("interview started",
		zap.String("interview_type", string(interviewType)),
		zap.String("candidate_id", profile.ID.String()),
	)

	return session, nil
}

// SubmitAnswer records the answer to the current question. Below the
// conversation bound it asks the next question; at the bound it moves the
// session to analyzing and runs the analysis synchronously. A failed
// next-question call leaves the session untouched so the submission can be
// retried.
func (e *Engine) SubmitAnswer(ctx context.Context, session *Session, answer string) error {
	if session == nil {
		return errors.New("session is required")
	}
	if session.State != StateInProgress {
		return ErrNotInProgress
	}
	if strings.TrimSpace(answer) == "" {
		return ErrEmptyAnswer
	}

	responses := append(append([]Response{}, session.Responses...), Response{
		Question: session.CurrentQuestion,
		Answer:   strings.TrimSpace(answer),
	})

	if len(responses) < MaxQuestions {
		question, err := e.nextQuestion(ctx, session.Type, session.Profile, responses)
		if err != nil {
			return err
		}

		session.Responses = responses
		session.CurrentQuestion = question
		session.Step++
		return nil
	}

	session.Responses = responses
	session.CurrentQuestion = ""
	session.State = StateAnalyzing

	_, err := e.Analyze(ctx, session)
	return err
}

// Analyze produces the final structured assessment for a session in the
// analyzing state. On a malformed provider response the session stays in
// analyzing and the call can be retried; on success the session completes and
// its analysis becomes immutable.
func (e *Engine) Analyze(ctx context.Context, session *Session) (*Analysis, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	if session.State != StateAnalyzing {
		return nil, fmt.Errorf("interview session is %s, analysis requires the analyzing state", session.State)
	}

	prompt := buildAnalysisPrompt(session.Profile, session.Responses)

	e.logger.Debug("interview analysis request",
		zap.Int("responses", len(session.Responses)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.Generate(ctx, ai.Request{
		System:      analysisSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
	})
	if err != nil {
		return nil, err
	}

	analysis, err := parseAnalysis(raw, len(session.Responses))
	if err != nil {
		return nil, err
	}

	session.Analysis = analysis
	session.State = StateCompleted

	e.logger.Info("interview completed",
		zap.String("interview_type", string(session.Type)),
		zap.Int("overall_score", analysis.OverallScore),
	)

	return analysis, nil
}

func (e *Engine) nextQuestion(ctx context.Context, interviewType Type, profile *recruiting.CandidateProfile, history []Response) (string, error) {
	prompt := buildQuestionPrompt(interviewType, profile, history)

	e.logger.Debug("interview question request",
		zap.String("interview_type", string(interviewType)),
		zap.Int("history_length", len(history)),
		zap.String("prompt_preview", util.TruncateForLog(prompt, e.maxLogLen)),
	)

	question, err := e.generator.Generate(ctx, ai.Request{
		System:      questionSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   questionMaxTokens,
		Temperature: questionTemperature,
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(question), nil
}

func buildQuestionPrompt(interviewType Type, profile *recruiting.CandidateProfile, history []Response) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an experienced interviewer conducting %s.\n\n", typeDescriptions[interviewType])
	b.WriteString("Candidate profile:\n")
	fmt.Fprintf(&b, "- Experience: %s\n", experienceOrUnspecified(profile.ExperienceYears))
	fmt.Fprintf(&b, "- Skills: %s\n", listOrUnspecified(profile.Skills))
	fmt.Fprintf(&b, "- Bio: %s\n", orUnspecified(profile.Bio))

	if len(history) == 0 {
		b.WriteString("\nThis is the first question of the interview. Start with a warm-up question appropriate for the interview type.")
		return b.String()
	}

	b.WriteString("\nConversation history:\n")
	for i, response := range history {
		fmt.Fprintf(&b, "Question %d: %s\n", i+1, response.Question)
		fmt.Fprintf(&b, "Answer: %s\n\n", response.Answer)
	}
	b.WriteString("Based on the previous answers, ask the next appropriate question.")

	return b.String()
}

func buildAnalysisPrompt(profile *recruiting.CandidateProfile, responses []Response) string {
	var history strings.Builder
	for i, response := range responses {
		fmt.Fprintf(&history, "Question %d: %s\n", i+1, response.Question)
		fmt.Fprintf(&history, "Answer: %s\n\n", response.Answer)
	}

	replacements := map[string]string{
		"{{CANDIDATE_EXPERIENCE}}": experienceOrUnspecified(profile.ExperienceYears),
		"{{CANDIDATE_SKILLS}}":     listOrUnspecified(profile.Skills),
		"{{RESPONSES}}":            strings.TrimSpace(history.String()),
	}

	prompt := analysisPromptTemplate
	for placeholder, value := range replacements {
		prompt = strings.ReplaceAll(prompt, placeholder, value)
	}
	return prompt
}

// parseAnalysis decodes the provider response into the analysis schema and
// validates it. expectedFeedback is the number of answered questions; the
// analysis must carry one feedback entry per question.
func parseAnalysis(raw string, expectedFeedback int) (*Analysis, error) {
	cleaned := ai.ExtractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &AnalysisError{Reason: "response is not valid JSON", Err: err}
	}

	var analysis Analysis
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &analysis,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("build analysis decoder: %w", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, &AnalysisError{Reason: "response does not match the analysis schema", Err: err}
	}

	if analysis.OverallScore < 0 || analysis.OverallScore > 100 {
		return nil, &AnalysisError{Reason: fmt.Sprintf("overall score %d is out of range", analysis.OverallScore)}
	}
	if strings.TrimSpace(analysis.Summary) == "" {
		return nil, &AnalysisError{Reason: "missing summary"}
	}
	if len(analysis.DetailedFeedback) != expectedFeedback {
		return nil, &AnalysisError{Reason: fmt.Sprintf("expected %d feedback entries, got %d", expectedFeedback, len(analysis.DetailedFeedback))}
	}

	return &analysis, nil
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
