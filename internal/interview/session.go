package interview

import (
	"errors"
	"fmt"

	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
)

// MaxQuestions is the hard conversation bound. An interview always collects
// exactly this many question/answer pairs before analysis.
const MaxQuestions = 5

// State is the lifecycle state of an interview session.
type State string

const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateAnalyzing  State = "analyzing"
	StateCompleted  State = "completed"
)

// Type selects the interviewer persona.
type Type string

const (
	TypeTechnical  Type = "technical"
	TypeBehavioral Type = "behavioral"
	TypeLeadership Type = "leadership"
	TypeGeneral    Type = "general"
)

// typeDescriptions feeds the interviewer persona into the question prompts.
var typeDescriptions = map[Type]string{
	TypeTechnical:  "a technical interview focused on specific skills",
	TypeBehavioral: "a behavioral interview focused on soft skills and past experiences",
	TypeLeadership: "an interview for leadership positions",
	TypeGeneral:    "a general job interview",
}

// Valid reports whether t is a supported interview type.
func (t Type) Valid() bool {
	_, ok := typeDescriptions[t]
	return ok
}

// Response is one answered interview question.
type Response struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// QuestionFeedback is the per-question part of the final analysis.
type QuestionFeedback struct {
	Question    string   `json:"question"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions"`
}

// Analysis is the structured assessment produced after the final answer.
type Analysis struct {
	OverallScore     int                `json:"overall_score"`
	Strengths        []string           `json:"strengths"`
	ImprovementAreas []string           `json:"improvement_areas"`
	DetailedFeedback []QuestionFeedback `json:"detailed_feedback"`
	NextSteps        []string           `json:"next_steps"`
	Summary          string             `json:"summary"`
}

// Session is the caller-owned state of one simulated interview. A session
// supports a single active caller; concurrent submissions would corrupt the
// step ordering.
type Session struct {
	Type            Type
	Profile         *recruiting.CandidateProfile
	State           State
	Step            int
	CurrentQuestion string
	Responses       []Response
	// Analysis is set exactly once, when the session completes.
	Analysis *Analysis
}

// Reset returns the session to a fresh not_started state. It always succeeds,
// whatever the current state is.
func (s *Session) Reset() {
	s.State = StateNotStarted
	s.Step = 0
	s.CurrentQuestion = ""
	s.Responses = nil
	s.Analysis = nil
}

// ErrEmptyAnswer reports a blank answer submission. The session is not mutated.
var ErrEmptyAnswer = errors.New("answer must not be blank")

// ErrNotInProgress reports an answer submitted while the session is not
// accepting answers (never started, analyzing, or already completed).
var ErrNotInProgress = errors.New("interview session is not in progress")

// AnalysisError reports a provider response that fails to parse into the
// analysis schema. The session stays in the analyzing state so the analysis
// step can be retried without replaying the interview.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("interview analysis failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("interview analysis failed: %s", e.Reason)
}

func (e *AnalysisError) Unwrap() error { return e.Err }
