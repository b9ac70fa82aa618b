package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rctandrade/jobfitia-train-interview/internal/ai"
	"github.com/rctandrade/jobfitia-train-interview/internal/recruiting"
)

// scriptedGenerator answers each call with the next scripted response.
type scriptedGenerator struct {
	responses []string
	errs      []error
	requests  []ai.Request
}

func (s *scriptedGenerator) Generate(_ context.Context, req ai.Request) (string, error) {
	s.requests = append(s.requests, req)

	call := len(s.requests) - 1
	if call < len(s.errs) && s.errs[call] != nil {
		return "", s.errs[call]
	}
	if call >= len(s.responses) {
		return "", errors.New("no scripted response left")
	}
	return s.responses[call], nil
}

func interviewProfile() *recruiting.CandidateProfile {
	return &recruiting.CandidateProfile{
		ID:              uuid.New(),
		DisplayName:     "Ada Example",
		Bio:             "Backend engineer",
		Skills:          []string{"Go", "SQL"},
		ExperienceYears: 5,
	}
}

func validAnalysisResponse(feedbackEntries int) string {
	var feedback []string
	for i := 0; i < feedbackEntries; i++ {
		feedback = append(feedback, fmt.Sprintf(`{"question": "q%d", "feedback": "solid answer", "suggestions": ["be more concrete"]}`, i+1))
	}

	return fmt.Sprintf(`{
		"overall_score": 78,
		"strengths": ["clear communication"],
		"improvement_areas": ["system design depth"],
		"detailed_feedback": [%s],
		"next_steps": ["practice system design"],
		"summary": "a solid performance with room to grow"
	}`, strings.Join(feedback, ","))
}

// fullInterviewScript returns responses for 5 questions plus the analysis.
func fullInterviewScript() []string {
	return []string{
		"Tell me about yourself.",
		"What is your biggest strength?",
		"Describe a hard bug you fixed.",
		"How do you handle disagreements?",
		"Where do you see yourself in five years?",
		validAnalysisResponse(MaxQuestions),
	}
}

func TestStartAsksFirstQuestion(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"  Tell me about yourself.  "}}
	engine := NewEngine(gen, nil, 0)

	session, err := engine.Start(context.Background(), TypeTechnical, interviewProfile())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if session.State != StateInProgress || session.Step != 1 {
		t.Fatalf("unexpected session state: %s step %d", session.State, session.Step)
	}
	if session.CurrentQuestion != "Tell me about yourself." {
		t.Fatalf("expected trimmed question, got %q", session.CurrentQuestion)
	}

	req := gen.requests[0]
	if req.MaxTokens != questionMaxTokens || req.Temperature != questionTemperature {
		t.Fatalf("unexpected question parameters: %+v", req)
	}
	if !strings.Contains(req.Prompt, "a technical interview focused on specific skills") {
		t.Fatalf("prompt does not carry the interview type: %q", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "first question") {
		t.Fatalf("first prompt must mark the warm-up question: %q", req.Prompt)
	}
}

func TestStartRejectsUnknownType(t *testing.T) {
	engine := NewEngine(&scriptedGenerator{}, nil, 0)
	if _, err := engine.Start(context.Background(), Type("casual"), interviewProfile()); err == nil {
		t.Fatal("expected error for unknown interview type")
	}
}

func TestFullInterviewFlow(t *testing.T) {
	gen := &scriptedGenerator{responses: fullInterviewScript()}
	engine := NewEngine(gen, nil, 0)
	ctx := context.Background()

	session, err := engine.Start(ctx, TypeBehavioral, interviewProfile())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 1; i <= MaxQuestions; i++ {
		if session.Step != i {
			t.Fatalf("expected step %d, got %d", i, session.Step)
		}
		if err := engine.SubmitAnswer(ctx, session, fmt.Sprintf("answer %d", i)); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	if session.State != StateCompleted {
		t.Fatalf("expected completed session, got %s", session.State)
	}
	if len(session.Responses) != MaxQuestions {
		t.Fatalf("expected %d responses, got %d", MaxQuestions, len(session.Responses))
	}
	if session.CurrentQuestion != "" {
		t.Fatalf("expected no open question after completion, got %q", session.CurrentQuestion)
	}
	if session.Analysis == nil || session.Analysis.OverallScore != 78 {
		t.Fatalf("unexpected analysis: %+v", session.Analysis)
	}

	// 5 questions + 1 analysis call.
	if len(gen.requests) != MaxQuestions+1 {
		t.Fatalf("expected %d provider calls, got %d", MaxQuestions+1, len(gen.requests))
	}

	analysisReq := gen.requests[MaxQuestions]
	if analysisReq.MaxTokens != analysisMaxTokens || analysisReq.Temperature != analysisTemperature {
		t.Fatalf("unexpected analysis parameters: %+v", analysisReq)
	}
	for i := 1; i <= MaxQuestions; i++ {
		if !strings.Contains(analysisReq.Prompt, fmt.Sprintf("answer %d", i)) {
			t.Fatalf("analysis prompt is missing answer %d", i)
		}
	}
}

func TestSubmitAnswerRejectsBlankAnswer(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{"First question?"}}
	engine := NewEngine(gen, nil, 0)

	session, err := engine.Start(context.Background(), TypeGeneral, interviewProfile())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	err = engine.SubmitAnswer(context.Background(), session, "   \n ")
	if !errors.Is(err, ErrEmptyAnswer) {
		t.Fatalf("expected ErrEmptyAnswer, got %v", err)
	}

	if session.Step != 1 || len(session.Responses) != 0 {
		t.Fatalf("blank answer must not mutate the session: step %d, %d responses", session.Step, len(session.Responses))
	}
}

func TestSubmitAnswerAfterCompletion(t *testing.T) {
	gen := &scriptedGenerator{responses: fullInterviewScript()}
	engine := NewEngine(gen, nil, 0)
	ctx := context.Background()

	session, err := engine.Start(ctx, TypeLeadership, interviewProfile())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 1; i <= MaxQuestions; i++ {
		if err := engine.SubmitAnswer(ctx, session, "an answer"); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	err = engine.SubmitAnswer(ctx, session, "one more answer")
	if !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
	if len(session.Responses) != MaxQuestions {
		t.Fatalf("completed session must not accept answers, got %d responses", len(session.Responses))
	}
}

func TestSubmitAnswerQuestionFailureLeavesSessionRetryable(t *testing.T) {
	gen := &scriptedGenerator{
		responses: []string{"First question?", "", "Second question?"},
		errs:      []error{nil, &ai.ProviderError{Code: 503, Status: "UNAVAILABLE"}, nil},
	}
	engine := NewEngine(gen, nil, 0)
	ctx := context.Background()

	session, err := engine.Start(ctx, TypeGeneral, interviewProfile())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := engine.SubmitAnswer(ctx, session, "my answer"); err == nil {
		t.Fatal("expected provider error")
	}
	if session.Step != 1 || len(session.Responses) != 0 {
		t.Fatalf("failed submission must not mutate the session: step %d, %d responses", session.Step, len(session.Responses))
	}

	// The same answer can be resubmitted.
	if err := engine.SubmitAnswer(ctx, session, "my answer"); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if session.Step != 2 || session.CurrentQuestion != "Second question?" {
		t.Fatalf("unexpected session after retry: step %d, question %q", session.Step, session.CurrentQuestion)
	}
}

func TestAnalyzeMalformedResponseStaysRetryable(t *testing.T) {
	script := fullInterviewScript()
	script[MaxQuestions] = "not json at all"
	gen := &scriptedGenerator{responses: append(script, validAnalysisResponse(MaxQuestions))}
	engine := NewEngine(gen, nil, 0)
	ctx := context.Background()

	session, err := engine.Start(ctx, TypeTechnical, interviewProfile())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 1; i < MaxQuestions; i++ {
		if err := engine.SubmitAnswer(ctx, session, "an answer"); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	err = engine.SubmitAnswer(ctx, session, "final answer")
	var analysisErr *AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
	if session.State != StateAnalyzing {
		t.Fatalf("session must stay analyzing after a malformed analysis, got %s", session.State)
	}
	if session.Analysis != nil {
		t.Fatal("no analysis must be recorded on failure")
	}

	// Analysis can be retried without replaying the interview.
	analysis, err := engine.Analyze(ctx, session)
	if err != nil {
		t.Fatalf("retry analyze: %v", err)
	}
	if session.State != StateCompleted || analysis.OverallScore != 78 {
		t.Fatalf("unexpected state after retry: %s, %+v", session.State, analysis)
	}
}

func TestAnalyzeValidatesSchema(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"score out of range", strings.Replace(validAnalysisResponse(1), `"overall_score": 78`, `"overall_score": 140`, 1)},
		{"missing summary", strings.Replace(validAnalysisResponse(1), `"a solid performance with room to grow"`, `""`, 1)},
		{"wrong feedback count", validAnalysisResponse(3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			session := &Session{
				Type:    TypeGeneral,
				Profile: interviewProfile(),
				State:   StateAnalyzing,
				Responses: []Response{
					{Question: "q1", Answer: "a1"},
				},
			}
			engine := NewEngine(&scriptedGenerator{responses: []string{tc.response}}, nil, 0)

			_, err := engine.Analyze(context.Background(), session)
			var analysisErr *AnalysisError
			if !errors.As(err, &analysisErr) {
				t.Fatalf("expected AnalysisError, got %v", err)
			}
		})
	}
}

func TestAnalyzeRequiresAnalyzingState(t *testing.T) {
	engine := NewEngine(&scriptedGenerator{}, nil, 0)
	session := &Session{State: StateInProgress, Profile: interviewProfile()}

	if _, err := engine.Analyze(context.Background(), session); err == nil {
		t.Fatal("expected error outside the analyzing state")
	}
}

func TestSessionReset(t *testing.T) {
	gen := &scriptedGenerator{responses: fullInterviewScript()}
	engine := NewEngine(gen, nil, 0)
	ctx := context.Background()

	session, err := engine.Start(ctx, TypeTechnical, interviewProfile())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for i := 1; i <= MaxQuestions; i++ {
		if err := engine.SubmitAnswer(ctx, session, "an answer"); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}

	session.Reset()

	if session.State != StateNotStarted || session.Step != 0 {
		t.Fatalf("unexpected state after reset: %s step %d", session.State, session.Step)
	}
	if session.CurrentQuestion != "" || session.Responses != nil || session.Analysis != nil {
		t.Fatal("reset must clear question, responses and analysis")
	}
	if session.Type != TypeTechnical || session.Profile == nil {
		t.Fatal("reset must keep the interview type and profile")
	}
}
