package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Request describes a single inference call against the language-model provider.
type Request struct {
	// System is the system instruction. May be empty.
	System string
	// Prompt is the user prompt. Must not be blank.
	Prompt string
	// MaxTokens caps the generated output length.
	MaxTokens int32
	// Temperature controls sampling randomness.
	Temperature float32
}

// Generator is the inference gateway. Implementations perform exactly one
// network round trip per call and never retry on their own; retry and timeout
// policy belong to the caller. No ordering guarantee exists between
// independent calls.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Model() string
}

// ErrMissingAPIKey is returned when the provider credential is not configured.
var ErrMissingAPIKey = errors.New("provider api key is required")

// ErrEmptyResponse is returned when the provider answered without any usable text.
var ErrEmptyResponse = errors.New("provider returned an empty response")

// ProviderError describes a failed provider round trip (HTTP error, quota,
// transport failure). Code is the HTTP status code when known, zero otherwise.
type ProviderError struct {
	Code   int
	Status string
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("provider error %d %s: %v", e.Code, e.Status, e.Err)
	}
	return fmt.Sprintf("provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying: server-side
// failures and rate limiting. Client errors (bad request, auth) are not.
func (e *ProviderError) Retryable() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}

// IsRetryable classifies an inference error for caller-side retry policy.
// Timeouts count as retryable per the gateway contract.
func IsRetryable(err error) bool {
	var provider *ProviderError
	if errors.As(err, &provider) {
		return provider.Retryable()
	}
	return errors.Is(err, context.DeadlineExceeded)
}
