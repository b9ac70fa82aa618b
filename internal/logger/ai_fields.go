package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// CommonFields returns standard zap fields that describe the AI provider and
// model. Empty values are ignored to keep log entries compact when information
// is missing.
func CommonFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if value := strings.TrimSpace(provider); value != "" {
		fields = append(fields, zap.String(FieldProvider, value))
	}
	if value := strings.TrimSpace(model); value != "" {
		fields = append(fields, zap.String(FieldModel, value))
	}
	return fields
}

// WithCommonFields attaches the common AI fields to the provided logger.
// A nil logger falls back to a no-op logger to avoid panics.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	fields := CommonFields(provider, model)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}
