package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across jabsc.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity
	FieldInvocationID = "invocation_id"
	FieldComponent    = "component"

	// Paths
	FieldSourceDir  = "source_dir"
	FieldOutputDir  = "output_dir"
	FieldBuildRoot  = "build_root"
	FieldSourceRoot = "source_root"
	FieldFile       = "file"

	// Counts
	FieldCollected = "collected"
	FieldProduced  = "produced"
	FieldCount     = "count"

	// Execution
	FieldStage      = "stage"
	FieldCommand    = "command"
	FieldDurationMS = "duration_ms"
	FieldError      = "error"
	FieldOp         = "op"
)

type contextKey string

const (
	invocationIDKey contextKey = "logger_invocation_id"
	componentKey    contextKey = "logger_component"
)

// WithInvocationID adds an invocation ID to the context for logging
func WithInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, invocationIDKey, id)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if id, ok := ctx.Value(invocationIDKey).(string); ok && id != "" {
		fields = append(fields, FieldInvocationID, id)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}

	return fields
}

// FromContext returns base decorated with the fields carried by ctx.
// A nil base falls back to the global Logger.
func FromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if base == nil {
		base = Logger
	}
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}
