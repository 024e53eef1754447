package services

import "context"

type contextKey string

const (
	artifactIDKey contextKey = "artifact_id"
	stageKey      contextKey = "stage"
	requestIDKey  contextKey = "request_id"
)

// WithArtifactID annotates context with the artifact identifier.
func WithArtifactID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, artifactIDKey, id)
}

// ArtifactIDFromContext extracts the artifact identifier if present.
func ArtifactIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(artifactIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithStage annotates context with the pipeline stage name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the stage name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(stageKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a per-pass correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(requestIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
