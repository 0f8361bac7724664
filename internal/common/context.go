package common

import (
	"context"
	"log/slog"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyDocumentID contextKey = "document_id"
	ContextKeyPipelineID contextKey = "pipeline_id"
)

// WithDocumentID adds a document ID to the context
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	return context.WithValue(ctx, ContextKeyDocumentID, documentID)
}

// DocumentIDFromContext extracts the document ID from context
func DocumentIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyDocumentID).(string); ok {
		return id
	}
	return ""
}

// WithPipelineID adds a pipeline ID to the context
func WithPipelineID(ctx context.Context, pipelineID string) context.Context {
	return context.WithValue(ctx, ContextKeyPipelineID, pipelineID)
}

// PipelineIDFromContext extracts the pipeline ID from context
func PipelineIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyPipelineID).(string); ok {
		return id
	}
	return ""
}

// LoggerWithContext returns logger enriched with the IDs carried by ctx.
func LoggerWithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := PipelineIDFromContext(ctx); id != "" {
		logger = logger.With("pipeline_id", id)
	}
	if id := DocumentIDFromContext(ctx); id != "" {
		logger = logger.With("document_id", id)
	}
	return logger
}
