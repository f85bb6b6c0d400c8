package logging

import (
	"context"
	"log/slog"

	"midibot/internal/session"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSongID is the standardized structured logging key for catalog record identifiers.
	FieldSongID = "song_id"
	// FieldSong is the standardized structured logging key for a record's display key.
	FieldSong = "song"
	// FieldFileKind is the standardized structured logging key for attachment kinds.
	FieldFileKind = "file_kind"
	// FieldActor is the standardized structured logging key for the user driving a request.
	FieldActor = "actor"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if actor, ok := session.ActorFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldActor, actor))
	}
	if rid, ok := session.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
