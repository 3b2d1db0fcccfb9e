package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldItem is the standardized structured logging key for library item identifiers.
	FieldItem = "item"
	// FieldLabel is the standardized structured logging key for label names.
	FieldLabel = "label"
	// FieldExpression is the standardized structured logging key for query expressions.
	FieldExpression = "expression"
	// FieldOrientation is the standardized structured logging key for library orientations.
	FieldOrientation = "orientation"
	// FieldPath is the standardized structured logging key for filesystem paths.
	FieldPath = "path"
	// FieldCount is the standardized structured logging key for element counts.
	FieldCount = "count"
	// FieldRoute is the standardized structured logging key for HTTP route patterns.
	FieldRoute = "route"
	// FieldUser is the standardized structured logging key for authenticated usernames.
	FieldUser = "user"
	// FieldRole is the standardized structured logging key for session roles.
	FieldRole = "role"
	// FieldRequestID is the standardized structured logging key for request correlation identifiers.
	FieldRequestID = "request_id"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	userKey
)

// WithRequestID stores a request correlation identifier on the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request identifier stored on the context, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// WithUser stores the authenticated username on the context.
func WithUser(ctx context.Context, user string) context.Context {
	if user == "" {
		return ctx
	}
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the username stored on the context, if any.
func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userKey).(string)
	return user, ok && user != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if rid, ok := RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRequestID, rid))
	}
	if user, ok := UserFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldUser, user))
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
