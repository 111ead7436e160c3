package middleware

import (
	"context"

	"cardtrack/pkg/domain"
)

// Context keys for request-scoped identity and tracing values.
type contextKeyActor struct{}
type contextKeySessionID struct{}
type contextKeyRequestID struct{}

var (
	ContextKeyActor     = contextKeyActor{}
	ContextKeySessionID = contextKeySessionID{}
	ContextKeyRequestID = contextKeyRequestID{}
)

// GetActor retrieves the authenticated actor from the context. The zero
// Actor (empty name) means the request was not authenticated.
func GetActor(ctx context.Context) domain.Actor {
	actor, ok := ctx.Value(ContextKeyActor).(domain.Actor)
	if !ok {
		return domain.Actor{}
	}
	return actor
}

// GetSessionID retrieves the session ID from the context.
func GetSessionID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeySessionID).(string)
	if !ok {
		return ""
	}
	return id
}

// GetRequestID retrieves the request ID assigned by the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return id
}
