// Package context carries request-scoped values (trace ids, acting party)
// through the ledger services without coupling them to the transport.
package context

import (
	"context"

	"github.com/google/uuid"
)

// RequestContext contains tracing information and the party performing the
// operation. Actor is free text supplied by the caller (a user name, a job
// name); the core does not authenticate it.
type RequestContext struct {
	TraceID   string
	RequestID string
	Actor     string
}

type requestContextKey struct{}

// WithRequest adds RequestContext to context.
func WithRequest(ctx context.Context, rc *RequestContext) context.Context {
	return context.WithValue(ctx, requestContextKey{}, rc)
}

// GetRequest returns RequestContext from context.
func GetRequest(ctx context.Context) *RequestContext {
	if v, ok := ctx.Value(requestContextKey{}).(*RequestContext); ok {
		return v
	}
	return nil
}

// GetRequestID returns request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if rc := GetRequest(ctx); rc != nil {
		return rc.RequestID
	}
	return ""
}

// GetActor returns the acting party or "system" when none was set.
func GetActor(ctx context.Context) string {
	if rc := GetRequest(ctx); rc != nil && rc.Actor != "" {
		return rc.Actor
	}
	return "system"
}

// NewRequestContext creates a RequestContext with generated IDs.
func NewRequestContext(actor string) *RequestContext {
	return &RequestContext{
		TraceID:   uuid.New().String(),
		RequestID: uuid.New().String(),
		Actor:     actor,
	}
}
