package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "ledgerio/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
	// HeaderActor names the party performing the request. It is recorded
	// in the audit trail as given; nothing authenticates it.
	HeaderActor = "X-Actor"
)

// Trace middleware adds request tracing context and the acting party.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		rc := &appctx.RequestContext{
			TraceID:   traceID,
			RequestID: requestID,
			Actor:     c.GetHeader(HeaderActor),
		}
		c.Request = c.Request.WithContext(appctx.WithRequest(c.Request.Context(), rc))

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
