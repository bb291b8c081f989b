// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ledgerio/internal/core/apperror"
	appctx "ledgerio/internal/core/context"
	"ledgerio/pkg/logger"
)

// Recovery turns a panic in a handler into a 500 response. The stack goes
// to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			ctx := c.Request.Context()
			logger.Error(ctx, "panic recovered",
				"panic", r,
				"method", c.Request.Method,
				"route", c.FullPath(),
				"actor", appctx.GetActor(ctx),
				"stack", string(debug.Stack()),
			)
			c.Abort()
			if c.Writer.Written() {
				return
			}
			renderError(c, apperror.NewInternal(fmt.Errorf("panic in %s %s: %v", c.Request.Method, c.FullPath(), r)).
				WithDetail("request_id", appctx.GetRequestID(ctx)))
		}()
		c.Next()
	}
}
