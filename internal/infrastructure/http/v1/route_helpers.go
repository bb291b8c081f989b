// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// LifecycleRouteHandler is implemented by handlers of records that move
// through the post/lock state machine.
type LifecycleRouteHandler interface {
	Get(c *gin.Context)
	Post(c *gin.Context)
	Unpost(c *gin.Context)
	Delete(c *gin.Context)
}

// LockRouteHandler is an optional interface for records that can be locked.
type LockRouteHandler interface {
	Lock(c *gin.Context)
	Unlock(c *gin.Context)
}

// VerifyRouteHandler is an optional interface for records verified
// before posting.
type VerifyRouteHandler interface {
	Verify(c *gin.Context)
}

// RefreshRouteHandler is an optional interface for records whose lines
// are rebuilt from current balances.
type RefreshRouteHandler interface {
	Refresh(c *gin.Context)
}

// RegisterLifecycleRoutes registers read, delete and state transition
// routes under group. Optional transitions are registered when the handler
// implements them.
//
// Usage:
//
//	handler := handlers.NewJournalHandler(baseHandler, journalService)
//	RegisterLifecycleRoutes(api.Group("/journal-entries"), handler)
func RegisterLifecycleRoutes(group *gin.RouterGroup, handler LifecycleRouteHandler) {
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
	group.POST("/:id/post", handler.Post)
	group.POST("/:id/unpost", handler.Unpost)

	if h, ok := handler.(LockRouteHandler); ok {
		group.POST("/:id/lock", h.Lock)
		group.POST("/:id/unlock", h.Unlock)
	}
	if h, ok := handler.(VerifyRouteHandler); ok {
		group.POST("/:id/verify", h.Verify)
	}
	if h, ok := handler.(RefreshRouteHandler); ok {
		group.POST("/:id/refresh", h.Refresh)
	}
}
