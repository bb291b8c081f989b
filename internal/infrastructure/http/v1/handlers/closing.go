package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/closing"
	"ledgerio/internal/infrastructure/http/v1/dto"
)

// ClosingHandler manages period closing entries.
type ClosingHandler struct {
	*BaseHandler
	service *closing.Service
}

// NewClosingHandler creates a closing entry handler.
func NewClosingHandler(base *BaseHandler, service *closing.Service) *ClosingHandler {
	return &ClosingHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /entities/:entityID/closing-entries
func (h *ClosingHandler) Create(c *gin.Context) {
	entityID, ok := h.PathID(c, "entityID")
	if !ok {
		return
	}
	var req dto.CreateClosingRequest
	if !h.BindJSON(c, &req) {
		return
	}
	date, err := req.Date()
	if err != nil {
		h.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	ce, err := h.service.Create(ctx, entityID, date)
	if err != nil {
		h.Error(c, err)
		return
	}
	if req.Post {
		if ce, err = h.service.Post(ctx, ce.ID); err != nil {
			h.Error(c, err)
			return
		}
	}
	h.Created(c, ce)
}

// List handles GET /entities/:entityID/closing-entries
func (h *ClosingHandler) List(c *gin.Context) {
	entityID, ok := h.PathID(c, "entityID")
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// Get handles GET /closing-entries/:id
func (h *ClosingHandler) Get(c *gin.Context) {
	h.apply(c, h.service.Get)
}

// Refresh handles POST /closing-entries/:id/refresh
func (h *ClosingHandler) Refresh(c *gin.Context) {
	h.apply(c, h.service.UpdateTransactions)
}

// Post handles POST /closing-entries/:id/post
func (h *ClosingHandler) Post(c *gin.Context) {
	h.apply(c, h.service.Post)
}

// Unpost handles POST /closing-entries/:id/unpost
func (h *ClosingHandler) Unpost(c *gin.Context) {
	h.apply(c, h.service.Unpost)
}

// Delete handles DELETE /closing-entries/:id
func (h *ClosingHandler) Delete(c *gin.Context) {
	closingID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), closingID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ClosingHandler) apply(c *gin.Context, fn func(ctx context.Context, closingID id.ID) (*closing.ClosingEntry, error)) {
	closingID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	ce, err := fn(c.Request.Context(), closingID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, ce)
}
