package handlers

import (
	"github.com/gin-gonic/gin"

	"ledgerio/internal/domain/digest"
	"ledgerio/internal/infrastructure/http/v1/dto"
)

// DigestHandler serves balance digests and financial statements.
type DigestHandler struct {
	*BaseHandler
	service    *digest.Service
	postedOnly bool
}

// NewDigestHandler creates a digest handler. postedOnly is the default for
// requests that do not set it.
func NewDigestHandler(base *BaseHandler, service *digest.Service, postedOnly bool) *DigestHandler {
	return &DigestHandler{
		BaseHandler: base,
		service:     service,
		postedOnly:  postedOnly,
	}
}

// Get handles GET /entities/:entityID/digest
func (h *DigestHandler) Get(c *gin.Context) {
	entityID, ok := h.PathID(c, "entityID")
	if !ok {
		return
	}
	var q dto.DigestQuery
	if !h.BindQuery(c, &q) {
		return
	}
	req, err := q.ToRequest(entityID, h.postedOnly)
	if err != nil {
		h.Error(c, err)
		return
	}
	d, err := h.service.Digest(c.Request.Context(), req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}
