package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ledgerio/internal/domain/journal"
	"ledgerio/internal/infrastructure/http/v1/dto"
)

// JournalHandler exposes the journal entry lifecycle.
type JournalHandler struct {
	*BaseHandler
	service *journal.Service
}

// NewJournalHandler creates a journal entry handler.
func NewJournalHandler(base *BaseHandler, service *journal.Service) *JournalHandler {
	return &JournalHandler{
		BaseHandler: base,
		service:     service,
	}
}

// strict makes refused transitions visible to API clients.
var strict = journal.Options{Commit: true, RaiseException: true}

// Get handles GET /journal-entries/:id
func (h *JournalHandler) Get(c *gin.Context) {
	h.respond(c, func(context.Context, *journal.JournalEntry) error { return nil })
}

// Verify handles POST /journal-entries/:id/verify
func (h *JournalHandler) Verify(c *gin.Context) {
	h.respond(c, func(ctx context.Context, je *journal.JournalEntry) error {
		_, err := h.service.Verify(ctx, je, journal.VerifyOptions{Force: true, RaiseException: true})
		return err
	})
}

// Post handles POST /journal-entries/:id/post
func (h *JournalHandler) Post(c *gin.Context) {
	var req dto.PostRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}
	opts := journal.PostOptions{
		Options:   strict,
		Verify:    req.Verify == nil || *req.Verify,
		ForceLock: req.ForceLock,
	}
	h.respond(c, func(ctx context.Context, je *journal.JournalEntry) error {
		return h.service.MarkAsPosted(ctx, je, opts)
	})
}

// Unpost handles POST /journal-entries/:id/unpost
func (h *JournalHandler) Unpost(c *gin.Context) {
	h.respond(c, func(ctx context.Context, je *journal.JournalEntry) error {
		return h.service.MarkAsUnposted(ctx, je, strict)
	})
}

// Lock handles POST /journal-entries/:id/lock
func (h *JournalHandler) Lock(c *gin.Context) {
	h.respond(c, func(ctx context.Context, je *journal.JournalEntry) error {
		return h.service.MarkAsLocked(ctx, je, strict)
	})
}

// Unlock handles POST /journal-entries/:id/unlock
func (h *JournalHandler) Unlock(c *gin.Context) {
	h.respond(c, func(ctx context.Context, je *journal.JournalEntry) error {
		return h.service.MarkAsUnlocked(ctx, je, strict)
	})
}

// Delete handles DELETE /journal-entries/:id
func (h *JournalHandler) Delete(c *gin.Context) {
	jeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), jeID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// respond loads the entry, applies fn and answers with the entry and its
// lines.
func (h *JournalHandler) respond(c *gin.Context, fn func(ctx context.Context, je *journal.JournalEntry) error) {
	jeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	je, err := h.service.Get(ctx, jeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := fn(ctx, je); err != nil {
		h.Error(c, err)
		return
	}
	resp, err := h.load(ctx, je)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, resp)
}

func (h *JournalHandler) load(ctx context.Context, je *journal.JournalEntry) (dto.JournalEntryResponse, error) {
	lines, err := h.service.Transactions(ctx, je.ID)
	if err != nil {
		return dto.JournalEntryResponse{}, err
	}
	return dto.NewJournalEntryResponse(je, lines), nil
}

// ListTransactions handles GET /journal-entries/:id/transactions
func (h *JournalHandler) ListTransactions(c *gin.Context) {
	jeID, ok := h.PathID(c, "id")
	if !ok {
		return
	}
	lines, err := h.service.Transactions(c.Request.Context(), jeID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ListResponse{Items: lines, Count: len(lines)})
}

