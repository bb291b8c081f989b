package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/ledger"
	"ledgerio/internal/infrastructure/http/v1/dto"
)

// LedgerHandler manages entities, their units, charts and ledgers.
type LedgerHandler struct {
	*BaseHandler
	ledgers  *ledger.Service
	accounts *accounts.Service
}

// NewLedgerHandler creates a ledger handler.
func NewLedgerHandler(base *BaseHandler, ledgers *ledger.Service, accountsSvc *accounts.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		ledgers:     ledgers,
		accounts:    accountsSvc,
	}
}

// CreateEntity handles POST /entities
func (h *LedgerHandler) CreateEntity(c *gin.Context) {
	var req dto.CreateEntityRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.FyStartMonth == 0 {
		req.FyStartMonth = 1
	}
	ctx := c.Request.Context()
	e, err := h.ledgers.CreateEntity(ctx, req.Name, req.Slug, req.FyStartMonth)
	if err != nil {
		h.Error(c, err)
		return
	}
	if req.SeedChart {
		name := req.ChartName
		if name == "" {
			name = req.Name + " chart of accounts"
		}
		if _, err := h.accounts.SeedDefault(ctx, e.ID, name); err != nil {
			h.Error(c, err)
			return
		}
	}
	h.Created(c, e)
}

// GetEntity handles GET /entities/:entityID
func (h *LedgerHandler) GetEntity(c *gin.Context) {
	entityID, ok := h.PathID(c, "entityID")
	if !ok {
		return
	}
	e, err := h.ledgers.GetEntity(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, e)
}

// GetChart handles GET /entities/:entityID/accounts
func (h *LedgerHandler) GetChart(c *gin.Context) {
	entityID, ok := h.PathID(c, "entityID")
	if !ok {
		return
	}
	chart, err := h.accounts.GetChart(c.Request.Context(), entityID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, chart)
}

// CreateUnit handles POST /entities/:entityID/units
func (h *LedgerHandler) CreateUnit(c *gin.Context) {
	entityID, ok := h.PathID(c, "entityID")
	if !ok {
		return
	}
	var req dto.CreateUnitRequest
	if !h.BindJSON(c, &req) {
		return
	}
	u, err := h.ledgers.CreateUnit(c.Request.Context(), entityID, req.Name, req.Slug, req.Prefix)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, u)
}

// CreateLedger handles POST /entities/:entityID/ledgers
func (h *LedgerHandler) CreateLedger(c *gin.Context) {
	entityID, ok := h.PathID(c, "entityID")
	if !ok {
		return
	}
	var req dto.CreateLedgerRequest
	if !h.BindJSON(c, &req) {
		return
	}
	l, err := h.ledgers.CreateLedger(c.Request.Context(), entityID, req.Name)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, l)
}

// GetLedger handles GET /ledgers/:ledgerID
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	h.transition(c, h.ledgers.GetLedger)
}

// PostLedger handles POST /ledgers/:ledgerID/post
func (h *LedgerHandler) PostLedger(c *gin.Context) {
	h.transition(c, h.ledgers.Post)
}

// UnpostLedger handles POST /ledgers/:ledgerID/unpost
func (h *LedgerHandler) UnpostLedger(c *gin.Context) {
	h.transition(c, h.ledgers.Unpost)
}

// LockLedger handles POST /ledgers/:ledgerID/lock
func (h *LedgerHandler) LockLedger(c *gin.Context) {
	h.transition(c, h.ledgers.Lock)
}

// UnlockLedger handles POST /ledgers/:ledgerID/unlock
func (h *LedgerHandler) UnlockLedger(c *gin.Context) {
	h.transition(c, h.ledgers.Unlock)
}

func (h *LedgerHandler) transition(c *gin.Context, fn func(ctx context.Context, ledgerID id.ID) (*ledger.Ledger, error)) {
	ledgerID, ok := h.PathID(c, "ledgerID")
	if !ok {
		return
	}
	l, err := fn(c.Request.Context(), ledgerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, l)
}
