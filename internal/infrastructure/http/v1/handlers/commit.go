package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"ledgerio/internal/core/id"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/ingest"
	"ledgerio/internal/domain/ledger"
	"ledgerio/internal/infrastructure/http/v1/dto"
)

// ChartSource resolves the chart used to map account codes.
type ChartSource interface {
	GetChart(ctx context.Context, entityID id.ID) (*accounts.Chart, error)
}

// CommitHandler takes balanced transaction lines from outside systems.
type CommitHandler struct {
	*BaseHandler
	ingest   *ingest.Service
	ledgers  *ledger.Service
	charts   ChartSource
}

// NewCommitHandler creates a commit handler.
func NewCommitHandler(base *BaseHandler, ingestSvc *ingest.Service, ledgers *ledger.Service, charts ChartSource) *CommitHandler {
	return &CommitHandler{
		BaseHandler: base,
		ingest:      ingestSvc,
		ledgers:     ledgers,
		charts:      charts,
	}
}

// Commit handles POST /ledgers/:ledgerID/commit
func (h *CommitHandler) Commit(c *gin.Context) {
	ledgerID, ok := h.PathID(c, "ledgerID")
	if !ok {
		return
	}
	var body dto.CommitRequest
	if !h.BindJSON(c, &body) {
		return
	}
	ctx := c.Request.Context()

	var chart *accounts.Chart
	if needsChart(body) {
		l, err := h.ledgers.GetLedger(ctx, ledgerID)
		if err != nil {
			h.Error(c, err)
			return
		}
		if chart, err = h.charts.GetChart(ctx, l.EntityID); err != nil {
			h.Error(c, err)
			return
		}
	}

	req, err := body.ToDomain(ledgerID, chart)
	if err != nil {
		h.Error(c, err)
		return
	}
	je, lines, err := h.ingest.CommitTxs(ctx, req)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewJournalEntryResponse(je, lines))
}

func needsChart(body dto.CommitRequest) bool {
	for _, l := range body.Lines {
		if l.AccountID == "" {
			return true
		}
	}
	return false
}
