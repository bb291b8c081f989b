package dto

import (
	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/id"
	"ledgerio/internal/core/types"
	"ledgerio/internal/domain/accounts"
	"ledgerio/internal/domain/ingest"
	"ledgerio/internal/domain/journal"
)

// CommitLineRequest is one transaction line of a commit.
type CommitLineRequest struct {
	AccountID   string      `json:"accountId"`
	AccountCode string      `json:"accountCode"`
	TxType      string      `json:"txType" binding:"required"`
	Amount      types.Money `json:"amount"`
	Description string      `json:"description"`
}

// CommitRequest is the body of POST /ledgers/:ledgerID/commit.
type CommitRequest struct {
	Date           string              `json:"date" binding:"required"`
	UnitID         string              `json:"unitId"`
	Posted         bool                `json:"posted"`
	Description    string              `json:"description"`
	Origin         string              `json:"origin"`
	ReconcileDrift bool                `json:"reconcileDrift"`
	Lines          []CommitLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToDomain converts the body into an ingest request for ledgerID.
// Lines naming an account by code are resolved against chart.
func (r CommitRequest) ToDomain(ledgerID id.ID, chart *accounts.Chart) (ingest.CommitRequest, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return ingest.CommitRequest{}, err
	}
	unitID, err := parseOptionalID("unitId", r.UnitID)
	if err != nil {
		return ingest.CommitRequest{}, err
	}

	req := ingest.CommitRequest{
		Date:           date,
		LedgerID:       ledgerID,
		UnitID:         unitID,
		Posted:         r.Posted,
		Description:    r.Description,
		Origin:         r.Origin,
		ReconcileDrift: r.ReconcileDrift,
		Lines:          make([]ingest.Line, 0, len(r.Lines)),
	}
	for i, l := range r.Lines {
		line, err := l.toDomain(i, chart)
		if err != nil {
			return ingest.CommitRequest{}, err
		}
		req.Lines = append(req.Lines, line)
	}
	return req, nil
}

func (l CommitLineRequest) toDomain(i int, chart *accounts.Chart) (ingest.Line, error) {
	txType, err := accounts.ParseBalanceType(l.TxType)
	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			return ingest.Line{}, appErr.WithDetail("line", i)
		}
		return ingest.Line{}, err
	}
	line := ingest.Line{
		AccountCode: l.AccountCode,
		TxType:      txType,
		Amount:      l.Amount,
		Description: l.Description,
	}
	if l.AccountID != "" {
		accountID, err := id.Parse(l.AccountID)
		if err != nil {
			return ingest.Line{}, invalidLine(i, "accountId", l.AccountID)
		}
		line.AccountID = accountID
		return line, nil
	}
	if chart != nil && l.AccountCode != "" {
		if a, ok := chart.ByCode(l.AccountCode); ok {
			line.AccountID = a.ID
			return line, nil
		}
	}
	return ingest.Line{}, invalidLine(i, "accountCode", l.AccountCode)
}

func invalidLine(i int, field, value string) error {
	return apperror.NewValidation("transaction line must name a known account").
		WithDetail("line", i).
		WithDetail("field", field).
		WithDetail("value", value)
}

// JournalEntryResponse is an entry with its lines.
type JournalEntryResponse struct {
	*journal.JournalEntry
	Verified     bool                  `json:"verified"`
	Transactions []journal.Transaction `json:"transactions"`
}

// NewJournalEntryResponse builds the response.
func NewJournalEntryResponse(je *journal.JournalEntry, lines []journal.Transaction) JournalEntryResponse {
	if lines == nil {
		lines = []journal.Transaction{}
	}
	return JournalEntryResponse{
		JournalEntry: je,
		Verified:     je.IsVerified(),
		Transactions: lines,
	}
}

// PostRequest is the optional body of POST /journal-entries/:id/post.
type PostRequest struct {
	Verify    *bool `json:"verify"`
	ForceLock bool  `json:"forceLock"`
}
