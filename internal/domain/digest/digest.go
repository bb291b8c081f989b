package digest

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ledgerio/internal/core/tx"
	"ledgerio/internal/domain/balances"
	"ledgerio/internal/domain/journal"
	"ledgerio/internal/domain/ratios"
	"ledgerio/internal/domain/roles"
	"ledgerio/internal/domain/statements"
	"ledgerio/pkg/logger"
)

var tracer = otel.Tracer("ledgerio/digest")

// Digest is the result of one digest call. Optional sections are nil
// unless requested.
type Digest struct {
	Request  Request                   `json:"request"`
	Accounts []balances.AccountBalance `json:"accounts"`

	Roles      *balances.Rollup[roles.Role]       `json:"roles,omitempty"`
	Groups     *balances.Rollup[roles.Group]      `json:"groups,omitempty"`
	Activities *balances.Rollup[journal.Activity] `json:"activities,omitempty"`
	Ratios     *ratios.Ratios                     `json:"ratios,omitempty"`

	BalanceSheet      *statements.BalanceSheet      `json:"balanceSheet,omitempty"`
	IncomeStatement   *statements.IncomeStatement   `json:"incomeStatement,omitempty"`
	CashFlowStatement *statements.CashFlowStatement `json:"cashFlowStatement,omitempty"`
}

// Build runs the classification stages over source rows. It is pure: the
// same request and rows always give the same digest.
func Build(req Request, rows []balances.Row) (*Digest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	flat := balances.Flatten(rows, req.keying())
	if req.ExcludeZero {
		flat = balances.WithoutZero(flat)
	}
	signed := balances.ApplySigns(flat)

	d := &Digest{Request: req, Accounts: flat}
	if req.Signs {
		d.Accounts = signed
	}

	opts := req.rollupOptions()
	if req.ProcessRoles {
		d.Roles = balances.RollupRoles(d.Accounts, opts)
	}
	if req.ProcessGroups {
		d.Groups = balances.RollupGroups(d.Accounts, opts)
	}
	if req.ProcessActivity {
		d.Activities = balances.RollupActivities(d.Accounts, opts)
	}

	if !req.needsGroups() {
		return d, nil
	}

	// Statements and ratios always read presentation-signed balances.
	groups := d.Groups
	if groups == nil || !req.Signs {
		groups = balances.RollupGroups(signed, opts)
	}
	if req.ProcessRatios {
		r := ratios.Compute(groups)
		d.Ratios = &r
	}
	if req.BalanceSheet {
		d.BalanceSheet = statements.BuildBalanceSheet(signed, groups)
	}
	if req.IncomeStatement {
		d.IncomeStatement = statements.BuildIncomeStatement(groups)
	}
	if req.CashFlowStatement {
		cfs, err := statements.BuildCashFlowStatement(signed, groups)
		if err != nil {
			return nil, err
		}
		d.CashFlowStatement = cfs
	}
	return d, nil
}

// Service runs digests against a Source.
type Service struct {
	source    Source
	txManager tx.ReadOnlyManager
}

// NewService creates a digest service. txManager may be nil for sources
// that do not need a database snapshot.
func NewService(source Source, txManager tx.ReadOnlyManager) *Service {
	if txManager == nil {
		txManager = tx.Noop{}
	}
	return &Service{source: source, txManager: txManager}
}

// Digest validates req, loads the balance rows in one read-only snapshot
// and builds the digest. Nothing is cached between calls.
func (s *Service) Digest(ctx context.Context, req Request) (*Digest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "digest",
		trace.WithAttributes(
			attribute.String("digest.entity_id", req.EntityID.String()),
			attribute.Bool("digest.posted_only", req.PostedOnly),
		))
	defer span.End()

	var rows []balances.Row
	err := s.txManager.ReadOnly(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.source.BalanceRows(ctx, req.Query())
		return err
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load balance rows: %w", err)
	}
	span.SetAttributes(attribute.Int("digest.rows", len(rows)))

	d, err := Build(req, rows)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "digest built",
		"entity_id", req.EntityID,
		"rows", len(rows),
		"accounts", len(d.Accounts))
	return d, nil
}
