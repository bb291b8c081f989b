package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"ledgerio/pkg/logger"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL of the ledger tables.
func Schema() string { return schemaSQL }

// Migrate applies the schema. The statements are idempotent.
func Migrate(ctx context.Context, pool *Pool) error {
	// No arguments: the simple protocol accepts the whole script at once.
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info(ctx, "database schema applied")
	return nil
}
