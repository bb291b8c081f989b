package numerator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/id"
)

func TestConfigFormat(t *testing.T) {
	cfg := DefaultConfig()
	entity := id.New()

	assert.Equal(t, "JE-2024-000-0000000001", cfg.Format(Key{EntityID: entity, FiscalYear: 2024}, 1))
	assert.Equal(t, "JE-2025-NYC-0000000042", cfg.Format(Key{EntityID: entity, UnitPrefix: "NYC", FiscalYear: 2025}, 42))

	cfg.Prefix = "GJ"
	cfg.PadWidth = 4
	assert.Equal(t, "GJ-2024-000-0007", cfg.Format(Key{EntityID: entity, FiscalYear: 2024}, 7))
}

func TestMockGenerator_CountsPerKey(t *testing.T) {
	ctx := context.Background()
	gen := &MockGenerator{}
	cfg := DefaultConfig()
	entity := id.New()
	unit := id.New()

	k1 := Key{EntityID: entity, FiscalYear: 2024}
	k2 := Key{EntityID: entity, UnitID: &unit, UnitPrefix: "U1", FiscalYear: 2024}

	n, err := gen.GetNextNumber(ctx, cfg, k1)
	require.NoError(t, err)
	assert.Equal(t, "JE-2024-000-0000000001", n)

	n, err = gen.GetNextNumber(ctx, cfg, k2)
	require.NoError(t, err)
	assert.Equal(t, "JE-2024-U1-0000000001", n)

	require.NoError(t, gen.SetNextNumber(ctx, k1, 99))
	n, err = gen.GetNextNumber(ctx, cfg, k1)
	require.NoError(t, err)
	assert.Equal(t, "JE-2024-000-0000000100", n)
}
