package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerio/internal/core/apperror"
	"ledgerio/internal/core/types"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Setenv("LEDGER_CONFIG", "")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Transaction.Tolerance.Equal(types.MustMoney("0.02")))
	assert.True(t, cfg.Transaction.Step.Equal(types.MustMoney("0.01")))
	assert.Equal(t, "JE", cfg.Journal.Prefix)
	assert.Equal(t, 10, cfg.Journal.PadWidth)
	assert.Equal(t, "000", cfg.Journal.NoUnitPrefix)
	assert.True(t, cfg.Digest.PostedOnly)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledgerio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: production
server:
  port: "9090"
  idempotency_ttl: 5m
database:
  dsn: postgres://file/ledger
  max_conns: 7
journal:
  number_prefix: GL
  number_padding: 6
transaction:
  tolerance: 0.05
  correction_step: 0.01
`), 0o644))
	t.Setenv("DATABASE_URL", "postgres://env/ledger")
	t.Setenv("APP_PORT", "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.Log.Development)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Server.IdempotencyTTL)
	assert.Equal(t, "postgres://env/ledger", cfg.Database.DSN)
	assert.Equal(t, int32(7), cfg.Database.MaxConns)
	assert.Equal(t, "GL", cfg.Journal.Prefix)
	assert.Equal(t, 6, cfg.Journal.PadWidth)
	assert.Equal(t, "000", cfg.Journal.NoUnitPrefix)
	assert.True(t, cfg.Transaction.Tolerance.Equal(types.MustMoney("0.05")))
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_ENV", "")
	path := filepath.Join(t.TempDir(), "ledgerio.yaml")
	cfg := Default()
	cfg.Journal.Prefix = "CE"
	cfg.Transaction.Tolerance = types.MustMoney("0.10")

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "CE", loaded.Journal.Prefix)
	assert.True(t, loaded.Transaction.Tolerance.Equal(types.MustMoney("0.10")))
	assert.Equal(t, cfg.Server, loaded.Server)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Transaction.Step = types.Zero()

	err := cfg.Validate()
	assert.True(t, apperror.IsValidation(err))
}
