package postgres

import (
	"github.com/jackc/pgx/v5/pgtype"

	"ledgerio/internal/core/types"
)

// Numeric converts money for the binary COPY protocol, which does not go
// through driver.Valuer.
func Numeric(m types.Money) pgtype.Numeric {
	return pgtype.Numeric{Int: m.Coefficient(), Exp: m.Exponent(), Valid: true}
}
