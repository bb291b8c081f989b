// Package numerator provides domain contracts for journal entry numbering.
package numerator

import (
	"fmt"

	"ledgerio/internal/core/id"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix opens every number (default "JE")
	Prefix string `yaml:"number_prefix"`

	// PadWidth is the zero-padded width of the sequence part (default 10)
	PadWidth int `yaml:"number_padding"`

	// NoUnitPrefix replaces the unit prefix when an entry has no unit (default "000")
	NoUnitPrefix string `yaml:"no_unit_prefix"`
}

// DefaultConfig returns the journal entry numbering defaults.
func DefaultConfig() Config {
	return Config{
		Prefix:       "JE",
		PadWidth:     10,
		NoUnitPrefix: "000",
	}
}

// Key identifies one numbering sequence. Each entity, unit and fiscal year
// pair counts independently.
type Key struct {
	EntityID   id.ID
	UnitID     *id.ID
	UnitPrefix string
	FiscalYear int
}

// String returns the storage key of the sequence.
func (k Key) String() string {
	unit := "none"
	if k.UnitID != nil {
		unit = k.UnitID.String()
	}
	return fmt.Sprintf("je:%s:%s:%d", k.EntityID, unit, k.FiscalYear)
}

// Format renders PREFIX-FY-UNIT-SEQUENCE, e.g. JE-2024-000-0000000042.
func (c Config) Format(key Key, seq int64) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "JE"
	}
	width := c.PadWidth
	if width <= 0 {
		width = 10
	}
	unitPrefix := key.UnitPrefix
	if unitPrefix == "" {
		unitPrefix = c.NoUnitPrefix
		if unitPrefix == "" {
			unitPrefix = "000"
		}
	}
	return fmt.Sprintf("%s-%d-%s-%0*d", prefix, key.FiscalYear, unitPrefix, width, seq)
}
