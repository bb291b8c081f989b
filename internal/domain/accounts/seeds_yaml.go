package accounts

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// SeedFile is the YAML document used to import or export a chart template.
type SeedFile struct {
	Version  string `yaml:"version"`
	Accounts []Seed `yaml:"accounts"`
}

// ReadSeeds parses a chart template from YAML.
func ReadSeeds(r io.Reader) (*SeedFile, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing chart template: %w", err)
	}
	if len(f.Accounts) == 0 {
		return nil, fmt.Errorf("parsing chart template: no accounts")
	}
	return &f, nil
}

// WriteSeeds renders seeds as a YAML chart template.
func WriteSeeds(w io.Writer, version string, seeds []Seed) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(SeedFile{Version: version, Accounts: seeds}); err != nil {
		return fmt.Errorf("writing chart template: %w", err)
	}
	return enc.Close()
}
