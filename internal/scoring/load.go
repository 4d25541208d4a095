package scoring

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTable reads a rule table from a YAML file.
//
// Example:
//
//	fallback: "Looks human to me."
//	rules:
//	  - name: jargon
//	    weight: 10
//	    terms: [leverage, synergy]
//	    advice:
//	      message: "Replace corporate buzzwords with simpler alternatives"
//	      triggers: [leverage]
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable decodes a YAML rule table. Unknown fields are rejected.
func ParseTable(data []byte) (Table, error) {
	var table Table
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&table); err != nil {
		return Table{}, &ConfigError{Message: "failed to parse YAML", Cause: err}
	}
	if len(table.Rules) == 0 {
		return Table{}, &ConfigError{Message: "rule file defines no rules"}
	}
	return table, nil
}

// NewFromFile loads a rule table and compiles it. An empty path yields Default().
func NewFromFile(path string) (*Scorer, error) {
	if path == "" {
		return Default(), nil
	}
	table, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return New(table)
}
