package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/humane/internal/scoring"
)

// loadScorer returns the default scorer, or one built from a YAML rule file.
func loadScorer(rulesFile string) (*scoring.Scorer, error) {
	if rulesFile == "" {
		return scoring.Default(), nil
	}
	scorer, err := scoring.NewFromFile(rulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	return scorer, nil
}

// readInput joins args, or reads r when there are none
func readInput(r io.Reader, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
