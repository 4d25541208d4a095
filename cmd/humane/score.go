package main

import (
	"encoding/json"
	"io"

	"github.com/jonathan/humane/internal/observability"
	"github.com/jonathan/humane/internal/scoring"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score [text...]",
	Short: "Score a post for corporate buzzwords",
	Long:  "Scores the post given as arguments, or read from stdin when no arguments are given. Nothing is sent over the network.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return scorePosts(cmd.OutOrStdout(), cmd.InOrStdin(), args, scoreOpts)
	},
}

type scoreOptions struct {
	rulesFile string
	json      bool
}

var scoreOpts scoreOptions

func init() {
	scoreCmd.Flags().StringVar(&scoreOpts.rulesFile, "rules", "", "Path to a YAML rule table (default: built-in rules)")
	scoreCmd.Flags().BoolVar(&scoreOpts.json, "json", false, "Print the result as JSON")
	rootCmd.AddCommand(scoreCmd)
}

// scoreOutput is the --json shape
type scoreOutput struct {
	Score           int               `json:"score"`
	Label           string            `json:"label"`
	Highlighted     string            `json:"highlighted"`
	Recommendations []string          `json:"recommendations"`
	Hits            []scoring.RuleHit `json:"hits"`
}

func scorePosts(w io.Writer, r io.Reader, args []string, opts scoreOptions) error {
	scorer, err := loadScorer(opts.rulesFile)
	if err != nil {
		return err
	}

	text, err := readInput(r, args)
	if err != nil {
		return err
	}

	report := scorer.Explain(text)
	result := report.Result

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scoreOutput{
			Score:           result.Score,
			Label:           scoring.Band(result.Score),
			Highlighted:     result.Highlighted,
			Recommendations: result.Recommendations,
			Hits:            report.Hits,
		})
	}

	observability.NewPrinter(w).PrintAnalysis(report)
	return nil
}
