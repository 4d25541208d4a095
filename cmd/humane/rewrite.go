package main

import (
	"context"
	"fmt"

	"github.com/jonathan/humane/internal/config"
	"github.com/jonathan/humane/internal/llm"
	"github.com/jonathan/humane/internal/observability"
	"github.com/jonathan/humane/internal/rewriting"
	"github.com/spf13/cobra"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [text...]",
	Short: "Rewrite a post in a more human tone",
	Long:  "Rewrites the post given as arguments (or stdin) with the configured LLM. With --all, every default tone is generated.",
	RunE:  runRewrite,
}

var (
	rewriteTone      string
	rewriteIntensity int
	rewriteMaxLength int
	rewriteAll       bool
	rewriteDeep      bool
)

func init() {
	rewriteCmd.Flags().StringVarP(&rewriteTone, "tone", "t", rewriting.ToneHumanRelatable, "Tone of the rewrite")
	rewriteCmd.Flags().IntVarP(&rewriteIntensity, "intensity", "i", rewriting.DefaultIntensity, "How far to move from the original, 1-10")
	rewriteCmd.Flags().IntVar(&rewriteMaxLength, "max-length", rewriting.DefaultMaxLength, "Maximum characters in the rewrite")
	rewriteCmd.Flags().BoolVar(&rewriteAll, "all", false, "Rewrite in every default tone")
	rewriteCmd.Flags().BoolVar(&rewriteDeep, "deep", false, "Analyze the post first, then rewrite it in every persona")
	rewriteCmd.MarkFlagsMutuallyExclusive("all", "deep")
	rootCmd.AddCommand(rewriteCmd)
}

func runRewrite(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	post, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	if post == "" {
		return fmt.Errorf("no post given: pass text as arguments or on stdin")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLMTimeout)
	defer cancel()

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	rewriter := rewriting.New(client)
	printer := observability.NewPrinter(cmd.OutOrStdout())

	switch {
	case rewriteDeep:
		analysis, err := rewriter.AnalyzeAndRewrite(ctx, post)
		if err != nil {
			return err
		}
		printer.PrintDeepAnalysis(analysis)
		return nil
	case rewriteAll:
		rewrites, err := rewriter.RewriteAllTones(ctx, post, rewriteIntensity, rewriteMaxLength)
		if err != nil {
			return err
		}
		printer.PrintRewrites(rewrites)
		return nil
	}

	text, err := rewriter.RewritePost(ctx, rewriting.Request{
		Post:      post,
		Tone:      rewriteTone,
		Intensity: rewriteIntensity,
		MaxLength: rewriteMaxLength,
	})
	if err != nil {
		return err
	}
	printer.PrintRewrites([]rewriting.ToneRewrite{{Tone: rewriteTone, Text: text}})
	return nil
}
