// Package main provides the humane command: the HTTP API server plus local
// scoring and maintenance tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "humane",
	Short: "Corporate cringe scorer and post rewriter",
	Long:  "Humane scores social-media posts for corporate buzzwords and rewrites them in a more human tone.",

	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
