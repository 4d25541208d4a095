package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/humane/internal/config"
	"github.com/jonathan/humane/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an access token for local testing",
	Long:  "Signs a bearer token with SUPABASE_JWT_SECRET so the API can be exercised without the identity provider.",
	RunE:  runToken,
}

var tokenUser string

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User ID to put in the subject claim (default: random)")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	userID := uuid.New()
	if tokenUser != "" {
		parsed, err := uuid.Parse(tokenUser)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		userID = parsed
	}

	jwtCfg, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtCfg).GenerateToken(userID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
