package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/worker-profile-wizard/internal/config"
	"github.com/jonathan/worker-profile-wizard/internal/server"
)

var tokenUserID string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development JWT",
	Long: `Print a signed token for a worker ID using JWT_SECRET, JWT_ISSUER and JWT_EXPIRATION_HOURS.
Production tokens are issued by the account service; this is for local testing.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUserID, "user", "", "Worker ID (UUID); a random one is generated if empty")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	userID := uuid.New()
	if tokenUserID != "" {
		parsed, err := uuid.Parse(tokenUserID)
		if err != nil {
			return fmt.Errorf("invalid --user: %w", err)
		}
		userID = parsed
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(userID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "user:  %s\n", userID)
	fmt.Fprintf(out, "token: %s\n", token)
	return nil
}
