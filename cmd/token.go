package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"budgetpilot/internal/pkg/jwt"
)

var tokenTTL time.Duration

var tokenCmd = &cobra.Command{
	Use:   "token [user-id]",
	Short: "Issue an access token for local testing",
	Long: `Issue an HS256 access token signed with auth.jwt_secret. Production tokens
come from the account service; this is for local development only.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}

	token, err := jwt.NewJWT(cfg.Auth.JWTSecret, tokenTTL).GenerateToken(args[0])
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
