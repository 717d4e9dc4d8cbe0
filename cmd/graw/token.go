package main

import (
	"time"

	"github.com/spf13/cobra"
)

var tokenShow bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Authenticate and print the access token's details",
	Long: `Authenticate as the configured account, reusing a stored token when one is
still valid, and print its expiry and scope. The token itself is printed
only with --show.`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenShow, "show", false, "print the bearer token")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	tok, err := s.client.Authenticate(cmd.Context())
	if err != nil {
		return err
	}

	cmd.Printf("username:   %s\n", tok.Username())
	cmd.Printf("type:       %s\n", tok.TokenType())
	cmd.Printf("scope:      %s\n", tok.Scope())
	cmd.Printf("expires at: %s\n", tok.ExpiresAt().UTC().Format(time.RFC3339))
	if tokenShow {
		cmd.Printf("token:      %s\n", tok.Token())
	}
	return nil
}
