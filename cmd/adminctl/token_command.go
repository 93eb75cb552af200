package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newTokenCommand(b *backends) *cobra.Command {
	var (
		ttl     time.Duration
		version int
	)
	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Sign an access token for local testing",
		Long: "Sign an access token with AUTH_JWT_SECRET. The user must exist in " +
			"public.users with a matching token_version and the admin role to pass the gate.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := b.tokens()
			if err != nil {
				return err
			}
			tok, err := v.Sign(args[0], version, ttl)
			if err != nil {
				return fmt.Errorf("sign: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 15*time.Minute, "Token lifetime")
	cmd.Flags().IntVar(&version, "version", 1, "token_version claim")
	return cmd
}
