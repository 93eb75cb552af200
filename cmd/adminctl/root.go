package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand(b *backends) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "adminctl",
		Short:         "Operate the books admin service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newAuditCommand(b))
	rootCmd.AddCommand(newSnapshotCommand(b))
	rootCmd.AddCommand(newSweepPreviewsCommand(b))
	rootCmd.AddCommand(newTokenCommand(b))

	return rootCmd
}
