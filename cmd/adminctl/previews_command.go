package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/5w1tchy/books-admin/internal/maintenance"
)

func newSweepPreviewsCommand(b *backends) *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "sweep-previews",
		Short: "Delete cover previews older than --max-age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if maxAge <= 0 {
				return fmt.Errorf("--max-age must be positive")
			}
			s, err := b.previews(cmd.Context())
			if err != nil {
				return err
			}
			n := maintenance.RunPreviewSweep(cmd.Context(), s, maxAge)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d preview objects\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", maintenance.DefaultPreviewMaxAge, "Minimum age of previews to delete")
	return cmd
}
