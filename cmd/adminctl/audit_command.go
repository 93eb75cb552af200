package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	admin "github.com/5w1tchy/books-admin/internal/api/handlers/admin"
)

func newAuditCommand(b *backends) *cobra.Command {
	var (
		action string
		actor  string
		since  time.Duration
		size   int
	)
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List recent onboarding audit entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := b.audit(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			f := admin.AuditFilter{Action: action, ActorID: actor, Page: 1, Size: size}
			if since > 0 {
				from := time.Now().Add(-since)
				f.Since = &from
			}
			rows, total, err := store.ListAudit(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("list audit: %w", err)
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No audit entries")
				return nil
			}

			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				target := "-"
				if r.TargetID != nil {
					target = *r.TargetID
				}
				table = append(table, []string{
					strconv.FormatInt(r.ID, 10),
					formatTime(r.CreatedAt),
					r.AdminID,
					r.Action,
					target,
					truncate(describeMeta(r.Meta), 60),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "At", "Admin", "Action", "Book", "Details"},
				table,
				[]columnAlignment{alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d\n", len(rows), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "Filter by action (book.onboarded, book.onboard_failed)")
	cmd.Flags().StringVar(&actor, "admin", "", "Filter by admin id")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Only entries newer than this (0 for all)")
	cmd.Flags().IntVar(&size, "limit", 25, "Maximum entries to show")
	return cmd
}

// describeMeta picks the fields an operator scans for first.
func describeMeta(meta any) string {
	m, ok := meta.(map[string]any)
	if !ok {
		return ""
	}
	if e, ok := m["error"].(string); ok && e != "" {
		return "error: " + e
	}
	title, _ := m["title"].(string)
	if n, ok := m["copies"].(float64); ok {
		return fmt.Sprintf("%s (%d copies)", title, int(n))
	}
	return title
}
