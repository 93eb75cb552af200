package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/5w1tchy/books-admin/internal/onboarding"
)

func newSnapshotCommand(b *backends) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect or drop an admin's saved wizard",
	}
	cmd.AddCommand(newSnapshotShowCommand(b))
	cmd.AddCommand(newSnapshotDropCommand(b))
	return cmd
}

func newSnapshotShowCommand(b *backends) *cobra.Command {
	return &cobra.Command{
		Use:   "show <admin-id>",
		Short: "Show the saved wizard of an admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := b.snapshots(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			snap, ok, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load snapshot: %w", err)
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "No saved wizard for %s\n", args[0])
				return nil
			}

			st := snap.State
			p := st.Copies.Summary()
			rows := [][]string{
				{"Wizard", snap.WizardID},
				{"Saved", formatTime(snap.SavedAt)},
				{"Stage", string(st.Stage)},
				{"Title", st.Draft.Title},
				{"Code", st.Draft.Code},
				{"Copies", fmt.Sprintf("%d/%d located", p.Completed, p.Total)},
			}
			if st.Stage == onboarding.StageSubmitting {
				rows = append(rows, []string{"Note", "saved mid-submission; resumes in review"})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))

			if p.Total > 0 {
				locs := make([][]string, 0, p.Total)
				for i, loc := range st.Copies.Locations() {
					if loc == "" {
						loc = "-"
					}
					locs = append(locs, []string{strconv.Itoa(i + 1), loc})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Location"}, locs, []columnAlignment{alignRight}))
			}
			return nil
		},
	}
}

func newSnapshotDropCommand(b *backends) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <admin-id>",
		Short: "Delete the saved wizard of an admin",
		Long:  "Delete the saved wizard of an admin. A running service keeps its in-memory wizard until restart or teardown.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := b.snapshots(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete snapshot: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dropped saved wizard for %s\n", args[0])
			return nil
		},
	}
}
