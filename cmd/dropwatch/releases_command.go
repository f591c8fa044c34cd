package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dropwatch/internal/config"
	"dropwatch/internal/trackstore"
)

func newReleasesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "releases",
		Short: "Show releases already recorded in the notification ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
				entries, err := store.NotifiedReleases(cmd.Context(), limit)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "Notification ledger is empty")
					return nil
				}

				headers := []string{"Artist", "Release", "Type", "Release Date", "Recorded"}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						truncate(entry.SubjectName, 30),
						truncate(entry.Name, 40),
						entry.Type,
						entry.ReleaseDate,
						entry.NotifiedAt.UTC().Format("2006-01-02 15:04"),
					})
				}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))

				total, err := store.CountNotified(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d of %d ledger entries shown\n", len(entries), total)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum number of ledger entries to show")
	return cmd
}
