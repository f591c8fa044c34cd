package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dropwatch/internal/config"
	"dropwatch/internal/trackstore"
)

func newSubjectsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List tracked artists in check order",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
				subjects, err := store.SubjectsInCheckOrder(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(subjects) == 0 {
					fmt.Fprintln(out, "No artists tracked yet; run the monitor to discover them")
					return nil
				}

				headers := []string{"ID", "Name", "Added", "Last Check"}
				rows := make([][]string, 0, len(subjects))
				for _, subject := range subjects {
					rows = append(rows, []string{
						subject.ID,
						truncate(subject.Name, 40),
						subject.AddedAt.UTC().Format("2006-01-02 15:04"),
						formatTimePtr(subject.LastCheck),
					})
				}
				aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft}
				fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
				fmt.Fprintf(out, "%d artists tracked\n", len(subjects))
				return nil
			})
		},
	}
}
