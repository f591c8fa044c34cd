package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dropwatch/internal/config"
	"dropwatch/internal/trackstore"
)

func newStateCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect, export, import, or reset the tracking state",
	}
	cmd.AddCommand(newStateShowCommand(ctx))
	cmd.AddCommand(newStateExportCommand(ctx))
	cmd.AddCommand(newStateImportCommand(ctx))
	cmd.AddCommand(newStateResetCommand(ctx))
	return cmd
}

func newStateShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Summarize the tracking state",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
				subjects, err := store.CountSubjects(cmd.Context())
				if err != nil {
					return err
				}
				notified, err := store.CountNotified(cmd.Context())
				if err != nil {
					return err
				}
				refresh, err := store.LastSubjectRefresh(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Database:        %s\n", store.Path())
				fmt.Fprintf(out, "Tracked artists: %d\n", subjects)
				fmt.Fprintf(out, "Ledger entries:  %d\n", notified)
				fmt.Fprintf(out, "Last refresh:    %s\n", formatTimePtr(refresh))
				return nil
			})
		},
	}
}

func newStateExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the tracking state as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
				snapshot, err := store.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				payload, err := json.MarshalIndent(snapshot, "", "  ")
				if err != nil {
					return fmt.Errorf("encode snapshot: %w", err)
				}
				payload = append(payload, '\n')

				if outputPath == "" {
					_, err := cmd.OutOrStdout().Write(payload)
					return err
				}
				if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
					return fmt.Errorf("write snapshot: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %d artists and %d ledger entries to %s\n",
					len(snapshot.Subjects), len(snapshot.Notified), outputPath)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the snapshot to a file instead of stdout")
	return cmd
}

func newStateImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the tracking state with a JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			var snapshot trackstore.Snapshot
			if err := json.Unmarshal(payload, &snapshot); err != nil {
				return fmt.Errorf("decode snapshot: %w", err)
			}

			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
				if err := store.Restore(cmd.Context(), &snapshot); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d artists and %d ledger entries\n",
					len(snapshot.Subjects), len(snapshot.Notified))
				return nil
			})
		},
	}
}

func newStateResetCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all tracked artists and ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return errors.New("refusing to reset state without --yes")
			}
			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Tracking state cleared")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm that all state should be deleted")
	return cmd
}
