package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dropwatch/internal/config"
	"dropwatch/internal/preflight"
	"dropwatch/internal/trackstore"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check configuration, catalog access, and source reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Config:   %s\n", configDescription(ctx))
				fmt.Fprintf(out, "Database: %s\n", store.Path())

				subjects, err := store.CountSubjects(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Tracked:  %d artists\n", subjects)
				fmt.Fprintf(out, "Notify:   %s\n\n", yesNo(strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""))

				failures := 0
				for _, result := range preflight.RunAll(cmd.Context(), cfg) {
					marker := "ok"
					if !result.Passed {
						marker = "FAIL"
						failures++
					}
					fmt.Fprintf(out, "[%-4s] %-16s %s\n", marker, result.Name, result.Detail)
				}
				if failures > 0 {
					return fmt.Errorf("%d preflight check(s) failed", failures)
				}
				return nil
			})
		},
	}
}

func configDescription(ctx *commandContext) string {
	if ctx.configFlag != nil && *ctx.configFlag != "" {
		return *ctx.configFlag
	}
	path, err := config.DefaultConfigPath()
	if err != nil || path == "" {
		return "built-in defaults"
	}
	if _, statErr := os.Stat(path); statErr != nil {
		return "built-in defaults"
	}
	return path
}
