package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dropwatch/internal/digest"
	"dropwatch/internal/notify"
	"dropwatch/internal/sources"
)

func newDigestCommand(ctx *commandContext) *cobra.Command {
	var noNotify bool

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Aggregate tomorrow's release announcements and publish the digest",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			correlator, err := ctx.newCorrelator(logger)
			if err != nil {
				return err
			}
			notifier, err := ctx.newNotifier()
			if err != nil {
				return err
			}
			if noNotify {
				notifier = notify.NewService(withoutTopic(cfg))
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fetcher := sources.NewFetcher(cfg.Sources)
			runner := digest.NewRunner(sources.Enabled(cfg.Sources, fetcher, logger), correlator, notifier, logger)

			result, runErr := runner.RunOnce(runCtx)
			if result != nil {
				renderDigestResult(cmd, result)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&noNotify, "no-notify", false, "Compute and print the digest without publishing it")
	return cmd
}

func renderDigestResult(cmd *cobra.Command, result *notify.Digest) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Target date: %s\n", result.Target.Human())

	if len(result.Entities) == 0 {
		fmt.Fprintln(out, "No announcements found")
	} else {
		headers := []string{"Artist", "Title", "Tracks", "Release Date", "Sources", "Status"}
		rows := make([][]string, 0, len(result.Entities))
		for _, entity := range result.Entities {
			tracks, date, status := "-", "-", "unconfirmed"
			title := entity.Title
			if entity.Record != nil {
				tracks = fmt.Sprintf("%d", entity.Record.TrackCount)
				date = entity.Record.ReleaseDate
				status = "confirmed"
				title = entity.Record.Name
			}
			rows = append(rows, []string{
				notify.DisplayName(entity.Artist),
				truncate(title, 40),
				tracks,
				date,
				strings.Join(entity.Sources, ","),
				status,
			})
		}
		aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft}
		fmt.Fprintln(out, renderTable(out, headers, rows, aligns))
		fmt.Fprintf(out, "%d confirmed, %d unconfirmed (flagged for manual review)\n",
			result.Confirmed(), result.Unconfirmed())
	}

	for _, issue := range result.Issues {
		fmt.Fprintf(out, "warning: source %s failed: %s\n", issue.Source, issue.Detail)
	}
}
