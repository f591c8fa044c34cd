package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"dropwatch/internal/config"
	"dropwatch/internal/logging"
	"dropwatch/internal/monitor"
	"dropwatch/internal/preflight"
	"dropwatch/internal/trackstore"
)

func newMonitorCommand(ctx *commandContext) *cobra.Command {
	var once bool
	var initScan bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch tracked artists for new releases and send notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *trackstore.Store) error {
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

				lock := flock.New(cfg.LockPath())
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire lock: %w", err)
				}
				if !ok {
					return errors.New("another dropwatch monitor instance is already running")
				}
				defer func() {
					_ = lock.Unlock()
				}()

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				for _, result := range preflight.RunAll(runCtx, cfg) {
					if !result.Passed {
						logger.Warn("preflight check failed",
							logging.String("check", result.Name),
							logging.String("detail", result.Detail))
					}
				}

				mon := monitor.New(cfg.Monitor, store, correlator, notifier, logger)

				if initScan {
					summary, err := mon.RunInitialScan(runCtx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Initial scan complete: %d releases recorded across %d artists\n",
						summary.Backfilled, summary.SubjectsChecked)
					return nil
				}

				if once {
					summary, err := mon.RunPass(runCtx)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Pass complete: %d artists checked, %d new releases\n",
						summary.SubjectsChecked, len(summary.NewReleases))
					return nil
				}

				return mon.Run(runCtx)
			})
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single monitoring pass and exit")
	cmd.Flags().BoolVar(&initScan, "init-scan", false, "Record all current releases without notifying, then exit")
	return cmd
}
