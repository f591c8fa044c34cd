package monitor

import (
	"context"
	"log/slog"
	"time"

	"dropwatch/internal/catalog"
	"dropwatch/internal/config"
	"dropwatch/internal/logging"
	"dropwatch/internal/notify"
	"dropwatch/internal/trackstore"
)

// Monitor drives the incremental release-polling loop over the tracking
// state store.
type Monitor struct {
	cfg        config.Monitor
	store      *trackstore.Store
	correlator *catalog.Correlator
	notifier   notify.Service
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithClock overrides the time source used for pass timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		if now != nil {
			m.now = now
		}
	}
}

// New wires a monitor over its collaborators.
func New(cfg config.Monitor, store *trackstore.Store, correlator *catalog.Correlator, notifier notify.Service, logger *slog.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Monitor{
		cfg:        cfg,
		store:      store,
		correlator: correlator,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "monitor"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PassSummary reports what one poll pass did.
type PassSummary struct {
	RunID             string
	Start             time.Time
	InitialScan       bool
	SubjectsRefreshed bool
	SubjectsAdded     int64
	SubjectsChecked   int
	SubjectErrors     int
	Backfilled        int
	NewReleases       []catalog.Release
}

// Run is the continuous loop: pass, sleep, repeat. A failed pass is logged
// and retried after the error interval instead of aborting the process; only
// cancellation stops the loop. The store is always left flushed at the point
// of interruption because every mutation persists before returning.
func (m *Monitor) Run(ctx context.Context) error {
	interval := time.Duration(m.cfg.PassInterval) * time.Second
	retry := time.Duration(m.cfg.ErrorRetryInterval) * time.Second

	for {
		summary, err := m.RunPass(ctx)
		delay := interval
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.ErrorWithContext(m.logger, "poll pass failed", "pass_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check catalog credentials and state database access"),
				logging.String(logging.FieldImpact, "pass will be retried after the error interval"))
			if notifyErr := m.notifier.NotifyError(ctx, err, "monitor pass"); notifyErr != nil {
				m.logger.Warn("error notification failed", logging.Error(notifyErr))
			}
			delay = retry
		} else {
			m.logger.Info("poll pass finished",
				logging.String(logging.FieldRunID, summary.RunID),
				logging.Bool("initial_scan", summary.InitialScan),
				logging.Int("subjects_checked", summary.SubjectsChecked),
				logging.Int("new_releases", len(summary.NewReleases)),
				logging.Int("backfilled", summary.Backfilled),
				logging.Duration("next_pass_in", delay))
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// pace pauses between subjects so a long pass stays under upstream rate
// limits. The pause is fixed, not derived from responses.
func (m *Monitor) pace(ctx context.Context) error {
	pause := time.Duration(m.cfg.PacingSeconds) * time.Second
	if pause <= 0 {
		return nil
	}
	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
