package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dropwatch/internal/catalog"
	"dropwatch/internal/dates"
	"dropwatch/internal/logging"
	"dropwatch/internal/notify"
	"dropwatch/internal/releases"
	"dropwatch/internal/runerr"
	"dropwatch/internal/sources"
)

// Runner drives one aggregation pass across the configured sources.
type Runner struct {
	sources    []sources.Source
	correlator *catalog.Correlator
	notifier   notify.Service
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock overrides the time source. Tests pin the target date with it.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner wires a digest runner over its collaborators.
func NewRunner(srcs []sources.Source, correlator *catalog.Correlator, notifier notify.Service, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		sources:    srcs,
		correlator: correlator,
		notifier:   notifier,
		logger:     logging.NewComponentLogger(logger, "digest"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce aggregates announcements for tomorrow's date, enriches them, and
// publishes the digest. A source that fails contributes nothing and is
// recorded as an issue; the run only fails outright when every source failed,
// when the publish failed, or on cancellation. The digest is returned even
// alongside an error so callers can render what was collected.
func (r *Runner) RunOnce(ctx context.Context) (*notify.Digest, error) {
	runStart := r.now()
	target := dates.Tomorrow(runStart)
	logger := r.logger.With(
		logging.String(logging.FieldRunID, uuid.NewString()),
		logging.String("target_date", target.ISO()),
	)
	logger.Info("digest run started", logging.Int("sources", len(r.sources)))

	var mentions []releases.Mention
	var issues []notify.SourceIssue
	for _, src := range r.sources {
		found, err := src.Mentions(ctx, target)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logging.ErrorWithContext(logger, "source contributed nothing", "source_failed",
				logging.String(logging.FieldSource, src.Name()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "source layout may have changed; check the page manually"),
				logging.String(logging.FieldImpact, "digest misses this source's announcements"))
			issues = append(issues, notify.SourceIssue{Source: src.Name(), Detail: err.Error()})
			continue
		}
		logger.Info("source scraped",
			logging.String(logging.FieldSource, src.Name()),
			logging.Int("mentions", len(found)))
		mentions = append(mentions, found...)
	}

	set := releases.Reduce(mentions)
	logger.Info("mentions deduplicated",
		logging.Int("mentions", len(mentions)),
		logging.Int("entities", set.Len()))

	if err := r.enrich(ctx, logger, set, target.Accepted()); err != nil {
		return nil, err
	}

	if merged := set.MergeByCatalog(); merged > 0 {
		logger.Info("catalog merge collapsed duplicate spellings", logging.Int("merged", merged))
	}

	result := &notify.Digest{Target: target, Entities: set.Entities(), Issues: issues}

	if len(r.sources) > 0 && len(issues) == len(r.sources) {
		return result, runerr.Wrap(runerr.ErrSourceFormat, "digest", "run",
			fmt.Sprintf("all %d sources failed", len(r.sources)), nil)
	}

	if result.Empty() {
		logger.Info("no announcements for target date, skipping publish")
		return result, nil
	}

	if err := r.notifier.PublishDigest(ctx, result); err != nil {
		logging.ErrorWithContext(logger, "digest publish failed", "delivery_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "verify the ntfy topic and network access"),
			logging.String(logging.FieldImpact, "digest was computed but not delivered"))
		return result, err
	}

	logger.Info("digest run finished",
		logging.Int("confirmed", result.Confirmed()),
		logging.Int("unconfirmed", result.Unconfirmed()),
		logging.Int("source_issues", len(issues)),
		logging.Duration("elapsed", r.now().Sub(runStart)))
	return result, nil
}

// enrich resolves every entity against the catalog. Lookup failures are
// absorbed per entity: the entity stays unconfirmed and the pass continues.
func (r *Runner) enrich(ctx context.Context, logger *slog.Logger, set *releases.Set, accepted dates.DateSet) error {
	for _, entity := range set.Entities() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		record, err := r.correlator.FindRelease(ctx, entity.Artist, entity.Title, accepted)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.WarnWithContext(logger, "catalog correlation failed", "catalog_lookup_failed",
				logging.String(logging.FieldSubject, entity.Artist),
				logging.String(logging.FieldRelease, entity.Title),
				logging.Error(runerr.Wrap(runerr.ErrCatalogLookup, "digest", "find release", "", err)),
				logging.String(logging.FieldImpact, "entity stays unconfirmed in the digest"))
			continue
		}
		entity.Record = record
		if record == nil {
			logger.Debug("announcement unconfirmed by catalog",
				logging.String(logging.FieldSubject, entity.Artist),
				logging.String(logging.FieldRelease, entity.Title))
		}
		entity.Subject = r.correlator.SubjectInfo(ctx, entity.Artist)
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}
