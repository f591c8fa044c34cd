package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"dropwatch/internal/catalog"
	"dropwatch/internal/dates"
	"dropwatch/internal/logging"
	"dropwatch/internal/notify"
	"dropwatch/internal/runerr"
	"dropwatch/internal/trackstore"
)

// RunPass executes one poll pass: refresh the subject list when due, then
// check every subject in staleness order. The very first pass over a store
// with no checked subjects backfills the ledger without notifying. Catalog
// failures for one subject are absorbed; persistence failures abort the pass.
func (m *Monitor) RunPass(ctx context.Context) (*PassSummary, error) {
	summary := &PassSummary{
		RunID: uuid.NewString(),
		Start: m.now().UTC(),
	}
	logger := m.logger.With(logging.String(logging.FieldRunID, summary.RunID))

	if err := m.refreshSubjectsIfDue(ctx, logger, summary); err != nil {
		return summary, err
	}

	checkedBefore, err := m.store.HasCheckedSubjects(ctx)
	if err != nil {
		return summary, err
	}
	if !checkedBefore {
		summary.InitialScan = true
		if err := m.initialScan(ctx, logger, summary); err != nil {
			return summary, err
		}
		return summary, nil
	}

	if err := m.checkSubjects(ctx, logger, summary); err != nil {
		return summary, err
	}

	if len(summary.NewReleases) == 0 {
		return summary, nil
	}
	batch := notify.GroupReleases(summary.NewReleases)
	if err := m.notifier.PublishNewReleases(ctx, batch); err != nil {
		// The ledger already holds these releases, so a failed publish is
		// final for them: surfacing the error beats double-notifying later.
		return summary, err
	}
	return summary, nil
}

// RunInitialScan backfills the ledger with every subject's release history
// and stamps last checks, without publishing anything. Used by the CLI to
// seed a fresh state store explicitly; RunPass performs the same scan
// implicitly when no subject was ever checked.
func (m *Monitor) RunInitialScan(ctx context.Context) (*PassSummary, error) {
	summary := &PassSummary{
		RunID:       uuid.NewString(),
		Start:       m.now().UTC(),
		InitialScan: true,
	}
	logger := m.logger.With(logging.String(logging.FieldRunID, summary.RunID))
	if err := m.refreshSubjectsIfDue(ctx, logger, summary); err != nil {
		return summary, err
	}
	if err := m.initialScan(ctx, logger, summary); err != nil {
		return summary, err
	}
	return summary, nil
}

// refreshSubjectsIfDue rebuilds the tracked subject list from the configured
// playlists and artist names when the last rebuild is older than the refresh
// interval. Discovery failures for one input are absorbed; the insert itself
// must persist or the pass fails.
func (m *Monitor) refreshSubjectsIfDue(ctx context.Context, logger *slog.Logger, summary *PassSummary) error {
	last, err := m.store.LastSubjectRefresh(ctx)
	if err != nil {
		return err
	}
	maxAge := time.Duration(m.cfg.SubjectRefreshHours) * time.Hour
	if last != nil && summary.Start.Sub(*last) < maxAge {
		return nil
	}

	var discovered []catalog.Subject
	for _, playlistID := range m.cfg.PlaylistIDs {
		subjects, err := m.correlator.PlaylistSubjects(ctx, playlistID)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.WarnWithContext(logger, "playlist discovery failed", "subject_discovery_failed",
				logging.String("playlist_id", playlistID),
				logging.Error(runerr.Wrap(runerr.ErrCatalogLookup, "monitor", "playlist subjects", playlistID, err)),
				logging.String(logging.FieldImpact, "subjects from this playlist are not refreshed"))
			continue
		}
		discovered = append(discovered, subjects...)
	}
	for _, name := range m.cfg.ArtistNames {
		subject, err := m.correlator.FindSubject(ctx, name)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logging.WarnWithContext(logger, "artist discovery failed", "subject_discovery_failed",
				logging.String(logging.FieldSubject, name),
				logging.Error(runerr.Wrap(runerr.ErrCatalogLookup, "monitor", "find subject", name, err)),
				logging.String(logging.FieldImpact, "this artist is not refreshed"))
			continue
		}
		if subject == nil {
			logger.Warn("configured artist not found in catalog",
				logging.String(logging.FieldSubject, name))
			continue
		}
		discovered = append(discovered, *subject)
	}

	added, err := m.store.AddSubjectsIfAbsent(ctx, discovered)
	if err != nil {
		return err
	}
	if err := m.store.SetLastSubjectRefresh(ctx, summary.Start); err != nil {
		return err
	}
	summary.SubjectsRefreshed = true
	summary.SubjectsAdded = added
	logger.Info("subject list refreshed",
		logging.Int("discovered", len(discovered)),
		logging.Int64("added", added))
	return nil
}

// initialScan records every subject's full day-precision history in the
// ledger and marks the subject checked. Nothing is published: the scan only
// establishes the baseline future passes diff against.
func (m *Monitor) initialScan(ctx context.Context, logger *slog.Logger, summary *PassSummary) error {
	subjects, err := m.store.SubjectsInCheckOrder(ctx)
	if err != nil {
		return err
	}
	logger.Info("initial scan started", logging.Int("subjects", len(subjects)))

	for _, subject := range subjects {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		history := m.listReleases(ctx, logger, subject, nil, summary)
		for _, release := range history {
			if err := m.record(ctx, release); err != nil {
				return err
			}
			summary.Backfilled++
		}
		if err := m.store.MarkChecked(ctx, subject.ID, summary.Start); err != nil {
			return err
		}
		summary.SubjectsChecked++
		if err := m.pace(ctx); err != nil {
			return err
		}
	}
	logger.Info("initial scan finished",
		logging.Int("subjects", summary.SubjectsChecked),
		logging.Int("backfilled", summary.Backfilled))
	return nil
}

// checkSubjects diffs every subject's listing since its last check against
// the ledger. Discoveries inside the acceptance window (today and yesterday)
// are recorded before they are published.
func (m *Monitor) checkSubjects(ctx context.Context, logger *slog.Logger, summary *PassSummary) error {
	subjects, err := m.store.SubjectsInCheckOrder(ctx)
	if err != nil {
		return err
	}
	accepted := dates.Today(summary.Start).Accepted()

	for _, subject := range subjects {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		listed := m.listReleases(ctx, logger, subject, subject.LastCheck, summary)
		for _, release := range listed {
			key := trackstore.ReleaseKey(release.SubjectID, release.ID)
			known, err := m.store.IsNotified(ctx, key)
			if err != nil {
				return err
			}
			if known {
				continue
			}
			if !accepted.Contains(dates.NewTarget(release.ReleaseDate).ISO()) {
				continue
			}
			if err := m.record(ctx, release); err != nil {
				return err
			}
			summary.NewReleases = append(summary.NewReleases, release)
			logger.Info("new release discovered",
				logging.String(logging.FieldSubject, release.SubjectName),
				logging.String(logging.FieldSubjectID, release.SubjectID),
				logging.String(logging.FieldRelease, release.Name),
				logging.String("release_type", release.Type))
		}
		if err := m.store.MarkChecked(ctx, subject.ID, summary.Start); err != nil {
			return err
		}
		summary.SubjectsChecked++
		if err := m.pace(ctx); err != nil {
			return err
		}
	}
	return nil
}

// listReleases fetches one subject's listing, absorbing catalog failures as
// an empty result so one subject never sinks the pass.
func (m *Monitor) listReleases(ctx context.Context, logger *slog.Logger, subject *trackstore.TrackedSubject, since *time.Time, summary *PassSummary) []catalog.Release {
	listed, err := m.correlator.ListSubjectReleases(ctx, catalog.Subject{ID: subject.ID, Name: subject.Name}, since)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logging.WarnWithContext(logger, "release listing failed", "catalog_lookup_failed",
			logging.String(logging.FieldSubject, subject.Name),
			logging.String(logging.FieldSubjectID, subject.ID),
			logging.Error(runerr.Wrap(runerr.ErrCatalogLookup, "monitor", "list releases", subject.ID, err)),
			logging.String(logging.FieldImpact, "subject contributes nothing this pass"))
		summary.SubjectErrors++
		return nil
	}
	return listed
}

func (m *Monitor) record(ctx context.Context, release catalog.Release) error {
	return m.store.RecordNotified(ctx, trackstore.NotifiedRelease{
		ReleaseKey:  trackstore.ReleaseKey(release.SubjectID, release.ID),
		SubjectID:   release.SubjectID,
		SubjectName: release.SubjectName,
		ReleaseID:   release.ID,
		Name:        release.Name,
		Type:        release.Type,
		ReleaseDate: dates.NewTarget(release.ReleaseDate).ISO(),
		URL:         release.URL,
	})
}
