package trackstore

import (
	"context"
	"time"

	"dropwatch/internal/runerr"
)

// Snapshot is the full persisted state in portable form, used by state
// export and import.
type Snapshot struct {
	Subjects           []TrackedSubject  `json:"subjects"`
	Notified           []NotifiedRelease `json:"notified"`
	LastSubjectRefresh *time.Time        `json:"last_subject_refresh,omitempty"`
}

// Snapshot reads the complete store contents.
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	subjects, err := s.SubjectsInCheckOrder(ctx)
	if err != nil {
		return nil, err
	}
	notified, err := s.NotifiedReleases(ctx, 0)
	if err != nil {
		return nil, err
	}
	refresh, err := s.LastSubjectRefresh(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{
		Subjects:           make([]TrackedSubject, 0, len(subjects)),
		Notified:           make([]NotifiedRelease, 0, len(notified)),
		LastSubjectRefresh: refresh,
	}
	for _, subject := range subjects {
		snapshot.Subjects = append(snapshot.Subjects, *subject)
	}
	for _, release := range notified {
		snapshot.Notified = append(snapshot.Notified, *release)
	}
	return snapshot, nil
}

// Restore replaces the store contents with a snapshot.
func (s *Store) Restore(ctx context.Context, snapshot *Snapshot) error {
	if snapshot == nil {
		return runerr.Wrap(runerr.ErrPersistence, "trackstore", "restore", "nil snapshot", nil)
	}
	if err := s.Clear(ctx); err != nil {
		return err
	}
	for _, subject := range snapshot.Subjects {
		if _, err := s.execWithRetry(ctx,
			`INSERT INTO tracked_subjects (id, name, added_at, last_check) VALUES (?, ?, ?, ?)`,
			subject.ID,
			subject.Name,
			subject.AddedAt.UTC().Format(time.RFC3339Nano),
			nullableTime(subject.LastCheck),
		); err != nil {
			return runerr.Wrap(runerr.ErrPersistence, "trackstore", "restore subject", subject.ID, err)
		}
	}
	for _, release := range snapshot.Notified {
		if err := s.RecordNotified(ctx, release); err != nil {
			return err
		}
	}
	if snapshot.LastSubjectRefresh != nil {
		if err := s.SetLastSubjectRefresh(ctx, *snapshot.LastSubjectRefresh); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all subjects, ledger entries, and metadata.
func (s *Store) Clear(ctx context.Context) error {
	for _, table := range []string{"tracked_subjects", "notified_releases", "store_meta"} {
		if _, err := s.execWithRetry(ctx, `DELETE FROM `+table); err != nil {
			return runerr.Wrap(runerr.ErrPersistence, "trackstore", "clear "+table, "", err)
		}
	}
	return nil
}
