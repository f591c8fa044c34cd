package trackstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"dropwatch/internal/runerr"
)

// NotifiedRelease is one entry of the at-most-once notification ledger.
// Entries are append-only and never mutated or removed.
type NotifiedRelease struct {
	ReleaseKey  string    `json:"release_key"`
	SubjectID   string    `json:"subject_id"`
	SubjectName string    `json:"subject_name,omitempty"`
	ReleaseID   string    `json:"release_id"`
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	ReleaseDate string    `json:"release_date"`
	URL         string    `json:"url,omitempty"`
	NotifiedAt  time.Time `json:"notified_at"`
}

// ReleaseKey builds the ledger key for a subject/release pair.
func ReleaseKey(subjectID, releaseID string) string {
	return subjectID + "_" + releaseID
}

const releaseColumns = "release_key, subject_id, subject_name, release_id, release_name, release_type, release_date, url, notified_at"

const metaKeyLastSubjectRefresh = "last_subject_refresh"

func scanRelease(scanner interface{ Scan(dest ...any) error }) (*NotifiedRelease, error) {
	var (
		releaseKey  string
		subjectID   string
		subjectName sql.NullString
		releaseID   string
		releaseName string
		releaseType sql.NullString
		releaseDate string
		url         sql.NullString
		notifiedRaw sql.NullString
	)
	if err := scanner.Scan(
		&releaseKey,
		&subjectID,
		&subjectName,
		&releaseID,
		&releaseName,
		&releaseType,
		&releaseDate,
		&url,
		&notifiedRaw,
	); err != nil {
		return nil, err
	}

	release := &NotifiedRelease{
		ReleaseKey:  releaseKey,
		SubjectID:   subjectID,
		SubjectName: subjectName.String,
		ReleaseID:   releaseID,
		Name:        releaseName,
		Type:        releaseType.String,
		ReleaseDate: releaseDate,
		URL:         url.String,
	}
	if notified, err := parseTimeString(notifiedRaw.String); err == nil {
		release.NotifiedAt = notified
	}
	return release, nil
}

// IsNotified reports whether a release key is already in the ledger.
func (s *Store) IsNotified(ctx context.Context, releaseKey string) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM notified_releases WHERE release_key = ?`, releaseKey).Scan(&count)
	if err != nil {
		return false, runerr.Wrap(runerr.ErrPersistence, "trackstore", "check ledger", releaseKey, err)
	}
	return count > 0, nil
}

// RecordNotified appends a release to the ledger. Recording the same key
// again is a no-op.
func (s *Store) RecordNotified(ctx context.Context, release NotifiedRelease) error {
	notifiedAt := release.NotifiedAt
	if notifiedAt.IsZero() {
		notifiedAt = time.Now().UTC()
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT OR IGNORE INTO notified_releases (`+releaseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		release.ReleaseKey,
		release.SubjectID,
		nullableString(release.SubjectName),
		release.ReleaseID,
		release.Name,
		nullableString(release.Type),
		release.ReleaseDate,
		nullableString(release.URL),
		notifiedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return runerr.Wrap(runerr.ErrPersistence, "trackstore", "record notified", release.ReleaseKey, err)
	}
	return nil
}

// CountNotified returns the size of the ledger.
func (s *Store) CountNotified(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM notified_releases`).Scan(&count); err != nil {
		return 0, runerr.Wrap(runerr.ErrPersistence, "trackstore", "count notified", "", err)
	}
	return count, nil
}

// NotifiedReleases returns ledger entries newest first, capped at limit when
// limit is positive.
func (s *Store) NotifiedReleases(ctx context.Context, limit int) ([]*NotifiedRelease, error) {
	query := `SELECT ` + releaseColumns + ` FROM notified_releases ORDER BY notified_at DESC, release_key`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT ?`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "list notified", "", err)
	}
	defer rows.Close()

	var releases []*NotifiedRelease
	for rows.Next() {
		release, err := scanRelease(rows)
		if err != nil {
			return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "scan notified", "", err)
		}
		releases = append(releases, release)
	}
	if err := rows.Err(); err != nil {
		return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "list notified", "", err)
	}
	return releases, nil
}

// LastSubjectRefresh returns when the subject list was last rebuilt from its
// configured sources, nil when it never was.
func (s *Store) LastSubjectRefresh(ctx context.Context) (*time.Time, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM store_meta WHERE key = ?`, metaKeyLastSubjectRefresh).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "read refresh time", "", err)
	}
	refreshed, err := parseTimeString(value)
	if err != nil {
		return nil, nil
	}
	return &refreshed, nil
}

// SetLastSubjectRefresh records a completed subject list rebuild.
func (s *Store) SetLastSubjectRefresh(ctx context.Context, refreshedAt time.Time) error {
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO store_meta (key, value) VALUES (?, ?)
         ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		metaKeyLastSubjectRefresh,
		refreshedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return runerr.Wrap(runerr.ErrPersistence, "trackstore", "set refresh time", "", err)
	}
	return nil
}
