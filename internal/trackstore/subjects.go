package trackstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"dropwatch/internal/catalog"
	"dropwatch/internal/runerr"
)

// TrackedSubject is a monitored artist. LastCheck is nil until the first
// completed poll pass touches the subject.
type TrackedSubject struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	AddedAt   time.Time  `json:"added_at"`
	LastCheck *time.Time `json:"last_check,omitempty"`
}

const subjectColumns = "id, name, added_at, last_check"

func scanSubject(scanner interface{ Scan(dest ...any) error }) (*TrackedSubject, error) {
	var (
		id       string
		name     string
		addedRaw sql.NullString
		checkRaw sql.NullString
	)
	if err := scanner.Scan(&id, &name, &addedRaw, &checkRaw); err != nil {
		return nil, err
	}

	subject := &TrackedSubject{ID: id, Name: name}
	if added, err := parseTimeString(addedRaw.String); err == nil {
		subject.AddedAt = added
	}
	if checkRaw.Valid {
		if checked, err := parseTimeString(checkRaw.String); err == nil {
			subject.LastCheck = &checked
		}
	}
	return subject, nil
}

// AddSubjectsIfAbsent inserts subjects that are not yet tracked and reports
// how many were new. Existing subjects keep their name and last check.
func (s *Store) AddSubjectsIfAbsent(ctx context.Context, subjects []catalog.Subject) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	var added int64
	for _, subject := range subjects {
		if strings.TrimSpace(subject.ID) == "" {
			continue
		}
		res, err := s.execWithRetry(ctx,
			`INSERT OR IGNORE INTO tracked_subjects (id, name, added_at, last_check) VALUES (?, ?, ?, NULL)`,
			subject.ID,
			subject.Name,
			now,
		)
		if err != nil {
			return added, runerr.Wrap(runerr.ErrPersistence, "trackstore", "add subject", subject.ID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return added, runerr.Wrap(runerr.ErrPersistence, "trackstore", "add subject", "rows affected", err)
		}
		added += n
	}
	return added, nil
}

// Subject fetches one tracked subject by catalog ID, nil when untracked.
func (s *Store) Subject(ctx context.Context, id string) (*TrackedSubject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM tracked_subjects WHERE id = ?`, id)
	subject, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "get subject", "", err)
	}
	return subject, nil
}

// SubjectsInCheckOrder returns every tracked subject, never-checked ones
// first, then ascending by last check. Ties fall back to added time and ID so
// the order is stable across calls.
func (s *Store) SubjectsInCheckOrder(ctx context.Context) ([]*TrackedSubject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+subjectColumns+` FROM tracked_subjects
         ORDER BY (last_check IS NULL) DESC, last_check ASC, added_at ASC, id ASC`)
	if err != nil {
		return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "list subjects", "", err)
	}
	defer rows.Close()

	var subjects []*TrackedSubject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "scan subject", "", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, runerr.Wrap(runerr.ErrPersistence, "trackstore", "list subjects", "", err)
	}
	return subjects, nil
}

// MarkChecked sets a subject's last check to the given pass start time.
func (s *Store) MarkChecked(ctx context.Context, subjectID string, checkedAt time.Time) error {
	if _, err := s.execWithRetry(ctx,
		`UPDATE tracked_subjects SET last_check = ? WHERE id = ?`,
		checkedAt.UTC().Format(time.RFC3339Nano),
		subjectID,
	); err != nil {
		return runerr.Wrap(runerr.ErrPersistence, "trackstore", "mark checked", subjectID, err)
	}
	return nil
}

// HasCheckedSubjects reports whether any subject has ever been checked. A
// fully unchecked store means the next pass is an initial scan.
func (s *Store) HasCheckedSubjects(ctx context.Context) (bool, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM tracked_subjects WHERE last_check IS NOT NULL`).Scan(&count)
	if err != nil {
		return false, runerr.Wrap(runerr.ErrPersistence, "trackstore", "count checked subjects", "", err)
	}
	return count > 0, nil
}

// CountSubjects returns the number of tracked subjects.
func (s *Store) CountSubjects(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tracked_subjects`).Scan(&count); err != nil {
		return 0, runerr.Wrap(runerr.ErrPersistence, "trackstore", "count subjects", "", err)
	}
	return count, nil
}
