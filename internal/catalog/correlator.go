package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dropwatch/internal/dates"
	"dropwatch/internal/logging"
)

// Record is a resolved catalog album used to enrich digest entries.
type Record struct {
	ID          string
	Name        string
	TrackCount  int
	ReleaseDate string
	URL         string
	ImageURL    string
}

// Subject is a tracked artist identity.
type Subject struct {
	ID   string
	Name string
}

// SubjectRecord is an artist profile used to enrich digest entries.
// A zero-value record means the lookup failed or found nothing.
type SubjectRecord struct {
	Genres    []string
	Followers int
	TopWorks  []string
	URL       string
}

// Release is one entry of a subject's release listing.
type Release struct {
	ID          string
	SubjectID   string
	SubjectName string
	Name        string
	Type        string
	ReleaseDate time.Time
	URL         string
}

// Correlator resolves scraped mentions and tracked subjects against the
// catalog. Every API call is followed by a cooldown pause so long scraping
// passes stay inside rate limits.
type Correlator struct {
	api      API
	logger   *slog.Logger
	cooldown time.Duration
	limit    int
}

// CorrelatorOption configures a Correlator.
type CorrelatorOption func(*Correlator)

// WithCooldown sets the pause applied after each catalog call. Zero disables
// pacing.
func WithCooldown(d time.Duration) CorrelatorOption {
	return func(c *Correlator) {
		if d >= 0 {
			c.cooldown = d
		}
	}
}

// WithSearchLimit caps the page size used for searches and listings.
func WithSearchLimit(limit int) CorrelatorOption {
	return func(c *Correlator) {
		if limit > 0 && limit <= 50 {
			c.limit = limit
		}
	}
}

// NewCorrelator creates a correlator on top of the raw catalog API.
func NewCorrelator(api API, logger *slog.Logger, opts ...CorrelatorOption) *Correlator {
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Correlator{
		api:      api,
		logger:   logging.NewComponentLogger(logger, "catalog"),
		cooldown: time.Second,
		limit:    50,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Correlator) pause(ctx context.Context) error {
	if c.cooldown <= 0 {
		return nil
	}
	timer := time.NewTimer(c.cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// FindRelease resolves an artist and title pair to a catalog record whose
// release date falls inside the accepted set. A precise fielded query runs
// first; the broad query runs only when the precise one returns nothing at
// all. When several candidates match, the one with the most tracks wins and
// ties keep the first listed. Returns (nil, nil) when no candidate matches.
func (c *Correlator) FindRelease(ctx context.Context, artist, title string, accepted dates.DateSet) (*Record, error) {
	query := fmt.Sprintf("artist:%s album:%s", artist, title)
	items, err := c.api.SearchAlbums(ctx, query, c.limit)
	if err != nil {
		return nil, err
	}
	if err := c.pause(ctx); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		c.logger.Debug("precise search returned nothing, retrying broad",
			logging.String(logging.FieldSubject, artist),
			logging.String(logging.FieldRelease, title))
		items, err = c.api.SearchAlbums(ctx, fmt.Sprintf("%s %s", artist, title), c.limit)
		if err != nil {
			return nil, err
		}
		if err := c.pause(ctx); err != nil {
			return nil, err
		}
	}

	var best *Album
	for i := range items {
		album := &items[i]
		if !accepted.Contains(album.ReleaseDate) {
			continue
		}
		if best == nil || album.TotalTracks > best.TotalTracks {
			best = album
		}
	}
	if best == nil {
		c.logger.Debug("no catalog match in release window",
			logging.String(logging.FieldSubject, artist),
			logging.String(logging.FieldRelease, title))
		return nil, nil
	}

	record := &Record{
		ID:          best.ID,
		Name:        best.Name,
		TrackCount:  best.TotalTracks,
		ReleaseDate: best.ReleaseDate,
		URL:         best.ExternalURLs.Spotify,
	}
	if len(best.Images) > 0 {
		record.ImageURL = best.Images[0].URL
	}
	return record, nil
}

// SubjectInfo fetches an artist profile for digest enrichment. Genres and top
// works are capped at three entries each. Any failure along the way yields a
// zero-value record rather than an error so one bad lookup never sinks a
// digest run.
func (c *Correlator) SubjectInfo(ctx context.Context, name string) *SubjectRecord {
	artists, err := c.api.SearchArtists(ctx, "artist:"+name, 1)
	if err != nil {
		c.logger.Warn("artist profile lookup failed",
			logging.String(logging.FieldSubject, name),
			logging.Error(err))
		return &SubjectRecord{}
	}
	if err := c.pause(ctx); err != nil {
		return &SubjectRecord{}
	}
	if len(artists) == 0 {
		return &SubjectRecord{}
	}
	artist := artists[0]

	tracks, err := c.api.ArtistTopTracks(ctx, artist.ID)
	if err != nil {
		c.logger.Warn("top tracks lookup failed",
			logging.String(logging.FieldSubject, name),
			logging.Error(err))
		return &SubjectRecord{}
	}
	if err := c.pause(ctx); err != nil {
		return &SubjectRecord{}
	}

	record := &SubjectRecord{
		Followers: artist.Followers.Total,
		URL:       artist.ExternalURLs.Spotify,
	}
	for _, genre := range artist.Genres {
		if len(record.Genres) == 3 {
			break
		}
		record.Genres = append(record.Genres, genre)
	}
	for _, track := range tracks {
		if len(record.TopWorks) == 3 {
			break
		}
		record.TopWorks = append(record.TopWorks, track.Name)
	}
	return record
}

// FindSubject resolves an artist name to its catalog identity. Returns
// (nil, nil) when the catalog knows no such artist.
func (c *Correlator) FindSubject(ctx context.Context, name string) (*Subject, error) {
	artists, err := c.api.SearchArtists(ctx, "artist:"+name, 1)
	if err != nil {
		return nil, err
	}
	if err := c.pause(ctx); err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, nil
	}
	return &Subject{ID: artists[0].ID, Name: artists[0].Name}, nil
}

// ListSubjectReleases pages through a subject's full release listing and
// keeps only entries with day-precision dates. When since is set, only
// releases dated strictly after it are returned; a nil since returns the
// whole history.
func (c *Correlator) ListSubjectReleases(ctx context.Context, subject Subject, since *time.Time) ([]Release, error) {
	var releases []Release
	offset := 0
	for {
		page, err := c.api.ArtistAlbums(ctx, subject.ID, offset, c.limit)
		if err != nil {
			return nil, err
		}
		if err := c.pause(ctx); err != nil {
			return nil, err
		}
		for _, album := range page.Items {
			if album.ReleaseDatePrecision != "day" {
				continue
			}
			released, err := dates.ParseISO(album.ReleaseDate)
			if err != nil {
				continue
			}
			if since != nil && !released.After(*since) {
				continue
			}
			releases = append(releases, Release{
				ID:          album.ID,
				SubjectID:   subject.ID,
				SubjectName: subject.Name,
				Name:        album.Name,
				Type:        album.AlbumType,
				ReleaseDate: released,
				URL:         album.ExternalURLs.Spotify,
			})
		}
		if page.Next == "" || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}
	return releases, nil
}

// PlaylistSubjects collects every credited artist across a playlist's tracks,
// deduplicated by catalog ID in first-seen order. Entries without a track are
// skipped.
func (c *Correlator) PlaylistSubjects(ctx context.Context, playlistID string) ([]Subject, error) {
	var subjects []Subject
	seen := make(map[string]struct{})
	offset := 0
	for {
		page, err := c.api.PlaylistTracks(ctx, playlistID, offset, c.limit)
		if err != nil {
			return nil, err
		}
		if err := c.pause(ctx); err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if item.Track == nil {
				continue
			}
			for _, artist := range item.Track.Artists {
				if artist.ID == "" {
					continue
				}
				if _, ok := seen[artist.ID]; ok {
					continue
				}
				seen[artist.ID] = struct{}{}
				subjects = append(subjects, Subject{ID: artist.ID, Name: artist.Name})
			}
		}
		if page.Next == "" || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}
	return subjects, nil
}
