package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropwatch/internal/catalog"
	"dropwatch/internal/config"
	"dropwatch/internal/notify"
	"dropwatch/internal/testsupport"
	"dropwatch/internal/trackstore"
)

type fakeAPI struct {
	albumsBySubject map[string][]catalog.Album
	albumsErr       map[string]error
	artistsByQuery  map[string][]catalog.Artist
	playlists       map[string][]catalog.PlaylistItem
}

func (f *fakeAPI) SearchAlbums(context.Context, string, int) ([]catalog.Album, error) {
	return nil, nil
}

func (f *fakeAPI) SearchArtists(_ context.Context, query string, _ int) ([]catalog.Artist, error) {
	return f.artistsByQuery[query], nil
}

func (f *fakeAPI) ArtistAlbums(_ context.Context, artistID string, offset, _ int) (*catalog.AlbumPage, error) {
	if err := f.albumsErr[artistID]; err != nil {
		return nil, err
	}
	if offset > 0 {
		return &catalog.AlbumPage{}, nil
	}
	return &catalog.AlbumPage{Items: f.albumsBySubject[artistID]}, nil
}

func (f *fakeAPI) ArtistTopTracks(context.Context, string) ([]catalog.Track, error) {
	return nil, nil
}

func (f *fakeAPI) PlaylistTracks(_ context.Context, playlistID string, offset, _ int) (*catalog.PlaylistPage, error) {
	if offset > 0 {
		return &catalog.PlaylistPage{}, nil
	}
	return &catalog.PlaylistPage{Items: f.playlists[playlistID]}, nil
}

type fakeNotifier struct {
	batches []*notify.Batch
	errs    []error
}

func (f *fakeNotifier) PublishDigest(context.Context, *notify.Digest) error { return nil }

func (f *fakeNotifier) PublishNewReleases(_ context.Context, b *notify.Batch) error {
	f.batches = append(f.batches, b)
	return nil
}

func (f *fakeNotifier) NotifyError(_ context.Context, err error, _ string) error {
	f.errs = append(f.errs, err)
	return nil
}

func (f *fakeNotifier) TestNotification(context.Context) error { return nil }

func dayAlbum(id, name, albumType, date string) catalog.Album {
	return catalog.Album{
		ID:                   id,
		Name:                 name,
		AlbumType:            albumType,
		ReleaseDate:          date,
		ReleaseDatePrecision: "day",
	}
}

var passTime = time.Date(2026, time.August, 24, 10, 0, 0, 0, time.UTC)

func newTestMonitor(t *testing.T, api catalog.API, monitorCfg config.Monitor) (*Monitor, *trackstore.Store, *fakeNotifier) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	correlator := catalog.NewCorrelator(api, nil, catalog.WithCooldown(0))
	notifier := &fakeNotifier{}
	if monitorCfg.SubjectRefreshHours == 0 {
		monitorCfg.SubjectRefreshHours = 24
	}
	m := New(monitorCfg, store, correlator, notifier, nil, WithClock(func() time.Time { return passTime }))
	return m, store, notifier
}

func TestFirstPassBackfillsWithoutNotifying(t *testing.T) {
	api := &fakeAPI{
		albumsBySubject: map[string][]catalog.Album{
			"a1": {
				dayAlbum("r1", "Old Album", "album", "2019-04-01"),
				dayAlbum("r2", "Recent Single", "single", "2026-08-24"),
				{ID: "r3", Name: "Vague", ReleaseDate: "2026", ReleaseDatePrecision: "year"},
			},
		},
	}
	m, store, notifier := newTestMonitor(t, api, config.Monitor{})
	testsupport.TrackSubjects(t, store, catalog.Subject{ID: "a1", Name: "Artist One"})

	summary, err := m.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if !summary.InitialScan {
		t.Fatal("first pass over an unchecked store must be an initial scan")
	}
	if summary.Backfilled != 2 {
		t.Fatalf("backfilled = %d, want 2 (year-precision entries are dropped)", summary.Backfilled)
	}
	if len(notifier.batches) != 0 {
		t.Fatal("initial scan must not notify")
	}

	count, err := store.CountNotified(context.Background())
	if err != nil {
		t.Fatalf("CountNotified: %v", err)
	}
	if count != 2 {
		t.Fatalf("ledger size = %d, want 2", count)
	}
	subject, err := store.Subject(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Subject: %v", err)
	}
	if subject.LastCheck == nil || !subject.LastCheck.Equal(summary.Start) {
		t.Fatalf("last check = %v, want pass start %v", subject.LastCheck, summary.Start)
	}
}

func TestPassNotifiesOnlyNewInWindowReleases(t *testing.T) {
	api := &fakeAPI{
		albumsBySubject: map[string][]catalog.Album{
			"a1": {
				dayAlbum("known", "Already Notified", "album", "2026-08-24"),
				dayAlbum("fresh", "Brand New", "single", "2026-08-24"),
				dayAlbum("eve", "Midnight Drop", "album", "2026-08-23"),
				dayAlbum("stale", "Quiet Reissue", "album", "2026-08-21"),
			},
		},
	}
	m, store, notifier := newTestMonitor(t, api, config.Monitor{})
	testsupport.TrackSubjects(t, store, catalog.Subject{ID: "a1", Name: "Artist One"})

	// Seed a checked subject and a pre-existing ledger entry. The last check
	// sits four days back so the listing filter passes everything except the
	// acceptance window decides what gets notified.
	lastCheck := passTime.Add(-96 * time.Hour)
	if err := store.MarkChecked(context.Background(), "a1", lastCheck); err != nil {
		t.Fatalf("MarkChecked: %v", err)
	}
	if err := store.RecordNotified(context.Background(), trackstore.NotifiedRelease{
		ReleaseKey:  trackstore.ReleaseKey("a1", "known"),
		SubjectID:   "a1",
		ReleaseID:   "known",
		Name:        "Already Notified",
		ReleaseDate: "2026-08-24",
	}); err != nil {
		t.Fatalf("RecordNotified: %v", err)
	}

	summary, err := m.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if summary.InitialScan {
		t.Fatal("store with a checked subject must not rescan")
	}
	if len(summary.NewReleases) != 2 {
		t.Fatalf("new releases = %+v, want fresh and eve", summary.NewReleases)
	}
	got := map[string]bool{}
	for _, release := range summary.NewReleases {
		got[release.ID] = true
	}
	if !got["fresh"] || !got["eve"] {
		t.Fatalf("new releases = %v", got)
	}
	if len(notifier.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(notifier.batches))
	}
	if notifier.batches[0].Size() != 2 {
		t.Fatalf("batch size = %d", notifier.batches[0].Size())
	}

	// Second pass: nothing new since last check, nothing re-notified.
	summary2, err := m.RunPass(context.Background())
	if err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if len(summary2.NewReleases) != 0 {
		t.Fatalf("second pass rediscovered releases: %+v", summary2.NewReleases)
	}
	if len(notifier.batches) != 1 {
		t.Fatal("second pass must not publish")
	}
}

func TestPassAbsorbsSingleSubjectCatalogFailure(t *testing.T) {
	api := &fakeAPI{
		albumsBySubject: map[string][]catalog.Album{
			"good": {dayAlbum("g1", "Fine Album", "album", "2026-08-24")},
		},
		albumsErr: map[string]error{"bad": errors.New("catalog down")},
	}
	m, store, notifier := newTestMonitor(t, api, config.Monitor{})
	testsupport.TrackSubjects(t, store,
		catalog.Subject{ID: "bad", Name: "Broken Artist"},
		catalog.Subject{ID: "good", Name: "Working Artist"},
	)
	for _, id := range []string{"bad", "good"} {
		if err := store.MarkChecked(context.Background(), id, passTime.Add(-24*time.Hour)); err != nil {
			t.Fatalf("MarkChecked: %v", err)
		}
	}

	summary, err := m.RunPass(context.Background())
	if err != nil {
		t.Fatalf("one subject's catalog failure must not abort the pass: %v", err)
	}
	if summary.SubjectErrors != 1 {
		t.Fatalf("subject errors = %d, want 1", summary.SubjectErrors)
	}
	if summary.SubjectsChecked != 2 {
		t.Fatalf("subjects checked = %d, want 2 (failed subject still marked)", summary.SubjectsChecked)
	}
	if len(summary.NewReleases) != 1 || summary.NewReleases[0].ID != "g1" {
		t.Fatalf("new releases = %+v", summary.NewReleases)
	}
	if len(notifier.batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(notifier.batches))
	}
}

func TestRefreshDiscoversSubjectsFromPlaylistsAndNames(t *testing.T) {
	api := &fakeAPI{
		playlists: map[string][]catalog.PlaylistItem{
			"pl-1": {
				{Track: &catalog.Track{ID: "t1", Artists: []catalog.ArtistRef{{ID: "a1", Name: "Playlist Artist"}, {ID: "a2", Name: "Featured Guest"}}}},
				{Track: nil},
				{Track: &catalog.Track{ID: "t2", Artists: []catalog.ArtistRef{{ID: "a1", Name: "Playlist Artist"}}}},
			},
		},
		artistsByQuery: map[string][]catalog.Artist{
			"artist:Named Artist": {{ID: "a3", Name: "Named Artist"}},
		},
	}
	m, store, _ := newTestMonitor(t, api, config.Monitor{
		PlaylistIDs: []string{"pl-1"},
		ArtistNames: []string{"Named Artist", "Ghost Artist"},
	})

	summary, err := m.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if !summary.SubjectsRefreshed {
		t.Fatal("first pass must refresh the subject list")
	}
	if summary.SubjectsAdded != 3 {
		t.Fatalf("subjects added = %d, want 3", summary.SubjectsAdded)
	}
	refresh, err := store.LastSubjectRefresh(context.Background())
	if err != nil {
		t.Fatalf("LastSubjectRefresh: %v", err)
	}
	if refresh == nil || !refresh.Equal(summary.Start) {
		t.Fatalf("refresh stamp = %v, want %v", refresh, summary.Start)
	}

	// A second pass inside the refresh interval leaves the list alone.
	summary2, err := m.RunPass(context.Background())
	if err != nil {
		t.Fatalf("second RunPass: %v", err)
	}
	if summary2.SubjectsRefreshed {
		t.Fatal("refresh ran again inside the interval")
	}
}

func TestRunInitialScanSeedsLedgerExplicitly(t *testing.T) {
	api := &fakeAPI{
		albumsBySubject: map[string][]catalog.Album{
			"a1": {dayAlbum("r1", "Back Catalog", "album", "2021-01-15")},
		},
	}
	m, store, notifier := newTestMonitor(t, api, config.Monitor{})
	testsupport.TrackSubjects(t, store, catalog.Subject{ID: "a1", Name: "Artist One"})

	summary, err := m.RunInitialScan(context.Background())
	if err != nil {
		t.Fatalf("RunInitialScan: %v", err)
	}
	if summary.Backfilled != 1 || summary.SubjectsChecked != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(notifier.batches) != 0 {
		t.Fatal("initial scan must not notify")
	}
	known, err := store.IsNotified(context.Background(), trackstore.ReleaseKey("a1", "r1"))
	if err != nil {
		t.Fatalf("IsNotified: %v", err)
	}
	if !known {
		t.Fatal("backfilled release missing from ledger")
	}
}

func TestPassHonorsCancellationBetweenSubjects(t *testing.T) {
	api := &fakeAPI{albumsBySubject: map[string][]catalog.Album{}}
	m, store, _ := newTestMonitor(t, api, config.Monitor{})
	testsupport.TrackSubjects(t, store,
		catalog.Subject{ID: "a1", Name: "One"},
		catalog.Subject{ID: "a2", Name: "Two"},
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.RunPass(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
