package digest

import (
	"context"
	"errors"
	"testing"
	"time"

	"dropwatch/internal/catalog"
	"dropwatch/internal/dates"
	"dropwatch/internal/notify"
	"dropwatch/internal/releases"
	"dropwatch/internal/runerr"
	"dropwatch/internal/sources"
)

type fakeSource struct {
	name     string
	mentions []releases.Mention
	err      error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Mentions(context.Context, dates.Target) ([]releases.Mention, error) {
	return f.mentions, f.err
}

type fakeAPI struct {
	searchAlbums  func(query string, limit int) ([]catalog.Album, error)
	searchArtists func(query string, limit int) ([]catalog.Artist, error)
}

func (f *fakeAPI) SearchAlbums(_ context.Context, query string, limit int) ([]catalog.Album, error) {
	if f.searchAlbums == nil {
		return nil, nil
	}
	return f.searchAlbums(query, limit)
}

func (f *fakeAPI) SearchArtists(_ context.Context, query string, limit int) ([]catalog.Artist, error) {
	if f.searchArtists == nil {
		return nil, nil
	}
	return f.searchArtists(query, limit)
}

func (f *fakeAPI) ArtistAlbums(context.Context, string, int, int) (*catalog.AlbumPage, error) {
	return &catalog.AlbumPage{}, nil
}

func (f *fakeAPI) ArtistTopTracks(context.Context, string) ([]catalog.Track, error) {
	return nil, nil
}

func (f *fakeAPI) PlaylistTracks(context.Context, string, int, int) (*catalog.PlaylistPage, error) {
	return &catalog.PlaylistPage{}, nil
}

type fakeNotifier struct {
	digests    []*notify.Digest
	publishErr error
}

func (f *fakeNotifier) PublishDigest(_ context.Context, d *notify.Digest) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.digests = append(f.digests, d)
	return nil
}

func (f *fakeNotifier) PublishNewReleases(context.Context, *notify.Batch) error { return nil }
func (f *fakeNotifier) NotifyError(context.Context, error, string) error        { return nil }
func (f *fakeNotifier) TestNotification(context.Context) error                  { return nil }

// fixedClock pins "now" so tomorrow's target date is deterministic.
func fixedClock() func() time.Time {
	now := time.Date(2026, time.August, 27, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func targetAlbum(id string, tracks int) catalog.Album {
	return catalog.Album{
		ID:                   id,
		Name:                 "Album Y",
		TotalTracks:          tracks,
		ReleaseDate:          "2026-08-28",
		ReleaseDatePrecision: "day",
	}
}

func newTestCorrelator(api catalog.API) *catalog.Correlator {
	return catalog.NewCorrelator(api, nil, catalog.WithCooldown(0))
}

func TestRunOnceMergesMentionsAcrossSources(t *testing.T) {
	srcs := []sources.Source{
		&fakeSource{name: "source1", mentions: []releases.Mention{{Artist: "Artist X", Title: "Album Y", Source: "source1"}}},
		&fakeSource{name: "source2", mentions: []releases.Mention{{Artist: " artist x ", Title: "album y", Source: "source2"}}},
		&fakeSource{name: "source3", mentions: []releases.Mention{{Artist: "ARTIST X", Title: "ALBUM Y", Source: "source3"}}},
	}
	api := &fakeAPI{
		searchAlbums: func(string, int) ([]catalog.Album, error) {
			return []catalog.Album{targetAlbum("alb-xy", 12)}, nil
		},
	}
	notifier := &fakeNotifier{}
	runner := NewRunner(srcs, newTestCorrelator(api), notifier, nil, WithClock(fixedClock()))

	result, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(result.Entities) != 1 {
		t.Fatalf("expected one entity, got %d", len(result.Entities))
	}
	entity := result.Entities[0]
	if entity.Record == nil || entity.Record.TrackCount != 12 {
		t.Fatalf("entity record = %+v", entity.Record)
	}
	want := []string{"source1", "source2", "source3"}
	if len(entity.Sources) != len(want) {
		t.Fatalf("sources = %v", entity.Sources)
	}
	for i, source := range want {
		if entity.Sources[i] != source {
			t.Errorf("sources[%d] = %q, want %q", i, entity.Sources[i], source)
		}
	}
	if len(notifier.digests) != 1 {
		t.Fatalf("expected one published digest, got %d", len(notifier.digests))
	}
}

func TestRunOnceIsolatesFailedSource(t *testing.T) {
	srcs := []sources.Source{
		&fakeSource{name: "broken", err: runerr.ErrWindowNotFound},
		&fakeSource{name: "working", mentions: []releases.Mention{{Artist: "Artist X", Title: "Album Y", Source: "working"}}},
	}
	api := &fakeAPI{
		searchAlbums: func(string, int) ([]catalog.Album, error) {
			return []catalog.Album{targetAlbum("alb-xy", 10)}, nil
		},
	}
	notifier := &fakeNotifier{}
	runner := NewRunner(srcs, newTestCorrelator(api), notifier, nil, WithClock(fixedClock()))

	result, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("one failed source must not fail the run: %v", err)
	}
	if len(result.Entities) != 1 {
		t.Fatalf("expected the working source's entity, got %d entities", len(result.Entities))
	}
	if len(result.Issues) != 1 || result.Issues[0].Source != "broken" {
		t.Fatalf("issues = %+v", result.Issues)
	}
	if len(notifier.digests) != 1 {
		t.Fatalf("digest with issues must still publish, got %d", len(notifier.digests))
	}
}

func TestRunOnceFailsWhenEverySourceFails(t *testing.T) {
	srcs := []sources.Source{
		&fakeSource{name: "a", err: runerr.ErrWindowNotFound},
		&fakeSource{name: "b", err: runerr.ErrNoMentions},
	}
	notifier := &fakeNotifier{}
	runner := NewRunner(srcs, newTestCorrelator(&fakeAPI{}), notifier, nil, WithClock(fixedClock()))

	result, err := runner.RunOnce(context.Background())
	if !errors.Is(err, runerr.ErrSourceFormat) {
		t.Fatalf("expected ErrSourceFormat, got %v", err)
	}
	if result == nil || len(result.Issues) != 2 {
		t.Fatalf("result = %+v", result)
	}
	if len(notifier.digests) != 0 {
		t.Fatal("nothing should be published when every source failed")
	}
}

func TestRunOnceSkipsPublishWhenEmpty(t *testing.T) {
	srcs := []sources.Source{
		&fakeSource{name: "quiet", mentions: nil},
	}
	notifier := &fakeNotifier{}
	runner := NewRunner(srcs, newTestCorrelator(&fakeAPI{}), notifier, nil, WithClock(fixedClock()))

	result, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if !result.Empty() {
		t.Fatalf("expected empty digest, got %d entities", len(result.Entities))
	}
	if len(notifier.digests) != 0 {
		t.Fatal("empty digest must not be published")
	}
}

func TestRunOnceKeepsUnconfirmedEntities(t *testing.T) {
	srcs := []sources.Source{
		&fakeSource{name: "source1", mentions: []releases.Mention{{Artist: "Obscure Act", Title: "Demo Tape", Source: "source1"}}},
	}
	api := &fakeAPI{
		searchAlbums: func(string, int) ([]catalog.Album, error) { return nil, nil },
	}
	notifier := &fakeNotifier{}
	runner := NewRunner(srcs, newTestCorrelator(api), notifier, nil, WithClock(fixedClock()))

	result, err := runner.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if len(result.Entities) != 1 || result.Entities[0].Record != nil {
		t.Fatalf("expected one unconfirmed entity, got %+v", result.Entities)
	}
	if result.Unconfirmed() != 1 {
		t.Fatalf("Unconfirmed() = %d", result.Unconfirmed())
	}
	if len(notifier.digests) != 1 {
		t.Fatal("unconfirmed entities must still be published for manual review")
	}
}

func TestRunOnceSurfacesDeliveryError(t *testing.T) {
	srcs := []sources.Source{
		&fakeSource{name: "source1", mentions: []releases.Mention{{Artist: "Artist X", Title: "Album Y", Source: "source1"}}},
	}
	api := &fakeAPI{
		searchAlbums: func(string, int) ([]catalog.Album, error) {
			return []catalog.Album{targetAlbum("alb-xy", 8)}, nil
		},
	}
	deliveryErr := runerr.Wrap(runerr.ErrDelivery, "notify", "publish digest", "", errors.New("boom"))
	notifier := &fakeNotifier{publishErr: deliveryErr}
	runner := NewRunner(srcs, newTestCorrelator(api), notifier, nil, WithClock(fixedClock()))

	result, err := runner.RunOnce(context.Background())
	if !errors.Is(err, runerr.ErrDelivery) {
		t.Fatalf("expected ErrDelivery, got %v", err)
	}
	if result == nil || len(result.Entities) != 1 {
		t.Fatalf("digest should still be returned, got %+v", result)
	}
}
