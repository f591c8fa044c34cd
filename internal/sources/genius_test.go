package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"dropwatch/internal/runerr"
)

func TestGeniusMentions(t *testing.T) {
	const page = `<html><body>
<p><b>3/7</b></p>
<p><a href="#">Too Early - Early Album - View Annotations</a></p>
<p><b>3/14</b></p>
<p><a href="#">Right Act - Right Album - View Annotations</a></p>
<p><a href="#">Hyphen Act - Part One - Part Two - View Annotations</a></p>
<p><b>3/21</b></p>
<p><a href="#">Next Week - Future Album - View Annotations</a></p>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Genius-march-2026-album-release-calendar-annotated" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	source := NewGenius(newTestFetcher(), server.URL, nil)
	mentions, err := source.Mentions(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Mentions failed: %v", err)
	}

	if len(mentions) != 2 {
		t.Fatalf("got %d mentions, want 2: %+v", len(mentions), mentions)
	}
	if mentions[0].Artist != "Right Act" || mentions[0].Title != "Right Album" {
		t.Errorf("mentions[0] = %+v", mentions[0])
	}
	if mentions[1].Artist != "Hyphen Act" || mentions[1].Title != "Part One - Part Two" {
		t.Errorf("mentions[1] = %+v", mentions[1])
	}
	for _, m := range mentions {
		if m.Source != "genius" {
			t.Errorf("source = %q, want genius", m.Source)
		}
	}
}

func TestGeniusMissingMonthPageFailsWindow(t *testing.T) {
	// A calendar for a different month parses fine but never shows the
	// target's start marker.
	const page = `<html><body>
<p><b>4/1</b></p>
<p><a href="#">April Act - April Album - View Annotations</a></p>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	source := NewGenius(newTestFetcher(), server.URL, nil)
	_, err := source.Mentions(context.Background(), testTarget())
	if !errors.Is(err, runerr.ErrWindowNotFound) {
		t.Fatalf("err = %v, want ErrWindowNotFound", err)
	}
}

func TestGeniusURLSlug(t *testing.T) {
	source := NewGenius(newTestFetcher(), "https://genius.com", nil)
	got := source.URL(testTarget())
	want := "https://genius.com/Genius-march-2026-album-release-calendar-annotated"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
