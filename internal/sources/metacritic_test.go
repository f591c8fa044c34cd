package sources

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dropwatch/internal/config"
	"dropwatch/internal/dates"
	"dropwatch/internal/runerr"
)

const testUserAgent = "Mozilla/5.0 (test)"

func testTarget() dates.Target {
	return dates.NewTarget(time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC))
}

func newTestFetcher() *Fetcher {
	return NewFetcher(config.Sources{RequestTimeout: 5, UserAgent: testUserAgent})
}

func TestMetacriticMentions(t *testing.T) {
	const page = `<html><body>
<table class="clamp-list musicTable">
<tr><th>7 March 2026</th></tr>
<tr><td class="artistName">Old Act</td><td class="albumTitle">Old Album</td></tr>
<tr><th>14 March 2026</th></tr>
<tr><td class="artistName">Caroline Polachek</td><td class="albumTitle">New Heights</td></tr>
<tr><td class="artistName">Second Act</td><td class="albumTitle">Second Album</td></tr>
<tr><th>21 March 2026</th></tr>
<tr><td class="artistName">Next Week</td><td class="albumTitle">Future Album</td></tr>
</table>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/browse/albums/release-date/coming-soon/date" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("User-Agent"); got != testUserAgent {
			t.Errorf("User-Agent = %q, want %q", got, testUserAgent)
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	source := NewMetacritic(newTestFetcher(), server.URL, nil)
	mentions, err := source.Mentions(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Mentions failed: %v", err)
	}

	if len(mentions) != 2 {
		t.Fatalf("got %d mentions, want 2: %+v", len(mentions), mentions)
	}
	if mentions[0].Artist != "Caroline Polachek" || mentions[0].Title != "New Heights" {
		t.Errorf("mentions[0] = %+v", mentions[0])
	}
	if mentions[1].Artist != "Second Act" {
		t.Errorf("mentions[1] = %+v", mentions[1])
	}
	for _, m := range mentions {
		if m.Source != "metacritic" {
			t.Errorf("source = %q, want metacritic", m.Source)
		}
	}
}

func TestMetacriticMissingTableIsFormatError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><p>redesigned page</p></body></html>`))
	}))
	defer server.Close()

	source := NewMetacritic(newTestFetcher(), server.URL, nil)
	_, err := source.Mentions(context.Background(), testTarget())
	if !errors.Is(err, runerr.ErrSourceFormat) {
		t.Fatalf("err = %v, want source format error", err)
	}
}

func TestMetacriticPropagatesFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	source := NewMetacritic(newTestFetcher(), server.URL, nil)
	_, err := source.Mentions(context.Background(), testTarget())
	if err == nil {
		t.Fatal("expected error for 503 response")
	}
}
