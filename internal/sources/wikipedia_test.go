package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWikipediaMentions(t *testing.T) {
	const page = `<html><body>
<table class="wikitable">
<caption>List of albums released in February 2026</caption>
<tr><th>February 6</th><td>Feb Act</td><td>Feb Album</td><td>Label</td></tr>
</table>
<table class="wikitable">
<caption>List of albums released in March 2026</caption>
<tr><th>March 13</th><td>Early Act</td><td>Early Album</td><td>Label</td></tr>
<tr><th rowspan="2">March 14</th><td>First Act</td><td>First Album</td><td>Label</td></tr>
<tr><td>Second Act</td><td>Second Album</td><td>Label</td></tr>
<tr><th>March 21</th><td>Future Act</td><td>Future Album</td><td>Label</td></tr>
</table>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wiki/List_of_2026_albums" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	source := NewWikipedia(newTestFetcher(), server.URL, nil)
	mentions, err := source.Mentions(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Mentions failed: %v", err)
	}

	// The row carrying the date heading also carries that date's first album.
	if len(mentions) != 2 {
		t.Fatalf("got %d mentions, want 2: %+v", len(mentions), mentions)
	}
	if mentions[0].Artist != "First Act" || mentions[0].Title != "First Album" {
		t.Errorf("mentions[0] = %+v", mentions[0])
	}
	if mentions[1].Artist != "Second Act" || mentions[1].Title != "Second Album" {
		t.Errorf("mentions[1] = %+v", mentions[1])
	}
	for _, m := range mentions {
		if m.Source != "wikipedia" {
			t.Errorf("source = %q, want wikipedia", m.Source)
		}
	}
}

func TestWikipediaSkipsOtherMonthTables(t *testing.T) {
	// The February table contains a row that would match the window if its
	// table were scanned; the caption filter must keep it out.
	const page = `<html><body>
<table class="wikitable">
<caption>List of albums released in February 2026</caption>
<tr><th>March 14</th><td>Wrong Table</td><td>Wrong Album</td></tr>
</table>
<table class="wikitable">
<caption>List of albums released in March 2026</caption>
<tr><th>March 14</th><td>Right Table</td><td>Right Album</td></tr>
</table>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer server.Close()

	source := NewWikipedia(newTestFetcher(), server.URL, nil)
	mentions, err := source.Mentions(context.Background(), testTarget())
	if err != nil {
		t.Fatalf("Mentions failed: %v", err)
	}
	if len(mentions) != 1 || mentions[0].Artist != "Right Table" {
		t.Errorf("mentions = %+v, want only the March table entry", mentions)
	}
}

func TestWikipediaURLUsesTargetYear(t *testing.T) {
	source := NewWikipedia(newTestFetcher(), "https://en.m.wikipedia.org", nil)
	got := source.URL(testTarget())
	want := "https://en.m.wikipedia.org/wiki/List_of_2026_albums"
	if got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}
}
