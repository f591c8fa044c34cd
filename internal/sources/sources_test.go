package sources

import (
	"testing"

	"dropwatch/internal/config"
)

func TestEnabledBuildsSourcesInScanOrder(t *testing.T) {
	cfg := config.Sources{
		Metacritic:        true,
		Genius:            true,
		Wikipedia:         true,
		MetacriticBaseURL: "https://www.metacritic.com",
		GeniusBaseURL:     "https://genius.com",
		WikipediaBaseURL:  "https://en.m.wikipedia.org",
		RequestTimeout:    5,
		UserAgent:         testUserAgent,
	}

	list := Enabled(cfg, NewFetcher(cfg), nil)
	want := []string{"metacritic", "genius", "wikipedia"}
	if len(list) != len(want) {
		t.Fatalf("got %d sources, want %d", len(list), len(want))
	}
	for i, name := range want {
		if list[i].Name() != name {
			t.Errorf("list[%d] = %q, want %q", i, list[i].Name(), name)
		}
	}
}

func TestEnabledSkipsDisabledSources(t *testing.T) {
	cfg := config.Sources{
		Metacritic:        true,
		Wikipedia:         true,
		MetacriticBaseURL: "https://www.metacritic.com",
		WikipediaBaseURL:  "https://en.m.wikipedia.org",
		RequestTimeout:    5,
		UserAgent:         testUserAgent,
	}

	list := Enabled(cfg, NewFetcher(cfg), nil)
	if len(list) != 2 {
		t.Fatalf("got %d sources, want 2", len(list))
	}
	if list[0].Name() != "metacritic" || list[1].Name() != "wikipedia" {
		t.Errorf("order = %q, %q", list[0].Name(), list[1].Name())
	}
}
