package preflight_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"dropwatch/internal/preflight"
	"dropwatch/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckDirectoryAccess("State directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass for %s, got %q", dir, result.Detail)
	}

	missing := filepath.Join(dir, "nope")
	result = preflight.CheckDirectoryAccess("State directory", missing)
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}
}

func TestCheckCatalogTokenRoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Catalog.TokenURL = server.URL + "/api/token"

	result := preflight.CheckCatalog(context.Background(), cfg.Catalog)
	if !result.Passed {
		t.Fatalf("expected pass, got %q", result.Detail)
	}
}

func TestCheckCatalogReportsBadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_client", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	cfg.Catalog.TokenURL = server.URL

	result := preflight.CheckCatalog(context.Background(), cfg.Catalog)
	if result.Passed {
		t.Fatal("expected failure for rejected credentials")
	}

	cfg.Catalog.ClientID = ""
	result = preflight.CheckCatalog(context.Background(), cfg.Catalog)
	if result.Passed || result.Detail != "credentials missing" {
		t.Fatalf("expected credentials-missing failure, got %+v", result)
	}
}

func TestCheckSourceReachability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Consent walls answer 403 to unknown agents; that still proves
		// the host is up.
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(server.Close)

	result := preflight.CheckSource(context.Background(), "Metacritic", server.URL, "test-agent")
	if !result.Passed {
		t.Fatalf("4xx should count as reachable, got %q", result.Detail)
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(broken.Close)

	result = preflight.CheckSource(context.Background(), "Genius", broken.URL, "test-agent")
	if result.Passed {
		t.Fatal("5xx must fail the check")
	}

	result = preflight.CheckSource(context.Background(), "Wikipedia", "", "test-agent")
	if result.Passed || result.Detail != "missing url" {
		t.Fatalf("expected missing-url failure, got %+v", result)
	}
}

func TestRunAllCoversConfiguredChecks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	cfg.Catalog.TokenURL = server.URL
	cfg.Sources.Metacritic = true
	cfg.Sources.Genius = false
	cfg.Sources.Wikipedia = false
	cfg.Sources.MetacriticBaseURL = server.URL

	results := preflight.RunAll(context.Background(), cfg)
	// State dir, log dir, catalog, and one enabled source.
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d: %+v", len(results), results)
	}
	for _, result := range results {
		if !result.Passed {
			t.Errorf("check %s failed: %s", result.Name, result.Detail)
		}
	}
}
