package testsupport

import (
	"context"
	"testing"

	"dropwatch/internal/catalog"
	"dropwatch/internal/config"
	"dropwatch/internal/trackstore"
)

// MustOpenStore opens a trackstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *trackstore.Store {
	t.Helper()

	store, err := trackstore.Open(cfg)
	if err != nil {
		t.Fatalf("trackstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// TrackSubjects inserts subjects into the store for tests.
func TrackSubjects(t testing.TB, store *trackstore.Store, subjects ...catalog.Subject) {
	t.Helper()

	if _, err := store.AddSubjectsIfAbsent(context.Background(), subjects); err != nil {
		t.Fatalf("store.AddSubjectsIfAbsent: %v", err)
	}
}
