package testsupport

import (
	"path/filepath"
	"testing"

	"dropwatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t   testing.TB
	cfg *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Catalog credentials are stubbed and all pacing is disabled so tests run at
// full speed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Catalog.ClientID = "test-client-id"
	cfgVal.Catalog.ClientSecret = "test-client-secret"
	cfgVal.Catalog.CooldownSeconds = 0
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Monitor.PacingSeconds = 0

	builder := &configBuilder{t: t, cfg: &cfgVal}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithArtistNames seeds the monitored artist name list.
func WithArtistNames(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Monitor.ArtistNames = names
	}
}

// WithPlaylists seeds the monitored playlist list.
func WithPlaylists(ids ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Monitor.PlaylistIDs = ids
	}
}

// WithNtfyTopic points notifications at a test ntfy endpoint.
func WithNtfyTopic(topic string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Notifications.NtfyTopic = topic
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
