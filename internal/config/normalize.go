package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCatalog()
	c.normalizeSources()
	c.normalizeMonitor()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCatalog() {
	c.Catalog.ClientID = strings.TrimSpace(c.Catalog.ClientID)
	if c.Catalog.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Catalog.ClientID = strings.TrimSpace(value)
		}
	}
	c.Catalog.ClientSecret = strings.TrimSpace(c.Catalog.ClientSecret)
	if c.Catalog.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Catalog.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Catalog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Catalog.BaseURL), "/")
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	c.Catalog.TokenURL = strings.TrimSpace(c.Catalog.TokenURL)
	if c.Catalog.TokenURL == "" {
		c.Catalog.TokenURL = defaultCatalogTokenURL
	}
	c.Catalog.Market = strings.ToUpper(strings.TrimSpace(c.Catalog.Market))
	if c.Catalog.Market == "" {
		c.Catalog.Market = defaultCatalogMarket
	}
	if c.Catalog.RequestTimeout <= 0 {
		c.Catalog.RequestTimeout = defaultCatalogTimeout
	}
	if c.Catalog.SearchLimit <= 0 || c.Catalog.SearchLimit > defaultCatalogSearchLimit {
		c.Catalog.SearchLimit = defaultCatalogSearchLimit
	}
	if c.Catalog.CooldownSeconds < 0 {
		c.Catalog.CooldownSeconds = 0
	}
}

func (c *Config) normalizeSources() {
	c.Sources.MetacriticBaseURL = strings.TrimRight(strings.TrimSpace(c.Sources.MetacriticBaseURL), "/")
	if c.Sources.MetacriticBaseURL == "" {
		c.Sources.MetacriticBaseURL = defaultMetacriticBaseURL
	}
	c.Sources.GeniusBaseURL = strings.TrimRight(strings.TrimSpace(c.Sources.GeniusBaseURL), "/")
	if c.Sources.GeniusBaseURL == "" {
		c.Sources.GeniusBaseURL = defaultGeniusBaseURL
	}
	c.Sources.WikipediaBaseURL = strings.TrimRight(strings.TrimSpace(c.Sources.WikipediaBaseURL), "/")
	if c.Sources.WikipediaBaseURL == "" {
		c.Sources.WikipediaBaseURL = defaultWikipediaBaseURL
	}
	if c.Sources.RequestTimeout <= 0 {
		c.Sources.RequestTimeout = defaultSourceTimeout
	}
	c.Sources.UserAgent = strings.TrimSpace(c.Sources.UserAgent)
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = defaultSourceUserAgent
	}
}

func (c *Config) normalizeMonitor() {
	if c.Monitor.PassInterval <= 0 {
		c.Monitor.PassInterval = defaultMonitorPassInterval
	}
	if c.Monitor.PacingSeconds < 0 {
		c.Monitor.PacingSeconds = 0
	}
	if c.Monitor.ErrorRetryInterval <= 0 {
		c.Monitor.ErrorRetryInterval = defaultMonitorErrorRetry
	}
	if c.Monitor.SubjectRefreshHours <= 0 {
		c.Monitor.SubjectRefreshHours = defaultSubjectRefreshHours
	}
	c.Monitor.PlaylistIDs = dedupeTrimmed(c.Monitor.PlaylistIDs)
	c.Monitor.ArtistNames = dedupeTrimmed(c.Monitor.ArtistNames)
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func dedupeTrimmed(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
