package config

const (
	defaultStateDir             = "~/.local/share/dropwatch"
	defaultLogDir               = "~/.local/share/dropwatch/logs"
	defaultCatalogBaseURL       = "https://api.spotify.com/v1"
	defaultCatalogTokenURL      = "https://accounts.spotify.com/api/token"
	defaultCatalogMarket        = "US"
	defaultCatalogTimeout       = 10
	defaultCatalogSearchLimit   = 50
	defaultCatalogCooldown      = 1
	defaultMetacriticBaseURL    = "https://www.metacritic.com"
	defaultGeniusBaseURL        = "https://genius.com"
	defaultWikipediaBaseURL     = "https://en.m.wikipedia.org"
	defaultSourceTimeout        = 10
	defaultSourceUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultMonitorPassInterval  = 300
	defaultMonitorPacing        = 5
	defaultMonitorErrorRetry    = 600
	defaultSubjectRefreshHours  = 24
	defaultNotifyRequestTimeout = 10
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Catalog: Catalog{
			BaseURL:         defaultCatalogBaseURL,
			TokenURL:        defaultCatalogTokenURL,
			Market:          defaultCatalogMarket,
			RequestTimeout:  defaultCatalogTimeout,
			SearchLimit:     defaultCatalogSearchLimit,
			CooldownSeconds: defaultCatalogCooldown,
		},
		Sources: Sources{
			Metacritic:        true,
			Genius:            true,
			Wikipedia:         true,
			MetacriticBaseURL: defaultMetacriticBaseURL,
			GeniusBaseURL:     defaultGeniusBaseURL,
			WikipediaBaseURL:  defaultWikipediaBaseURL,
			RequestTimeout:    defaultSourceTimeout,
			UserAgent:         defaultSourceUserAgent,
		},
		Monitor: Monitor{
			PassInterval:        defaultMonitorPassInterval,
			PacingSeconds:       defaultMonitorPacing,
			ErrorRetryInterval:  defaultMonitorErrorRetry,
			SubjectRefreshHours: defaultSubjectRefreshHours,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Digest:         true,
			Releases:       true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
