package sources

import (
	"context"
	"log/slog"

	"dropwatch/internal/config"
	"dropwatch/internal/dates"
	"dropwatch/internal/releases"
)

// Source is implemented by each release calendar scraper. A failed source
// returns an error and contributes nothing; callers decide whether the run
// continues with the remaining sources.
type Source interface {
	Name() string
	Mentions(ctx context.Context, target dates.Target) ([]releases.Mention, error)
}

// Enabled builds the configured sources in their fixed scan order.
func Enabled(cfg config.Sources, fetcher *Fetcher, logger *slog.Logger) []Source {
	var list []Source
	if cfg.Metacritic {
		list = append(list, NewMetacritic(fetcher, cfg.MetacriticBaseURL, logger))
	}
	if cfg.Genius {
		list = append(list, NewGenius(fetcher, cfg.GeniusBaseURL, logger))
	}
	if cfg.Wikipedia {
		list = append(list, NewWikipedia(fetcher, cfg.WikipediaBaseURL, logger))
	}
	return list
}
