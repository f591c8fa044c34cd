package preflight

import (
	"context"

	"dropwatch/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	results = append(results, CheckCatalog(ctx, cfg.Catalog))

	if cfg.Sources.Metacritic {
		results = append(results, CheckSource(ctx, "Metacritic", cfg.Sources.MetacriticBaseURL, cfg.Sources.UserAgent))
	}
	if cfg.Sources.Genius {
		results = append(results, CheckSource(ctx, "Genius", cfg.Sources.GeniusBaseURL, cfg.Sources.UserAgent))
	}
	if cfg.Sources.Wikipedia {
		results = append(results, CheckSource(ctx, "Wikipedia", cfg.Sources.WikipediaBaseURL, cfg.Sources.UserAgent))
	}

	return results
}
