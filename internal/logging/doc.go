// Package logging assembles structured slog loggers and formatting helpers used
// across dropwatch components.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes standardized attribute keys so run code can tag log
// lines with run IDs, source names, and tracked subjects. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup to ensure new
// components emit data with the same shape and routing guarantees as the rest
// of the system.
package logging
