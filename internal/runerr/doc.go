// Package runerr defines the shared error taxonomy for digest runs and
// monitor passes.
//
// Key responsibilities:
//   - Sentinel markers that classify failures by where they are handled:
//     per-entry, per-source, per-subject, or fatally for the whole pass.
//   - The Wrap helper that tags failures with component and operation context
//     while preserving errors.Is classification.
//
// Use these markers when wiring new run logic so error handling stays uniform
// across sources, catalog calls, state flushes, and notification delivery.
package runerr
