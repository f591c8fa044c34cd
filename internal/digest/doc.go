// Package digest runs the one-shot aggregation pass: scrape each announcement
// source for the target date, deduplicate mentions, enrich survivors against
// the catalog, and publish the result. Scheduling is the caller's concern;
// RunOnce is a pure entry point over injected collaborators.
package digest
