// Package releases models announced releases and reconciles duplicate
// mentions collected across sources.
//
// Reduce is the first dedup pass: mentions collapse onto normalized
// (artist, title) identity keys with source IDs unioned. MergeByCatalog is
// the second, post-enrichment pass: distinct keys that the catalog resolved
// to the same record merge under the track-count tie-break. After either
// pass no two entities share an identity key.
package releases
