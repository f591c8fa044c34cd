// Package trackstore persists monitoring state in SQLite: the tracked
// subject list with per-subject check times, the append-only ledger of
// already-notified releases, and the subject list refresh timestamp. Every
// mutation is durable before the call returns.
package trackstore
