// Package monitor polls tracked artists for newly appeared releases. Each
// pass services subjects in staleness order, records discoveries in the
// notified ledger before publishing, and stamps every subject's last check so
// a crash never replays a notification. The first pass over a never-checked
// store backfills the ledger silently.
package monitor
