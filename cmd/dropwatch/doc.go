// Command dropwatch aggregates new-release announcements for a target date
// and monitors tracked artists for fresh drops. Subcommands cover the
// one-shot digest run, the continuous monitor loop, state inspection and
// portability, configuration utilities, and a notification test.
package main
