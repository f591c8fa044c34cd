// Package preflight provides readiness checks for the external services and
// filesystem paths dropwatch depends on.
//
// These checks run in two contexts:
//   - The monitor command runs RunAll before entering its loop and logs
//     failures so an operator sees a doomed session immediately.
//   - The CLI "dropwatch status" command renders the individual results.
//
// Each check is gated by configuration: disabled sources are skipped.
package preflight
