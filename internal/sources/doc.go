// Package sources scrapes the public release calendars. Each source fetches
// its page, flattens the document into a marked token stream, and Extract
// scans that stream for the window between the target date marker and the
// marker one week later, collecting artist/title mentions along the way.
package sources
