// Package catalog talks to the streaming catalog API. The Client handles
// client-credentials auth and the raw endpoints; the Correlator layers the
// resolution rules on top: matching scraped mentions to records inside a
// release window, enriching artist profiles, and listing a tracked subject's
// releases for the monitor.
package catalog
