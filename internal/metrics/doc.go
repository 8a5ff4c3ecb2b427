// Package metrics provides OpenTelemetry instruments for monitoring.
//
// Key metrics:
//   - Snapshot cache hits, misses, and stale serves
//   - Fetch cycle counts, failures, and durations
//   - Connected live-update clients
package metrics
