// Package store persists streak snapshots.
//
// Two backends are provided:
//   - SQLite: a local file cache that lets a restarted dashboard serve the
//     last snapshot before the first fetch completes
//   - PostgreSQL: a shared snapshot history with one row per player record
package store
