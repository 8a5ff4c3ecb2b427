// Package web is the dashboard's render surface.
//
// It serves an HTML leaderboard page and a JSON API over the snapshot cache.
// Every read goes through the cache's GetSnapshot with the configured max
// age, so the upstream API is only called when the snapshot is stale or has
// been invalidated by the refresh action.
//
// JSON responses share one envelope:
//
//	{"message": "...", "data": ..., "meta": ..., "errors": ...}
package web
