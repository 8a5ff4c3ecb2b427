// Package cache implements the Snapshot Cache.
//
// The cache holds at most one current snapshot of streak records and decides,
// per request, whether to serve it or fetch a new one:
//   - A snapshot younger than the caller's max age is served with no I/O
//   - Invalidate forces the next request to fetch regardless of age
//   - Concurrent requests share a single in-flight fetch
//   - A failed fetch serves the previous snapshot; with none, callers get
//     ErrNoDataAvailable
package cache
