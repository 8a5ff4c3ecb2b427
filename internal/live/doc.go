// Package live pushes snapshot refresh events to browsers over WebSocket.
//
// A Hub owns the set of connected clients. Its Publish method is registered
// as a cache listener, so every newly stored snapshot produces one
// "snapshot.refreshed" event carrying the snapshot header. Clients are
// expected to refetch /api/streaks when they receive it.
package live
