// Package collector implements the streak fetcher behind the snapshot cache.
//
// One fetch cycle:
//   - Reads season hitting lines for every player
//   - Selects the players worth evaluating (top hitters, optionally mixed
//     with high-average and random picks)
//   - Fetches each selected player's game log with bounded concurrency
//   - Computes current streak, season best, and last-15 from the log
package collector
