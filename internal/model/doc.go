// Package model defines shared data types used across the hit-streak dashboard.
//
// Conventions:
//   - Player IDs: MLB Stats API person IDs (int)
//   - Team IDs: MLB team abbreviations ("NYY", "LAD")
//   - Snapshot IDs: uuid.UUID assigned when a snapshot is created
//   - Timestamps: time.Time in UTC
package model
