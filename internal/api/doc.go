// Package api provides the MLB Stats API client.
//
// REST endpoint:
//   - https://statsapi.mlb.com/api/v1
//
// Endpoints used:
//   - GET /stats?stats=season&group=hitting&sportId=1 (season hitting lines, all players)
//   - GET /people/{id}/stats?stats=gameLog&group=hitting (one player's game log)
//
// The API is public and unauthenticated.
package api
