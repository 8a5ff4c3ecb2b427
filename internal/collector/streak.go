package collector

import "github.com/rickgao/hitstreak/internal/api"

// recentWindow is the number of trailing games counted by Last15.
const recentWindow = 15

// Streaks summarizes a player's game log.
type Streaks struct {
	Current      int // Consecutive hit games ending with the latest game
	Best         int // Longest run of hit games
	GamesWithHit int
	Last15       int // Hit games among the last 15 logged
	Games        int // Games in the log
}

// ComputeStreaks walks a date-sorted game log.
// A game with no at-bats and no hits (walks, sacrifices, pinch running) neither
// extends nor breaks a streak.
func ComputeStreaks(games []api.GameResult) Streaks {
	var s Streaks
	s.Games = len(games)

	run := 0
	for _, g := range games {
		switch {
		case g.HadHit():
			run++
			s.GamesWithHit++
			s.Best = max(s.Best, run)
		case g.AtBats == 0:
			// skipped
		default:
			run = 0
		}
	}
	s.Current = run

	recent := games[max(0, len(games)-recentWindow):]
	for _, g := range recent {
		if g.HadHit() {
			s.Last15++
		}
	}

	return s
}
