package api

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rickgao/hitstreak/internal/model"
)

// GameResult is one game from a player's log, reduced to what streaks need.
type GameResult struct {
	Date   time.Time
	GamePk int
	AtBats int
	Hits   int
}

// HadHit reports whether the player recorded at least one hit.
func (g GameResult) HadHit() bool {
	return g.Hits > 0
}

// Splits returns the splits of the first stats block, or nil.
func (r *StatsResponse[S]) Splits() []S {
	if r == nil || len(r.Stats) == 0 {
		return nil
	}
	return r.Stats[0].Splits
}

// ParseAverage converts a batting average string to a float.
// ".312" -> 0.312, "1.000" -> 1.0. Returns 0 for empty or invalid input.
func ParseAverage(avg string) float64 {
	avg = strings.TrimSpace(avg)
	if avg == "" || avg == ".---" {
		return 0
	}

	f, err := strconv.ParseFloat(avg, 64)
	if err != nil {
		return 0
	}
	return f
}

// ToRecord converts a season split to a streak record with no streak data yet.
func (s *SeasonSplit) ToRecord() (model.PlayerStreakRecord, error) {
	if s.Player.ID == 0 {
		return model.PlayerStreakRecord{}, fmt.Errorf("%w: season split without player id", ErrMalformedResponse)
	}

	st := s.Stat
	singles := st.Hits - (st.Doubles + st.Triples + st.HomeRuns)
	if singles < 0 {
		singles = 0
	}

	return model.PlayerStreakRecord{
		PlayerID: s.Player.ID,
		Name:     s.Player.FullName,
		Team:     s.Team.Abbreviation,
		Position: s.Position.Abbreviation,
		Batting: model.BattingLine{
			GamesPlayed: st.GamesPlayed,
			AtBats:      st.AtBats,
			Hits:        st.Hits,
			Walks:       st.BaseOnBalls,
			Singles:     singles,
			Doubles:     st.Doubles,
			Triples:     st.Triples,
			HomeRuns:    st.HomeRuns,
			Average:     ParseAverage(st.Avg),
		},
	}, nil
}

// GameResults converts a game log to results sorted by date (oldest first).
// An entry with an unparseable date fails the whole log.
func GameResults(r *GameLogResponse) ([]GameResult, error) {
	splits := r.Splits()
	games := make([]GameResult, 0, len(splits))

	for _, s := range splits {
		d, err := time.Parse(time.DateOnly, s.Date)
		if err != nil {
			return nil, fmt.Errorf("%w: game date %q", ErrMalformedResponse, s.Date)
		}
		games = append(games, GameResult{
			Date:   d,
			GamePk: s.Game.GamePk,
			AtBats: s.Stat.AtBats,
			Hits:   s.Stat.Hits,
		})
	}

	// Doubleheaders share a date; gamePk keeps them in schedule order.
	slices.SortStableFunc(games, func(a, b GameResult) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.GamePk, b.GamePk)
	})

	return games, nil
}
