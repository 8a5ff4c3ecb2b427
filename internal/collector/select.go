package collector

import (
	"cmp"
	"slices"

	"github.com/rickgao/hitstreak/internal/model"
)

// selectPlayers picks the players whose game logs will be fetched.
func (c *Collector) selectPlayers(candidates []model.PlayerStreakRecord) []model.PlayerStreakRecord {
	if c.cfg.Selection == SelectMixed {
		return selectMixed(candidates, c.cfg.PlayerLimit, c.rand.Perm)
	}
	return selectByHits(candidates, c.cfg.PlayerLimit)
}

// selectByHits returns the top n candidates by season hits.
func selectByHits(candidates []model.PlayerStreakRecord, n int) []model.PlayerStreakRecord {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, byHits)
	return sorted[:min(n, len(sorted))]
}

// selectMixed returns 60% of n by hits, 30% by average among the rest,
// and 10% at random from what remains. perm must return a permutation of [0, k).
func selectMixed(candidates []model.PlayerStreakRecord, n int, perm func(int) []int) []model.PlayerStreakRecord {
	nHits := n * 6 / 10
	nAvg := n * 3 / 10
	nRandom := n / 10

	rest := slices.Clone(candidates)
	slices.SortStableFunc(rest, byHits)
	take := min(nHits, len(rest))
	selected := slices.Clone(rest[:take])
	rest = rest[take:]

	slices.SortStableFunc(rest, func(a, b model.PlayerStreakRecord) int {
		return cmp.Compare(b.Batting.Average, a.Batting.Average)
	})
	take = min(nAvg, len(rest))
	selected = append(selected, rest[:take]...)
	rest = rest[take:]

	if len(rest) > 0 && nRandom > 0 {
		for _, i := range perm(len(rest))[:min(nRandom, len(rest))] {
			selected = append(selected, rest[i])
		}
	}

	return selected
}

func byHits(a, b model.PlayerStreakRecord) int {
	return cmp.Compare(b.Batting.Hits, a.Batting.Hits)
}
