package model

import (
	"cmp"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Streak Types
// -----------------------------------------------------------------------------

// BattingLine holds season batting totals for a player.
type BattingLine struct {
	GamesPlayed int     `json:"games_played"`
	AtBats      int     `json:"at_bats"`
	Hits        int     `json:"hits"`
	Walks       int     `json:"walks"`
	Singles     int     `json:"singles"`
	Doubles     int     `json:"doubles"`
	Triples     int     `json:"triples"`
	HomeRuns    int     `json:"home_runs"`
	Average     float64 `json:"avg"`
}

// AverageString formats the batting average the way box scores do (".312").
func (b BattingLine) AverageString() string {
	s := strconv.FormatFloat(b.Average, 'f', 3, 64)
	if len(s) > 1 && s[0] == '0' {
		return s[1:]
	}
	return s
}

// PlayerStreakRecord is one player's hit-streak line for the current season.
// Records are immutable once fetched.
type PlayerStreakRecord struct {
	PlayerID      int         `json:"player_id"`
	Name          string      `json:"name"`
	Team          string      `json:"team"`     // Team abbreviation (e.g., "NYY")
	Position      string      `json:"position"` // Position abbreviation (e.g., "SS")
	CurrentStreak int         `json:"current_streak"`
	SeasonBest    int         `json:"season_best"`    // Longest streak this season
	GamesWithHit  int         `json:"games_with_hit"` // Games with at least one hit
	Last15        int         `json:"last_15"`        // Games with a hit among the last 15 played
	GamesLogged   int         `json:"games_logged"`   // Games in the game log
	Batting       BattingLine `json:"batting"`
}

// ProfileURL returns the player's mlb.com profile page.
func (r PlayerStreakRecord) ProfileURL() string {
	return "https://www.mlb.com/player/" + strconv.Itoa(r.PlayerID)
}

// SortRecords orders records for display: current streak desc, last-15 desc,
// season best desc, then name.
func SortRecords(records []PlayerStreakRecord) {
	slices.SortStableFunc(records, func(a, b PlayerStreakRecord) int {
		if c := cmp.Compare(b.CurrentStreak, a.CurrentStreak); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Last15, a.Last15); c != 0 {
			return c
		}
		if c := cmp.Compare(b.SeasonBest, a.SeasonBest); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// -----------------------------------------------------------------------------
// Snapshot Types
// -----------------------------------------------------------------------------

// Snapshot sources.
const (
	SourceAPI   = "api"   // Fetched from the MLB Stats API
	SourceStore = "store" // Restored from persistent storage
)

// Snapshot is an immutable, timestamped set of streak records from one fetch cycle.
// The Records slice is shared between readers and must not be modified.
type Snapshot struct {
	ID        uuid.UUID            `json:"id"`
	FetchedAt time.Time            `json:"fetched_at"`
	Source    string               `json:"source"`
	Records   []PlayerStreakRecord `json:"records"`
}

// NewSnapshot wraps records into a snapshot stamped with fetchedAt.
func NewSnapshot(records []PlayerStreakRecord, fetchedAt time.Time) Snapshot {
	return Snapshot{
		ID:        uuid.New(),
		FetchedAt: fetchedAt.UTC(),
		Source:    SourceAPI,
		Records:   records,
	}
}

// Age returns how old the snapshot is at now.
func (s Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// Leader returns the record with the longest current streak.
func (s Snapshot) Leader() (PlayerStreakRecord, bool) {
	if len(s.Records) == 0 {
		return PlayerStreakRecord{}, false
	}
	return s.Records[0], true
}

// Info returns the snapshot header without records.
func (s Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:        s.ID,
		FetchedAt: s.FetchedAt,
		Source:    s.Source,
		Count:     len(s.Records),
	}
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	ID        uuid.UUID `json:"id"`
	FetchedAt time.Time `json:"fetched_at"`
	Source    string    `json:"source"`
	Count     int       `json:"count"`
}

// -----------------------------------------------------------------------------
// Reference Types
// -----------------------------------------------------------------------------

// HistoricalStreak is a famous hit streak from MLB history.
type HistoricalStreak struct {
	Player string `json:"player" yaml:"player"`
	Team   string `json:"team" yaml:"team"`
	Year   int    `json:"year" yaml:"year"`
	Streak int    `json:"streak" yaml:"streak"`
}

// Team is an MLB club with its display colour.
type Team struct {
	Abbreviation string `json:"abbreviation" yaml:"abbreviation"`
	Name         string `json:"name" yaml:"name"`
	Color        string `json:"color" yaml:"color"` // Hex colour (e.g., "#0C2340")
}
