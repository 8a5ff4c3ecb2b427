// Package history provides bundled MLB reference data: famous hit streaks and
// team colours. The data is parsed once and never modified.
package history

import (
	_ "embed"
	"fmt"
	"math"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rickgao/hitstreak/internal/model"
)

// DefaultColor is used for teams missing from the reference data.
const DefaultColor = "#CCCCCC"

//go:embed reference.yaml
var referenceYAML []byte

type reference struct {
	Streaks []model.HistoricalStreak `yaml:"streaks"`
	Teams   []model.Team             `yaml:"teams"`
}

var load = sync.OnceValues(func() (*reference, error) {
	return parse(referenceYAML)
})

func parse(data []byte) (*reference, error) {
	var ref reference
	if err := yaml.Unmarshal(data, &ref); err != nil {
		return nil, fmt.Errorf("parse reference data: %w", err)
	}
	if len(ref.Streaks) == 0 {
		return nil, fmt.Errorf("parse reference data: no streaks")
	}
	return &ref, nil
}

func mustLoad() *reference {
	ref, err := load()
	if err != nil {
		panic(err)
	}
	return ref
}

// Famous returns the famous streaks, longest first. Callers must not modify the slice.
func Famous() []model.HistoricalStreak {
	return mustLoad().Streaks
}

// Record returns the longest hit streak in MLB history.
func Record() model.HistoricalStreak {
	return mustLoad().Streaks[0]
}

// Teams returns all teams. Callers must not modify the slice.
func Teams() []model.Team {
	return mustLoad().Teams
}

// Team looks up a team by abbreviation.
func Team(abbr string) (model.Team, bool) {
	for _, t := range mustLoad().Teams {
		if t.Abbreviation == abbr {
			return t, true
		}
	}
	return model.Team{}, false
}

// Color returns the team's colour, or DefaultColor.
func Color(abbr string) string {
	if t, ok := Team(abbr); ok {
		return t.Color
	}
	return DefaultColor
}

// Comparison relates a current streak to the famous list.
type Comparison struct {
	Streak       int     `json:"streak"`
	Record       int     `json:"record"`
	PctOfRecord  float64 `json:"pct_of_record"` // 0-100, one decimal
	GamesToTie   int     `json:"games_to_tie"`  // 0 once tied or passed
	Rank         int     `json:"rank"`          // Position it would take in the famous list (1-based)
	WouldQualify bool    `json:"would_qualify"` // Long enough to enter the famous list
}

// Compare relates streak to the record and the famous list.
func Compare(streak int) Comparison {
	famous := Famous()
	record := famous[0].Streak

	rank := 1
	for _, f := range famous {
		if f.Streak > streak {
			rank++
		}
	}

	return Comparison{
		Streak:       streak,
		Record:       record,
		PctOfRecord:  math.Round(float64(streak)/float64(record)*1000) / 10,
		GamesToTie:   max(0, record-streak),
		Rank:         rank,
		WouldQualify: rank <= len(famous),
	}
}
