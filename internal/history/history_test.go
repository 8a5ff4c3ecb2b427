package history

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rickgao/hitstreak/internal/model"
)

func TestFamous(t *testing.T) {
	famous := Famous()
	if len(famous) != 10 {
		t.Fatalf("len(Famous()) = %d, want 10", len(famous))
	}

	sorted := slices.IsSortedFunc(famous, func(a, b model.HistoricalStreak) int {
		return b.Streak - a.Streak
	})
	if !sorted {
		t.Error("Famous() is not sorted longest first")
	}

	rec := Record()
	if rec.Player != "Joe DiMaggio" || rec.Streak != 56 || rec.Year != 1941 {
		t.Errorf("Record() = %+v, want Joe DiMaggio 56 (1941)", rec)
	}
}

func TestTeams(t *testing.T) {
	if got := len(Teams()); got != 30 {
		t.Errorf("len(Teams()) = %d, want 30", got)
	}

	team, ok := Team("SEA")
	if !ok {
		t.Fatal("Team(SEA) not found")
	}
	if team.Name != "Seattle Mariners" || team.Color != "#0C2C56" {
		t.Errorf("Team(SEA) = %+v", team)
	}

	if _, ok := Team("XXX"); ok {
		t.Error("Team(XXX) found, want missing")
	}
}

func TestColor(t *testing.T) {
	tests := []struct {
		abbr string
		want string
	}{
		{"NYY", "#0C2340"},
		{"LAD", "#005A9C"},
		{"", DefaultColor},
		{"BSN", DefaultColor},
	}

	for _, tt := range tests {
		if got := Color(tt.abbr); got != tt.want {
			t.Errorf("Color(%q) = %q, want %q", tt.abbr, got, tt.want)
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		streak int
		want   Comparison
	}{
		{
			streak: 0,
			want:   Comparison{Streak: 0, Record: 56, PctOfRecord: 0, GamesToTie: 56, Rank: 11},
		},
		{
			streak: 28,
			want:   Comparison{Streak: 28, Record: 56, PctOfRecord: 50, GamesToTie: 28, Rank: 11},
		},
		{
			streak: 35,
			want:   Comparison{Streak: 35, Record: 56, PctOfRecord: 62.5, GamesToTie: 21, Rank: 10, WouldQualify: true},
		},
		{
			streak: 44,
			want:   Comparison{Streak: 44, Record: 56, PctOfRecord: 78.6, GamesToTie: 12, Rank: 2, WouldQualify: true},
		},
		{
			streak: 57,
			want:   Comparison{Streak: 57, Record: 56, PctOfRecord: 101.8, GamesToTie: 0, Rank: 1, WouldQualify: true},
		},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Compare(tt.streak)); diff != "" {
			t.Errorf("Compare(%d) mismatch (-want +got):\n%s", tt.streak, diff)
		}
	}
}

func TestParse(t *testing.T) {
	if _, err := parse([]byte("streaks: []\n")); err == nil {
		t.Error("parse() accepted reference data with no streaks")
	}
	if _, err := parse([]byte("streaks: [")); err == nil {
		t.Error("parse() accepted invalid yaml")
	}
}
