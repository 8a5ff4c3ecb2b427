package filter

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/rickgao/hitstreak/internal/model"
)

func testRecords() []model.PlayerStreakRecord {
	return []model.PlayerStreakRecord{
		{PlayerID: 1, Name: "José Ramírez", Team: "CLE", CurrentStreak: 14, SeasonBest: 14, Last15: 13, Batting: model.BattingLine{Average: .301}},
		{PlayerID: 2, Name: "Aaron Judge", Team: "NYY", CurrentStreak: 9, SeasonBest: 19, Last15: 12, Batting: model.BattingLine{Average: .331}},
		{PlayerID: 3, Name: "Steven Kwan", Team: "CLE", CurrentStreak: 6, SeasonBest: 11, Last15: 14, Batting: model.BattingLine{Average: .292}},
		{PlayerID: 4, Name: "Luis Arraez", Team: "SD", CurrentStreak: 2, SeasonBest: 9, Last15: 9, Batting: model.BattingLine{Average: .305}},
		{PlayerID: 5, Name: "Juan Soto", Team: "NYM", CurrentStreak: 0, SeasonBest: 8, Last15: 7, Batting: model.BattingLine{Average: .268}},
	}
}

func ids(records []model.PlayerStreakRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.PlayerID
	}
	return out
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []int
	}{
		{"zero value keeps all", Options{}, []int{1, 2, 3, 4, 5}},
		{"min streak", Options{MinStreak: 6}, []int{1, 2, 3}},
		{"min last 15", Options{MinLast15: 12}, []int{1, 2, 3}},
		{"both minimums", Options{MinStreak: 7, MinLast15: 13}, []int{1}},
		{"search is case insensitive", Options{Query: "JUDGE"}, []int{2}},
		{"search ignores accents", Options{Query: "jose ram"}, []int{1}},
		{"accented search matches", Options{Query: "Ramírez"}, []int{1}},
		{"search substring", Options{Query: "ju"}, []int{2, 5}},
		{"watch list", Options{Players: []string{"juan soto", "Steven Kwan"}}, []int{3, 5}},
		{"search beats watch list", Options{Query: "arraez", Players: []string{"Juan Soto"}}, []int{4}},
		{"team", Options{Team: "cle"}, []int{1, 3}},
		{"sort last 15", Options{Sort: SortLast15}, []int{3, 1, 2, 4, 5}},
		{"sort best", Options{Sort: SortBest}, []int{2, 1, 3, 4, 5}},
		{"sort average", Options{Sort: SortAverage}, []int{2, 4, 1, 3, 5}},
		{"limit", Options{Limit: 2}, []int{1, 2}},
		{"limit after sort", Options{Sort: SortLast15, Limit: 1}, []int{3}},
		{"no match", Options{Query: "ohtani"}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Apply(testRecords(), tt.opts))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestApply_DoesNotModifyInput(t *testing.T) {
	records := testRecords()
	Apply(records, Options{Sort: SortAverage, Limit: 1})

	if diff := cmp.Diff(testRecords(), records); diff != "" {
		t.Errorf("input modified (-want +got):\n%s", diff)
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Aaron Judge", "aaron judge"},
		{"  José Ramírez ", "jose ramirez"},
		{"Ronald Acuña Jr.", "ronald acuna jr."},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseQuery(t *testing.T) {
	q := url.Values{
		"min_streak": {"5"},
		"min_last15": {"10"},
		"q":          {" judge "},
		"player":     {"Juan Soto", " ", "Steven Kwan"},
		"team":       {"nyy"},
		"sort":       {"avg"},
		"limit":      {"20"},
	}

	got, err := ParseQuery(q)
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}

	want := Options{
		MinStreak: 5,
		MinLast15: 10,
		Query:     "judge",
		Players:   []string{"Juan Soto", "Steven Kwan"},
		Team:      "NYY",
		Sort:      SortAverage,
		Limit:     20,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseQuery() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQuery_Empty(t *testing.T) {
	got, err := ParseQuery(url.Values{})
	if err != nil {
		t.Fatalf("ParseQuery failed: %v", err)
	}
	if diff := cmp.Diff(Options{}, got); diff != "" {
		t.Errorf("ParseQuery() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseQuery_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		field string
	}{
		{"not a number", url.Values{"min_streak": {"abc"}}, "min_streak"},
		{"negative streak", url.Values{"min_streak": {"-1"}}, "min_streak"},
		{"streak too high", url.Values{"min_streak": {"61"}}, "min_streak"},
		{"last 15 too high", url.Values{"min_last15": {"16"}}, "min_last15"},
		{"limit too high", url.Values{"limit": {"501"}}, "limit"},
		{"bad sort", url.Values{"sort": {"name"}}, "sort"},
		{"bad team", url.Values{"team": {"N1"}}, "team"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseQuery(tt.query)
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error = %T, want *ValidationError", err)
			}
			if _, ok := verr.Fields[tt.field]; !ok {
				t.Errorf("Fields = %v, want key %q", verr.Fields, tt.field)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{
		"limit":      "limit must be at most 500",
		"min_streak": "min_streak must be at least 0",
	}}

	want := "invalid filter: limit: limit must be at most 500; min_streak: min_streak must be at least 0"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
