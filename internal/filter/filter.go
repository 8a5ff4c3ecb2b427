// Package filter narrows a snapshot's records for display.
//
// Filters mirror the dashboard controls: a minimum current streak, a minimum
// number of hit games among the last 15, a free-text name search, a watch
// list of player names, a team, a sort order and a row limit. A name search
// takes precedence over the watch list.
package filter

import (
	"cmp"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rickgao/hitstreak/internal/model"
)

// Sort orders.
const (
	SortStreak  = "streak" // Display order of the snapshot
	SortLast15  = "last15"
	SortBest    = "best"
	SortAverage = "avg"
)

// Options selects and orders records. The zero value keeps every record.
type Options struct {
	MinStreak int      `json:"min_streak" validate:"min=0,max=60"`
	MinLast15 int      `json:"min_last15" validate:"min=0,max=15"`
	Query     string   `json:"q" validate:"max=64"`
	Players   []string `json:"player" validate:"max=25,dive,max=64"`
	Team      string   `json:"team" validate:"omitempty,alpha,min=2,max=3"`
	Sort      string   `json:"sort" validate:"omitempty,oneof=streak last15 best avg"`
	Limit     int      `json:"limit" validate:"min=0,max=500"`
}

// ValidationError lists invalid options keyed by query parameter.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "invalid filter: " + strings.Join(parts, "; ")
}

var (
	validate       = validator.New()
	reflectOptions = reflect.TypeOf(Options{})
)

// Validate checks option ranges.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate filter: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fieldName(fe.StructField())
		fields[name] = messageFor(name, fe)
	}
	return &ValidationError{Fields: fields}
}

// fieldName maps a struct field to its query parameter name.
func fieldName(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	f, ok := reflectOptions.FieldByName(field)
	if !ok {
		return strings.ToLower(field)
	}
	return strings.Split(f.Tag.Get("json"), ",")[0]
}

func messageFor(name string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	case "alpha":
		return fmt.Sprintf("%s must be a team abbreviation", name)
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}

// ParseQuery reads options from URL query parameters and validates them.
// Numeric parameters that fail to parse are reported as validation errors.
func ParseQuery(q url.Values) (Options, error) {
	opts := Options{
		Query: strings.TrimSpace(q.Get("q")),
		Team:  strings.ToUpper(strings.TrimSpace(q.Get("team"))),
		Sort:  q.Get("sort"),
	}
	for _, p := range q["player"] {
		if p = strings.TrimSpace(p); p != "" {
			opts.Players = append(opts.Players, p)
		}
	}

	fields := map[string]string{}
	ints := []struct {
		key string
		dst *int
	}{
		{"min_streak", &opts.MinStreak},
		{"min_last15", &opts.MinLast15},
		{"limit", &opts.Limit},
	}
	for _, p := range ints {
		raw := q.Get(p.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields[p.key] = p.key + " must be a whole number"
			continue
		}
		*p.dst = n
	}
	if len(fields) > 0 {
		return Options{}, &ValidationError{Fields: fields}
	}

	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Apply returns the records that pass opts, in the requested order.
// records is not modified.
func Apply(records []model.PlayerStreakRecord, opts Options) []model.PlayerStreakRecord {
	query := Fold(opts.Query)
	var watch map[string]bool
	if query == "" && len(opts.Players) > 0 {
		watch = make(map[string]bool, len(opts.Players))
		for _, p := range opts.Players {
			watch[Fold(p)] = true
		}
	}

	out := make([]model.PlayerStreakRecord, 0, len(records))
	for _, r := range records {
		if r.CurrentStreak < opts.MinStreak || r.Last15 < opts.MinLast15 {
			continue
		}
		if opts.Team != "" && !strings.EqualFold(r.Team, opts.Team) {
			continue
		}
		switch {
		case query != "":
			if !strings.Contains(Fold(r.Name), query) {
				continue
			}
		case watch != nil:
			if !watch[Fold(r.Name)] {
				continue
			}
		}
		out = append(out, r)
	}

	sortRecords(out, opts.Sort)

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

func sortRecords(records []model.PlayerStreakRecord, order string) {
	var key func(model.PlayerStreakRecord) float64
	switch order {
	case SortLast15:
		key = func(r model.PlayerStreakRecord) float64 { return float64(r.Last15) }
	case SortBest:
		key = func(r model.PlayerStreakRecord) float64 { return float64(r.SeasonBest) }
	case SortAverage:
		key = func(r model.PlayerStreakRecord) float64 { return r.Batting.Average }
	default:
		return
	}
	// Stable, so ties keep snapshot order.
	slices.SortStableFunc(records, func(a, b model.PlayerStreakRecord) int {
		return cmp.Compare(key(b), key(a))
	})
}

// Fold normalises a name for matching: accents are stripped and case is
// folded, so "josé" matches "Jose".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, cases.Fold())
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
