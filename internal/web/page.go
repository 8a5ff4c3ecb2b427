package web

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/rickgao/hitstreak/internal/filter"
	"github.com/rickgao/hitstreak/internal/history"
	"github.com/rickgao/hitstreak/internal/model"
)

var templateFuncs = template.FuncMap{
	"age": func(d time.Duration) string {
		return d.Round(time.Second).String()
	},
	"pct": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 1, 64) + "%"
	},
}

// pageData is the index template's input.
type pageData struct {
	Filters  filter.Options
	Rows     []streakRow
	Total    int
	Snapshot model.SnapshotInfo
	Age      time.Duration
	Leader   *leaderComparison
	Famous   []model.HistoricalStreak
	Error    string
	Live     bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Famous: history.Famous(),
		Live:   s.live != nil,
	}
	status := http.StatusOK

	opts, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		var verr *filter.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		} else {
			status = http.StatusBadRequest
		}
		data.Error = err.Error()
		s.render(w, status, data)
		return
	}
	data.Filters = opts

	snap, err := s.cache.GetSnapshot(r.Context(), s.cfg.MaxAge)
	if err != nil {
		s.logger.Warn("snapshot unavailable", "path", r.URL.Path, "error", err)
		status, data.Error = snapshotStatus(err)
		s.render(w, status, data)
		return
	}

	data.Rows = toRows(filter.Apply(snap.Records, opts))
	data.Total = len(snap.Records)
	data.Snapshot = snap.Info()
	data.Age = snap.Age(s.clock.Now())
	if leader, ok := snap.Leader(); ok {
		data.Leader = &leaderComparison{
			Leader:     leader,
			Comparison: history.Compare(leader.CurrentStreak),
		}
	}

	s.render(w, status, data)
}

// render executes the page into a buffer so a template error still yields a clean 500.
func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
