package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rickgao/hitstreak/internal/cache"
	"github.com/rickgao/hitstreak/internal/filter"
	"github.com/rickgao/hitstreak/internal/history"
	"github.com/rickgao/hitstreak/internal/model"
	"github.com/rickgao/hitstreak/internal/version"
)

const (
	defaultSnapshotLimit = 20
	maxSnapshotLimit     = 100
)

// streakRow is a record as rendered, with display helpers.
type streakRow struct {
	Rank int `json:"rank"`
	model.PlayerStreakRecord
	AverageDisplay string `json:"avg_display"`
	ProfileURL     string `json:"profile_url"`
	TeamColor      string `json:"team_color"`
}

func toRows(records []model.PlayerStreakRecord) []streakRow {
	rows := make([]streakRow, len(records))
	for i, r := range records {
		rows[i] = streakRow{
			Rank:               i + 1,
			PlayerStreakRecord: r,
			AverageDisplay:     r.Batting.AverageString(),
			ProfileURL:         r.ProfileURL(),
			TeamColor:          history.Color(r.Team),
		}
	}
	return rows
}

// snapshotMeta describes the snapshot a response was rendered from.
type snapshotMeta struct {
	model.SnapshotInfo
	AgeSeconds int64 `json:"age_seconds"`
}

func (s *Server) meta(snap model.Snapshot) snapshotMeta {
	return snapshotMeta{
		SnapshotInfo: snap.Info(),
		AgeSeconds:   int64(snap.Age(s.clock.Now()) / time.Second),
	}
}

// snapshotStatus maps a GetSnapshot error to a status code and message.
func snapshotStatus(err error) (int, string) {
	switch {
	case errors.Is(err, cache.ErrNoDataAvailable):
		return http.StatusServiceUnavailable, "Streak data is not available yet. Try again shortly."
	case errors.Is(err, cache.ErrClosed):
		return http.StatusServiceUnavailable, "The server is shutting down."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "The request was cancelled before data was ready."
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (s *Server) snapshotError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := snapshotStatus(err)
	s.logger.Warn("snapshot unavailable", "path", r.URL.Path, "error", err)
	jsonError(w, status, msg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := struct {
		Status     string            `json:"status"`
		Version    version.BuildInfo `json:"version"`
		Components map[string]any    `json:"components"`
	}{
		Status:     "healthy",
		Version:    version.Info(),
		Components: make(map[string]any),
	}

	// Health never triggers a fetch.
	if snap, ok := s.cache.Current(); ok {
		health.Components["snapshot"] = s.meta(snap)
	} else {
		health.Status = "degraded"
		health.Components["snapshot"] = "empty"
	}

	if s.live != nil {
		health.Components["live"] = map[string]int{"clients": s.live.Clients()}
	}

	writeJSON(w, http.StatusOK, health)
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	opts, err := filter.ParseQuery(r.URL.Query())
	if err != nil {
		var verr *filter.ValidationError
		if errors.As(err, &verr) {
			jsonValidationError(w, verr.Fields)
			return
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := s.cache.GetSnapshot(r.Context(), s.cfg.MaxAge)
	if err != nil {
		s.snapshotError(w, r, err)
		return
	}

	records := filter.Apply(snap.Records, opts)
	jsonSuccess(w, APIResponse{
		Data: toRows(records),
		Meta: struct {
			Snapshot snapshotMeta   `json:"snapshot"`
			Total    int            `json:"total"`
			Count    int            `json:"count"`
			Filters  filter.Options `json:"filters"`
		}{
			Snapshot: s.meta(snap),
			Total:    len(snap.Records),
			Count:    len(records),
			Filters:  opts,
		},
	})
}

// leaderComparison pairs the current leader with the historical comparison.
type leaderComparison struct {
	Leader     model.PlayerStreakRecord `json:"leader"`
	Comparison history.Comparison       `json:"comparison"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Famous  []model.HistoricalStreak `json:"famous"`
		Record  model.HistoricalStreak   `json:"record"`
		Leader  *leaderComparison        `json:"leader,omitempty"`
		Compare *history.Comparison      `json:"compare,omitempty"`
	}{
		Famous: history.Famous(),
		Record: history.Record(),
	}

	if raw := r.URL.Query().Get("streak"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			jsonValidationError(w, map[string]string{"streak": "streak must be a non-negative whole number"})
			return
		}
		c := history.Compare(n)
		data.Compare = &c
	}

	// History is bundled, so it is served even without streak data.
	snap, err := s.cache.GetSnapshot(r.Context(), s.cfg.MaxAge)
	if err != nil {
		s.logger.Warn("history served without leader", "error", err)
	} else if leader, ok := snap.Leader(); ok {
		data.Leader = &leaderComparison{
			Leader:     leader,
			Comparison: history.Compare(leader.CurrentStreak),
		}
	}

	jsonSuccess(w, APIResponse{Data: data})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, APIResponse{Data: history.Teams()})
}

func (s *Server) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		jsonError(w, http.StatusNotFound, "Snapshot history is disabled.")
		return
	}

	limit := defaultSnapshotLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSnapshotLimit {
			jsonValidationError(w, map[string]string{
				"limit": "limit must be between 1 and " + strconv.Itoa(maxSnapshotLimit),
			})
			return
		}
		limit = n
	}

	infos, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to list snapshots", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if infos == nil {
		infos = []model.SnapshotInfo{}
	}

	jsonSuccess(w, APIResponse{
		Data: infos,
		Meta: map[string]int{"count": len(infos), "limit": limit},
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	prev, _ := s.cache.Current()

	snap, err := s.cache.Refresh(r.Context())
	if err != nil {
		s.snapshotError(w, r, err)
		return
	}

	// A failed fetch serves the previous snapshot.
	refreshed := snap.ID != prev.ID
	msg := "Snapshot refreshed."
	if !refreshed {
		msg = "Refresh failed; serving the previous snapshot."
	}

	s.logger.Info("manual refresh", "snapshot_id", snap.ID, "refreshed", refreshed)
	jsonSuccess(w, APIResponse{
		Message: msg,
		Data:    s.meta(snap),
		Meta:    map[string]bool{"refreshed": refreshed},
	})
}
