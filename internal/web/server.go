package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/rickgao/hitstreak/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// DefaultMaxAge is used when Config.MaxAge is zero.
const DefaultMaxAge = time.Hour

// SnapshotSource is the cache as seen by the render surface.
type SnapshotSource interface {
	GetSnapshot(ctx context.Context, maxAge time.Duration) (model.Snapshot, error)
	Refresh(ctx context.Context) (model.Snapshot, error)
	Current() (model.Snapshot, bool)
}

// SnapshotLister lists stored snapshots.
type SnapshotLister interface {
	List(ctx context.Context, limit int) ([]model.SnapshotInfo, error)
}

// LiveHub serves WebSocket clients.
type LiveHub interface {
	http.Handler
	Clients() int
}

// Config holds server settings.
type Config struct {
	MaxAge         time.Duration
	AllowedOrigins []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStore enables the snapshot history endpoint.
func WithStore(lister SnapshotLister) Option {
	return func(s *Server) {
		s.store = lister
	}
}

// WithLive enables the /ws endpoint.
func WithLive(hub LiveHub) Option {
	return func(s *Server) {
		s.live = hub
	}
}

// WithClock sets the clock used to report snapshot age.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) {
		s.clock = clock
	}
}

// Server renders streak snapshots over HTTP.
type Server struct {
	cfg    Config
	cache  SnapshotSource
	store  SnapshotLister
	live   LiveHub
	logger *slog.Logger
	clock  clockwork.Clock
	page   *template.Template
}

// NewServer creates a server reading snapshots from cache.
func NewServer(cfg Config, cache SnapshotSource, opts ...Option) *Server {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultMaxAge
	}

	s := &Server{
		cfg:    cfg,
		cache:  cache,
		logger: slog.Default(),
		clock:  clockwork.NewRealClock(),
		page:   template.Must(template.New("index.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/index.html")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/streaks", s.handleStreaks)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/teams", s.handleTeams)
	mux.HandleFunc("GET /api/snapshots", s.handleSnapshots)
	mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	if s.live != nil {
		mux.Handle("GET /ws", s.live)
	}

	chain := NewChain(Recover(s.logger), Logging(s.logger))
	if len(s.cfg.AllowedOrigins) > 0 {
		chain.Use(CORS(s.cfg.AllowedOrigins))
	}
	return chain.Then(mux)
}
