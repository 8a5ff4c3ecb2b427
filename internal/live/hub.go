package live

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/rickgao/hitstreak/internal/metrics"
	"github.com/rickgao/hitstreak/internal/model"
)

// EventSnapshotRefreshed is sent after a new snapshot is stored.
const EventSnapshotRefreshed = "snapshot.refreshed"

// broadcastBuffer is how many events may queue before Publish drops them.
const broadcastBuffer = 16

// Event is the JSON message sent to clients.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Hub tracks connected clients and fans events out to them.
// Run must be running for clients to be served.
type Hub struct {
	logger   *slog.Logger
	metrics  *metrics.Live
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	clients map[*client]struct{} // Owned by Run
	count   atomic.Int64
}

// NewHub creates a hub. allowedOrigins lists the Origin headers accepted on
// upgrade; "*" accepts any origin and an empty list accepts same-host only.
func NewHub(logger *slog.Logger, m *metrics.Live, allowedOrigins []string) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Hub{
		logger:     logger,
		metrics:    m,
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, broadcastBuffer),
		done:       make(chan struct{}),
		clients:    make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin(allowedOrigins),
	}
	return h
}

func (h *Hub) checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	if slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || slices.Contains(allowed, origin) {
			return true
		}
		h.logger.Warn("websocket origin rejected", "origin", origin)
		return false
	}
}

// Run serves registrations and broadcasts until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(ctx, c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Add(1)
			h.metrics.ClientConnected(ctx, 1)
			h.logger.Debug("live client registered", "remote_addr", c.remoteAddr, "clients", len(h.clients))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(ctx, c)
				h.logger.Debug("live client unregistered", "remote_addr", c.remoteAddr, "clients", len(h.clients))
			}

		case msg := <-h.broadcast:
			h.metrics.Broadcast(ctx)
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("live client too slow, disconnecting", "remote_addr", c.remoteAddr)
					h.drop(ctx, c)
				}
			}
		}
	}
}

// drop removes c and closes its send channel. Only called from Run.
func (h *Hub) drop(ctx context.Context, c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
	h.metrics.ClientConnected(ctx, -1)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish announces snap to every client. It never blocks: if the hub is
// stopped or its queue is full the event is dropped.
func (h *Hub) Publish(snap model.Snapshot) {
	msg, err := json.Marshal(Event{Event: EventSnapshotRefreshed, Data: snap.Info()})
	if err != nil {
		h.logger.Error("failed to encode live event", "error", err)
		return
	}

	select {
	case <-h.done:
	case h.broadcast <- msg:
	default:
		h.logger.Warn("live event dropped, queue full", "snapshot_id", snap.ID)
	}
}

// ServeHTTP upgrades the request to a WebSocket and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := newClient(h, conn)
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}
