// Package realtime broadcasts post lifecycle events to connected websocket
// clients.
//
// The hub is constructed once in the server wiring and handed to the post
// service as an explicit dependency. There is no package-level singleton;
// anything that publishes holds a *Hub.
package realtime

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/sakif/feedboard/internal/model"
)

// Event actions published on the channel.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Event is the wire shape broadcast to clients. Create and update events
// carry the full post (with the creator's public info embedded); delete
// events carry only the post ID.
type Event struct {
	Action string      `json:"action"`
	Post   *model.Post `json:"post,omitempty"`
	PostID string      `json:"postId,omitempty"`
}

// Hub fans events out to every connected client.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API authenticates with bearer tokens, not cookies, so
			// cross-origin websocket attaches are safe to accept.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS upgrades the request to a websocket and registers the client.
// The read loop exists only to detect the client going away; the feed
// channel is broadcast-only.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("websocket client connected", slog.Int("clients", count))

	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Publish sends the event to every connected client. Clients whose write
// fails are dropped; a slow or dead subscriber never fails the publisher.
func (h *Hub) Publish(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			h.logger.Warn("dropping websocket client",
				slog.String("error", err.Error()),
			)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Close disconnects all clients. Called during server shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	conn.Close()
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
