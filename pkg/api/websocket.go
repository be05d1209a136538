package api

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// WSMessage is one event frame pushed to streaming clients.
type WSMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// WSHub fans out workflow step events to every connected client. A
// client filters on SessionID client-side; the hub itself does not
// scope connections to a session, matching the simple broadcast model
// this API was grounded on.
type WSHub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan WSMessage
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
}

// NewWSHub creates an idle hub; callers must invoke Run in a goroutine.
// allowedOrigins configures the websocket origin check; an empty slice
// allows any origin, matching a local-dev default.
func NewWSHub(allowedOrigins []string) *WSHub {
	h := &WSHub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan WSMessage, 256),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin(allowedOrigins)}
	return h
}

func (h *WSHub) checkOrigin(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		for _, a := range allowed {
			if a == origin {
				return true
			}
		}
		return false
	}
}

// Run services registrations and broadcasts until ctx-less shutdown;
// callers run it for the lifetime of the process.
func (h *WSHub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			n := len(h.clients)
			h.mu.Unlock()
			slog.Debug("api: websocket client connected", "total", n)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			n := len(h.clients)
			h.mu.Unlock()
			slog.Debug("api: websocket client disconnected", "total", n)

		case message := <-h.broadcast:
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteJSON(message); err != nil {
					slog.Warn("api: websocket write failed", "error", err)
					go func(c *websocket.Conn) { h.unregister <- c }(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast enqueues msgType/data for every connected client.
func (h *WSHub) Broadcast(msgType, sessionID string, data interface{}) {
	h.broadcast <- WSMessage{Type: msgType, SessionID: sessionID, Data: data}
}

// HandleWS upgrades the request to a websocket and registers it with
// the hub. Reads from the client are only consumed to detect
// disconnects; this API is push-only otherwise.
func (h *WSHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("api: websocket upgrade failed", "error", err)
		return
	}

	h.register <- conn
	conn.WriteJSON(WSMessage{Type: "connected"})

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					slog.Debug("api: websocket read error", "error", err)
				}
				return
			}
		}
	}()
}
