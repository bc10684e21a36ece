package saves

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"gamesave/internal/usecase/loader"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Event types sent over /ws/progress.
const (
	EventConnected = "connected"
	EventPreload   = "preload"
	EventResult    = "result"
)

type ProgressEvent struct {
	Type    string              `json:"type"`
	LoadID  uuid.UUID           `json:"load_id"`
	Slot    string              `json:"slot,omitempty"`
	Percent int                 `json:"percent"`
	Item    *loader.PreloadItem `json:"item,omitempty"`
	State   string              `json:"state,omitempty"`
	Error   string              `json:"error,omitempty"`
}

// ProgressHub fans load progress out to every connected websocket.
type ProgressHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	log     *zap.SugaredLogger
}

func NewProgressHub(log *zap.SugaredLogger) *ProgressHub {
	return &ProgressHub{clients: make(map[*websocket.Conn]struct{}), log: log}
}

func (h *ProgressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

func (h *ProgressHub) Broadcast(ev ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(ev); err != nil {
			h.log.Warnw("Dropping progress listener", zap.Error(err))
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Clients returns the number of connected listeners.
func (h *ProgressHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Serve upgrades the request and keeps the connection registered until the
// peer goes away. Incoming messages are ignored.
func (h *ProgressHub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Errorw("upgrade error", zap.Error(err))
		return
	}

	h.mu.Lock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	err = conn.WriteJSON(ProgressEvent{Type: EventConnected})
	if err == nil {
		h.clients[conn] = struct{}{}
	}
	h.mu.Unlock()
	if err != nil {
		conn.Close()
		return
	}
	defer h.remove(conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
