package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"jobboard/internal/logging"
)

// Handler upgrades plain net/http requests. It is served on its own listener because the
// fasthttp-based API server cannot hand over the raw connection.
type Handler struct {
	hub    *Hub
	logger logging.Logger
}

func NewHandler(hub *Hub, logger logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{hub: hub, logger: logger.With("component", "ws")}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.hub == nil {
		http.Error(w, "feed unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "ws upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn)
	if !h.hub.Register(client) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		_ = conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()
}

// NewServer mounts the feed at /ws/jobs.
func NewServer(addr string, h *Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/ws/jobs", h)
	return &http.Server{
		Addr:    addr,
		Handler: mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
