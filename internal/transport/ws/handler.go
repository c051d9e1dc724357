package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Handler upgrades HTTP requests to WebSocket connections
type Handler struct {
	gateway  *Gateway
	upgrader websocket.Upgrader
	rate     rate.Limit
	burst    int
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler. Each connection may send
// perSecond events on average with bursts of up to burst.
func NewHandler(gateway *Gateway, perSecond float64, burst int, logger *slog.Logger) *Handler {
	return &Handler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow all origins for development
				// In production, you should validate the origin
				return true
			},
		},
		rate:   rate.Limit(perSecond),
		burst:  burst,
		logger: logger,
	}
}

// ServeHTTP handles WebSocket upgrade requests. The room is chosen later by
// the join_lobby event, so any client may connect.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	handle := uuid.NewString()
	client := NewClient(conn, h.gateway, handle, rate.NewLimiter(h.rate, h.burst), h.logger)

	h.logger.Info("websocket connected", "handle", handle, "remoteAddr", r.RemoteAddr)

	client.Send(NewServerMessage(MsgConnected, &ConnectedPayload{Handle: handle}))

	// Start the client
	client.Run()

	h.logger.Info("websocket disconnected", "handle", handle)
}
