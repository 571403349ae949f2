package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		// Subscribers authenticate with a signed token, not an origin check.
		return true
	},
}

// Handler upgrades authenticated subscribers onto the broadcast hub.
type Handler struct {
	hub    *Hub
	tokens *TokenService
	logger *slog.Logger
}

// NewHandler creates a websocket subscribe handler.
func NewHandler(hub *Hub, tokens *TokenService, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}

	return &Handler{
		hub:    hub,
		tokens: tokens,
		logger: log.With(slog.String("component", "ws_handler")),
	}
}

// Subscribe handles GET /realtime/subscribe. The subscriber token comes in
// the "token" query parameter because browsers cannot set headers on
// websocket requests.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		http.Error(w, "missing subscriber token", http.StatusUnauthorized)
		return
	}

	subject, err := h.tokens.VerifyToken(tokenString)
	if err != nil {
		h.logger.Warn("rejected subscriber", slog.String("error", err.Error()))
		http.Error(w, "invalid subscriber token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	c := &client{
		subject: subject,
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
	}

	if !h.hub.add(c) {
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h.hub)
}
