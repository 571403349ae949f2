package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/thinkex/clusters-api/internal/api/shared"
)

// TokenIssuer issues subscriber tokens for the broadcast channel.
type TokenIssuer interface {
	IssueToken() (string, time.Time, error)
	Channel() string
}

// RealtimeHandler serves GET /realtime/token, handing browsers a
// short-lived token to present on the websocket subscribe endpoint.
type RealtimeHandler struct {
	tokens TokenIssuer
	logger *slog.Logger
}

// NewRealtimeHandler creates a RealtimeHandler.
func NewRealtimeHandler(tokens TokenIssuer, log *slog.Logger) *RealtimeHandler {
	if log == nil {
		log = slog.Default()
	}

	return &RealtimeHandler{
		tokens: tokens,
		logger: log.With(slog.String("component", "realtime_handler")),
	}
}

// Token handles GET /realtime/token.
func (h *RealtimeHandler) Token(w http.ResponseWriter, r *http.Request) {
	token, expiresAt, err := h.tokens.IssueToken()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to issue subscriber token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Channel:   h.tokens.Channel(),
	})
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
