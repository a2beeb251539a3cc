package handler

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/aryan0dhankhar/citas/internal/notification"
)

// LiveFeedHandler upgrades doctors to the appointment live feed
type LiveFeedHandler struct {
	feed           *notification.LiveFeed
	logger         *slog.Logger
	allowedOrigins []string
}

// NewLiveFeedHandler creates a new live feed handler
func NewLiveFeedHandler(feed *notification.LiveFeed, logger *slog.Logger, allowedOrigins []string) *LiveFeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveFeedHandler{feed: feed, logger: logger, allowedOrigins: allowedOrigins}
}

func (h *LiveFeedHandler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range h.allowedOrigins {
				if allowed == "*" || origin == allowed {
					return true
				}
			}
			h.logger.Warn("websocket origin rejected", slog.String("origin", origin))
			return false
		},
	}
}

// ServeHTTP handles GET /ws/appointments
func (h *LiveFeedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.logger.Info("live feed connected", slog.Int64("doctor_user_id", p.UserID))
	h.feed.Serve(r.Context(), conn, p.UserID)
	h.logger.Info("live feed disconnected", slog.Int64("doctor_user_id", p.UserID))
}
