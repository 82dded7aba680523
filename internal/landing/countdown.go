package landing

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/zma-auto/taxi-landing/internal/countdown"
)

// CountdownResponse is the body of GET /api/countdown.
type CountdownResponse struct {
	Target    string              `json:"target"`
	Remaining countdown.Remaining `json:"remaining"`
	Expired   bool                `json:"expired"`
}

// Countdown handles GET /api/countdown requests.
func (h *Handler) Countdown(w http.ResponseWriter, r *http.Request) {
	left := h.timer.Now()
	writeJSON(w, http.StatusOK, CountdownResponse{
		Target:    h.timer.Target().Format(time.RFC3339),
		Remaining: left,
		Expired:   left.IsZero(),
	})
}

// CountdownStream handles GET /api/countdown/ws. It pushes the current value,
// then one frame per tick, and closes after the all-zero frame.
func (h *Handler) CountdownStream(w http.ResponseWriter, r *http.Request) {
	server := websocket.Server{
		Handshake: func(*websocket.Config, *http.Request) error { return nil },
		Handler: func(conn *websocket.Conn) {
			defer conn.Close()
			h.streamCountdown(conn, r.Context())
		},
	}
	server.ServeHTTP(w, r)
}

func (h *Handler) streamCountdown(conn *websocket.Conn, parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	first := h.timer.Now()
	if err := websocket.JSON.Send(conn, first); err != nil || first.IsZero() {
		return
	}
	h.timer.Run(ctx, func(left countdown.Remaining) {
		if err := websocket.JSON.Send(conn, left); err != nil {
			h.logger.Debug("countdown stream closed", "error", err)
			cancel()
		}
	})
}
