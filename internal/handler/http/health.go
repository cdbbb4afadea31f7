package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/notihub/notification-backend-go/internal/handler/http/response"
	"github.com/notihub/notification-backend-go/internal/pkg/sse"
)

// Pinger reports whether the notification store is reachable
type Pinger func(ctx context.Context) error

type HealthHandler interface {
	Check(w http.ResponseWriter, r *http.Request)
}

type healthHandlerImpl struct {
	ping Pinger
	hub  *sse.Hub
}

func NewHealthHandler(ping Pinger, hub *sse.Hub) HealthHandler {
	return &healthHandlerImpl{ping: ping, hub: hub}
}

type healthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store"`
	Subscribers int    `json:"subscribers"`
}

func (h *healthHandlerImpl) Check(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Store: "up"}
	if h.hub != nil {
		resp.Subscribers = h.hub.TotalSubscribers()
	}

	if h.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			slog.Error("Health check store ping failed", "error", err)
			resp.Status = "degraded"
			resp.Store = "down"
		}
	}

	response.Success(w, resp)
}
