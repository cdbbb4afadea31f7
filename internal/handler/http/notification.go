package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/notihub/notification-backend-go/internal/handler/http/middleware"
	"github.com/notihub/notification-backend-go/internal/handler/http/response"
	"github.com/notihub/notification-backend-go/internal/pkg/validator"
)

const streamKeepalive = 30 * time.Second

// NotificationHandler defines the notification handler interface
type NotificationHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Read(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	// SSE
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notifService notification.Service) NotificationHandler {
	return &notificationHandlerImpl{notifService: notifService}
}

// getIntQueryParam returns 0 for a missing or non-numeric parameter so the
// service default applies
func getIntQueryParam(r *http.Request, key string) int {
	intVal, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return intVal
}

// Create stores a new notification
func (h *notificationHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req notification.CreateNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create notification decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	created, err := h.notifService.SendNotification(r.Context(), req)
	if err != nil {
		slog.Error("Create notification service error", "error", err, "owner_id", req.OwnerID, "actor", middleware.OwnerIDFromContext(r.Context()))
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Notification created", notification.CreateNotificationResponse{Notification: *created})
}

// List returns one page of an owner's active notifications, newest first
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	req := notification.ListNotificationsRequest{
		OwnerID:  chi.URLParam(r, "ownerId"),
		Page:     getIntQueryParam(r, "page"),
		PageSize: getIntQueryParam(r, "limit"),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.notifService.ListUserNotifications(r.Context(), req)
	if err != nil {
		slog.Error("List notifications service error", "error", err, "owner_id", req.OwnerID)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Items, &response.Meta{
		Page:       result.Meta.Page,
		Limit:      result.Meta.Limit,
		Total:      result.Meta.Total,
		TotalPages: result.Meta.TotalPages,
	})
}

// Read marks a notification as read
func (h *notificationHandlerImpl) Read(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.notifService.ReadNotification(r.Context(), id); err != nil {
		slog.Error("Read notification service error", "error", err, "id", id, "actor", middleware.OwnerIDFromContext(r.Context()))
		response.HandleError(w, err)
		return
	}

	response.NoContent(w)
}

// Cancel soft-deletes a notification
func (h *notificationHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.notifService.CancelNotification(r.Context(), id); err != nil {
		slog.Error("Cancel notification service error", "error", err, "id", id, "actor", middleware.OwnerIDFromContext(r.Context()))
		response.HandleError(w, err)
		return
	}

	response.NoContent(w)
}

// Stream handles SSE connection for real-time notifications
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	ownerID := chi.URLParam(r, "ownerId")

	var errs validator.ValidationErrors
	validator.CheckOwnerID(&errs, "ownerId", ownerID, notification.MinOwnerIDLength)
	if err := errs.Err(); err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	// The server write timeout would otherwise cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notifService.Subscribe(r.Context(), ownerID)
	defer cleanup()
	slog.Info("Stream connected", "owner_id", ownerID, "actor", middleware.OwnerIDFromContext(r.Context()))
	defer slog.Info("Stream closed", "owner_id", ownerID)

	connected, _ := json.Marshal(map[string]string{"status": "connected", "ownerId": ownerID})
	fmt.Fprintf(w, "event: connected\ndata: %s\n\n", connected)
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event.Notification)
			if err != nil {
				slog.Error("Stream encode error", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
