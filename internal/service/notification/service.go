package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/notihub/notification-backend-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	Now       func() time.Time // default: time.Now
	Publisher sse.Publisher    // default: the hub itself
}

type service struct {
	repo      notification.Repository
	hub       *sse.Hub
	publisher sse.Publisher
	now       func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Publisher == nil && hub != nil {
		cfg.Publisher = hub
	}

	return &service{
		repo:      repo,
		hub:       hub,
		publisher: cfg.Publisher,
		now:       cfg.Now,
	}
}

// SendNotification stores a new unread notification for its owner
func (s *service) SendNotification(ctx context.Context, req notification.CreateNotificationRequest) (*notification.NotificationResponse, error) {
	n, err := s.repo.Create(ctx, req.OwnerID, req.Content, req.Category)
	if err != nil {
		return nil, err
	}

	resp := notification.ToResponse(n)
	s.publish(notification.EventCreated, resp)

	return &resp, nil
}

// ListUserNotifications returns one page of the owner's active notifications.
// Page and count are two separate reads, so meta.total can be off by a
// concurrent write.
func (s *service) ListUserNotifications(ctx context.Context, req notification.ListNotificationsRequest) (*notification.NotificationListResponse, error) {
	req = req.WithDefaults()

	notifications, err := s.repo.FindManyByOwner(ctx, req.OwnerID, req.Page, req.PageSize, false)
	if err != nil {
		return nil, err
	}

	total, err := s.repo.CountByOwner(ctx, req.OwnerID, false)
	if err != nil {
		return nil, err
	}

	items := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		items[i] = notification.ToResponse(n)
	}

	return &notification.NotificationListResponse{
		Items: items,
		Meta: notification.PaginationMeta{
			Page:       req.Page,
			Limit:      req.PageSize,
			Total:      total,
			TotalPages: notification.TotalPages(total, req.PageSize),
		},
	}, nil
}

// ReadNotification marks an active notification as read
func (s *service) ReadNotification(ctx context.Context, id string) error {
	n, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return err
	}

	n.MarkRead()

	saved, err := s.repo.Save(ctx, n)
	if err != nil {
		return err
	}

	s.publish(notification.EventRead, notification.ToResponse(saved))
	return nil
}

// CancelNotification soft-deletes an active notification
func (s *service) CancelNotification(ctx context.Context, id string) error {
	n, err := s.repo.FindByID(ctx, id, false)
	if err != nil {
		return err
	}

	n.Cancel(s.now())

	saved, err := s.repo.Save(ctx, n)
	if err != nil {
		return err
	}

	s.publish(notification.EventCanceled, notification.ToResponse(saved))
	return nil
}

// Subscribe creates an SSE subscription for an owner.
// The returned channel is closed when ctx ends or the cleanup function runs.
func (s *service) Subscribe(ctx context.Context, ownerID string) (<-chan notification.Event, func()) {
	ch, cleanup := s.hub.Subscribe(ownerID)

	out := make(chan notification.Event, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

func (s *service) publish(eventType notification.EventType, n notification.NotificationResponse) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(n.OwnerID, notification.Event{Type: eventType, Notification: n})
	slog.Debug("notification event published", "type", eventType, "id", n.ID, "owner_id", n.OwnerID)
}
