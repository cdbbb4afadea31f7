package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	SendNotification(ctx context.Context, req CreateNotificationRequest) (*NotificationResponse, error)
	ListUserNotifications(ctx context.Context, req ListNotificationsRequest) (*NotificationListResponse, error)
	ReadNotification(ctx context.Context, id string) error
	CancelNotification(ctx context.Context, id string) error

	// SSE subscription
	Subscribe(ctx context.Context, ownerID string) (<-chan Event, func())
}
