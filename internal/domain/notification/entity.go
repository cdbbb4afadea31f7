package notification

import (
	"time"
)

// EventType names a lifecycle transition pushed to live subscribers
type EventType string

const (
	EventCreated  EventType = "notification.created"
	EventRead     EventType = "notification.read"
	EventCanceled EventType = "notification.canceled"
)

// Notification represents a notification entity.
// Read and CanceledAt only ever move forward: false→true and nil→set.
type Notification struct {
	ID         string
	OwnerID    string
	Content    string
	Category   string
	Read       bool
	CanceledAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsCanceled reports whether the notification was soft-deleted
func (n *Notification) IsCanceled() bool {
	return n.CanceledAt != nil
}

// MarkRead sets the read flag. Calling it on a read notification is a no-op.
func (n *Notification) MarkRead() {
	n.Read = true
}

// Cancel soft-deletes the notification at the given instant.
// An existing cancellation timestamp is never overwritten.
func (n *Notification) Cancel(at time.Time) {
	if n.CanceledAt != nil {
		return
	}
	canceledAt := at
	n.CanceledAt = &canceledAt
}
