package notification

import (
	"context"
)

// Repository defines the notification repository interface.
//
// Reads take an explicit includeCanceled flag; with it false, soft-deleted
// records behave exactly like records that never existed.
type Repository interface {
	Create(ctx context.Context, ownerID, content, category string) (*Notification, error)
	FindByID(ctx context.Context, id string, includeCanceled bool) (*Notification, error)
	// FindManyByOwner returns newest first; page and pageSize are 1-indexed.
	FindManyByOwner(ctx context.Context, ownerID string, page, pageSize int, includeCanceled bool) ([]*Notification, error)
	CountByOwner(ctx context.Context, ownerID string, includeCanceled bool) (int64, error)
	// Save persists Read and CanceledAt, refreshes UpdatedAt and returns the stored record.
	Save(ctx context.Context, n *Notification) (*Notification, error)
}
