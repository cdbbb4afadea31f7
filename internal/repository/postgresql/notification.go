package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/notihub/notification-backend-go/internal/pkg/database"
)

const notificationColumns = `id, owner_id, content, category, is_read, canceled_at, created_at, updated_at`

var schema = []string{
	`CREATE TABLE IF NOT EXISTS notifications (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL,
		content     TEXT NOT NULL,
		category    TEXT NOT NULL,
		is_read     BOOLEAN NOT NULL DEFAULT FALSE,
		canceled_at TIMESTAMPTZ,
		created_at  TIMESTAMPTZ NOT NULL,
		updated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_owner_created
		ON notifications (owner_id, created_at DESC)`,
}

type notificationRepository struct {
	q   database.Querier
	now func() time.Time
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(q database.Querier) notification.Repository {
	return &notificationRepository{q: q, now: time.Now}
}

// EnsureSchema creates the notifications table and its owner index
func EnsureSchema(ctx context.Context, q database.Querier) error {
	for _, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply notifications schema: %w", err)
		}
	}
	return nil
}

func (r *notificationRepository) Create(ctx context.Context, ownerID, content, category string) (*notification.Notification, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeError("generate notification id", err)
	}
	now := r.now().UTC().Truncate(time.Microsecond)

	query := `
		INSERT INTO notifications (id, owner_id, content, category, is_read, canceled_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NULL, $5, $5)
		RETURNING ` + notificationColumns

	n, err := scanNotification(r.q.QueryRow(ctx, query, id.String(), ownerID, content, category, now))
	if err != nil {
		return nil, storeError("create notification", err)
	}
	return n, nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id string, includeCanceled bool) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = $1` + visibility(includeCanceled)

	n, err := scanNotification(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, storeError("get notification", err)
	}
	return n, nil
}

func (r *notificationRepository) FindManyByOwner(ctx context.Context, ownerID string, page, pageSize int, includeCanceled bool) ([]*notification.Notification, error) {
	offset, err := notification.Offset(page, pageSize)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE owner_id = $1` + visibility(includeCanceled) + `
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.q.Query(ctx, query, ownerID, pageSize, offset)
	if err != nil {
		return nil, storeError("query notifications", err)
	}
	defer rows.Close()

	notifications := make([]*notification.Notification, 0, pageSize)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, storeError("scan notification", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("iterate notifications", err)
	}

	return notifications, nil
}

func (r *notificationRepository) CountByOwner(ctx context.Context, ownerID string, includeCanceled bool) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE owner_id = $1` + visibility(includeCanceled)

	var total int64
	if err := r.q.QueryRow(ctx, query, ownerID).Scan(&total); err != nil {
		return 0, storeError("count notifications", err)
	}
	return total, nil
}

// Save never un-reads or un-cancels a row, whatever the caller's copy says
func (r *notificationRepository) Save(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	now := r.now().UTC().Truncate(time.Microsecond)

	query := `
		UPDATE notifications
		SET is_read     = is_read OR $2,
		    canceled_at = COALESCE(canceled_at, $3),
		    updated_at  = GREATEST(created_at, $4)
		WHERE id = $1
		RETURNING ` + notificationColumns

	saved, err := scanNotification(r.q.QueryRow(ctx, query, n.ID, n.Read, n.CanceledAt, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, storeError("save notification", err)
	}
	return saved, nil
}

func visibility(includeCanceled bool) string {
	if includeCanceled {
		return ""
	}
	return ` AND canceled_at IS NULL`
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID,
		&n.OwnerID,
		&n.Content,
		&n.Category,
		&n.Read,
		&n.CanceledAt,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", notification.ErrStoreUnavailable, op, err)
}
