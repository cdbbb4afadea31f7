package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
)

const schema = `
CREATE TABLE IF NOT EXISTS notifications (
	id          TEXT PRIMARY KEY,
	owner_id    TEXT NOT NULL,
	content     TEXT NOT NULL,
	category    TEXT NOT NULL,
	is_read     INTEGER NOT NULL DEFAULT 0,
	canceled_at INTEGER,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notifications_owner_created
	ON notifications (owner_id, created_at DESC);
`

const notificationColumns = `id, owner_id, content, category, is_read, canceled_at, created_at, updated_at`

// notificationRow mirrors the table; timestamps are unix nanoseconds so they sort numerically
type notificationRow struct {
	ID         string        `db:"id"`
	OwnerID    string        `db:"owner_id"`
	Content    string        `db:"content"`
	Category   string        `db:"category"`
	Read       bool          `db:"is_read"`
	CanceledAt sql.NullInt64 `db:"canceled_at"`
	CreatedAt  int64         `db:"created_at"`
	UpdatedAt  int64         `db:"updated_at"`
}

func (r notificationRow) toEntity() *notification.Notification {
	n := &notification.Notification{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		Content:   r.Content,
		Category:  r.Category,
		Read:      r.Read,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
	if r.CanceledAt.Valid {
		canceledAt := time.Unix(0, r.CanceledAt.Int64).UTC()
		n.CanceledAt = &canceledAt
	}
	return n
}

type notificationRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewNotificationRepository creates the notifications table if needed and returns the repository
func NewNotificationRepository(ctx context.Context, db *sqlx.DB) (notification.Repository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to apply notifications schema: %w", err)
	}
	return &notificationRepository{db: db, now: time.Now}, nil
}

func (r *notificationRepository) Create(ctx context.Context, ownerID, content, category string) (*notification.Notification, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, storeError("generate notification id", err)
	}
	now := r.now().UnixNano()

	row := notificationRow{
		ID:        id.String(),
		OwnerID:   ownerID,
		Content:   content,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := `
		INSERT INTO notifications (` + notificationColumns + `)
		VALUES (:id, :owner_id, :content, :category, :is_read, :canceled_at, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return nil, storeError("create notification", err)
	}
	return row.toEntity(), nil
}

func (r *notificationRepository) FindByID(ctx context.Context, id string, includeCanceled bool) (*notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?` + visibility(includeCanceled)

	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, storeError("get notification", err)
	}
	return row.toEntity(), nil
}

func (r *notificationRepository) FindManyByOwner(ctx context.Context, ownerID string, page, pageSize int, includeCanceled bool) ([]*notification.Notification, error) {
	offset, err := notification.Offset(page, pageSize)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE owner_id = ?` + visibility(includeCanceled) + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, pageSize, offset); err != nil {
		return nil, storeError("query notifications", err)
	}

	notifications := make([]*notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifications = append(notifications, row.toEntity())
	}
	return notifications, nil
}

func (r *notificationRepository) CountByOwner(ctx context.Context, ownerID string, includeCanceled bool) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE owner_id = ?` + visibility(includeCanceled)

	var total int64
	if err := r.db.GetContext(ctx, &total, query, ownerID); err != nil {
		return 0, storeError("count notifications", err)
	}
	return total, nil
}

func (r *notificationRepository) Save(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	var canceledAt sql.NullInt64
	if n.CanceledAt != nil {
		canceledAt = sql.NullInt64{Int64: n.CanceledAt.UnixNano(), Valid: true}
	}

	query := `
		UPDATE notifications
		SET is_read     = is_read OR ?,
		    canceled_at = COALESCE(canceled_at, ?),
		    updated_at  = MAX(created_at, ?)
		WHERE id = ?
		RETURNING ` + notificationColumns

	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, n.Read, canceledAt, r.now().UnixNano(), n.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, storeError("save notification", err)
	}
	return row.toEntity(), nil
}

func visibility(includeCanceled bool) string {
	if includeCanceled {
		return ""
	}
	return ` AND canceled_at IS NULL`
}

func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", notification.ErrStoreUnavailable, op, err)
}
