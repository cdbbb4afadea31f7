package notification

import (
	"math"
	"time"

	"github.com/notihub/notification-backend-go/internal/pkg/validator"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	MaxPage         = math.MaxInt32

	MinCreateOwnerIDLength = 6
	MinOwnerIDLength       = 3
	MinContentLength       = 5
	MaxContentLength       = 1000
	MinCategoryLength      = 3
	MaxCategoryLength      = 50
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	OwnerID  string `json:"ownerId"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

func (r *CreateNotificationRequest) Validate() error {
	var errs validator.ValidationErrors

	validator.CheckOwnerID(&errs, "ownerId", r.OwnerID, MinCreateOwnerIDLength)

	if validator.IsEmpty(r.Content) {
		errs.Add("content", "content is required")
	} else if validator.Length(r.Content) < MinContentLength {
		errs.Add("content", "content must be at least "+validator.Itoa(MinContentLength)+" characters long")
	}
	if validator.Length(r.Content) > MaxContentLength {
		errs.Add("content", "content must not exceed "+validator.Itoa(MaxContentLength)+" characters")
	}

	if validator.IsEmpty(r.Category) {
		errs.Add("category", "category is required")
	} else if validator.Length(r.Category) < MinCategoryLength {
		errs.Add("category", "category must be at least "+validator.Itoa(MinCategoryLength)+" characters long")
	}
	if validator.Length(r.Category) > MaxCategoryLength {
		errs.Add("category", "category must not exceed "+validator.Itoa(MaxCategoryLength)+" characters")
	}

	return errs.Err()
}

// ListNotificationsRequest represents a request to list an owner's notifications.
// Zero Page or PageSize means "use the default".
type ListNotificationsRequest struct {
	OwnerID  string
	Page     int
	PageSize int
}

func (r *ListNotificationsRequest) Validate() error {
	var errs validator.ValidationErrors

	validator.CheckOwnerID(&errs, "ownerId", r.OwnerID, MinOwnerIDLength)

	if r.Page < 0 {
		errs.Add("page", "page must be a positive integer")
	}
	if r.Page > MaxPage {
		errs.Add("page", "page must not exceed "+validator.Itoa(MaxPage))
	}
	if r.PageSize < 0 {
		errs.Add("limit", "limit must be a positive integer")
	}
	if r.PageSize > MaxPageSize {
		errs.Add("limit", "limit must not exceed "+validator.Itoa(MaxPageSize))
	}

	return errs.Err()
}

// Offset returns the number of records before page. Pages start at 1, and an
// offset that would not fit in an int is rejected rather than wrapped.
func Offset(page, pageSize int) (int, error) {
	if page < 1 || pageSize < 1 || page-1 > math.MaxInt/pageSize {
		return 0, ErrInvalidPagination
	}
	return (page - 1) * pageSize, nil
}

// WithDefaults fills zero pagination fields.
func (r ListNotificationsRequest) WithDefaults() ListNotificationsRequest {
	if r.Page == 0 {
		r.Page = DefaultPage
	}
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	return r
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID         string     `json:"id"`
	OwnerID    string     `json:"ownerId"`
	Content    string     `json:"content"`
	Category   string     `json:"category"`
	Read       bool       `json:"read"`
	CanceledAt *time.Time `json:"canceledAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ToResponse converts a Notification entity to NotificationResponse
func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		OwnerID:    n.OwnerID,
		Content:    n.Content,
		Category:   n.Category,
		Read:       n.Read,
		CanceledAt: n.CanceledAt,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
	}
}

// CreateNotificationResponse wraps a freshly created notification
type CreateNotificationResponse struct {
	Notification NotificationResponse `json:"notification"`
}

// PaginationMeta describes one page over an owner's active notifications
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Items []NotificationResponse `json:"items"`
	Meta  PaginationMeta         `json:"meta"`
}

// TotalPages returns ceil(total / pageSize), 0 when there is nothing to page.
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	size := int64(pageSize)
	return int((total + size - 1) / size)
}

// ============= SSE Event =============

// Event is pushed to an owner's live subscribers
type Event struct {
	Type         EventType            `json:"type"`
	Notification NotificationResponse `json:"notification"`
}
