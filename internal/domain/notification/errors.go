package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrStoreUnavailable     = errors.New("notification store unavailable")
	ErrInvalidPagination    = errors.New("page and page size must be at least 1")
)
