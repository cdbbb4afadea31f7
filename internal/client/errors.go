package client

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/notihub/notification-backend-go/internal/domain/auth"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
)

// APIError is a non-2xx answer from the API.
// It unwraps to the matching domain sentinel so callers can use errors.Is.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
	}

	fields := make([]string, 0, len(e.Details))
	for field, msg := range e.Details {
		fields = append(fields, field+": "+msg)
	}
	sort.Strings(fields)
	return fmt.Sprintf("%d %s: %s (%s)", e.StatusCode, e.Code, e.Message, strings.Join(fields, "; "))
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return notification.ErrNotificationNotFound
	case http.StatusUnauthorized:
		return auth.ErrInvalidToken
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return notification.ErrStoreUnavailable
	}
	return nil
}
