package client

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
)

// Status narrows the view by read state
type Status string

const (
	StatusAll    Status = "all"
	StatusRead   Status = "read"
	StatusUnread Status = "unread"

	CategoryAll = "all"
)

// Filter is applied to the page already held by an Inbox
type Filter struct {
	Search   string // case-insensitive substring of content
	Category string // exact match, "" or "all" for any
	Status   Status // "" behaves as StatusAll
}

func (f Filter) Match(n notification.NotificationResponse) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(n.Content), strings.ToLower(f.Search)) {
		return false
	}
	if f.Category != "" && f.Category != CategoryAll && n.Category != f.Category {
		return false
	}
	switch f.Status {
	case StatusRead:
		return n.Read
	case StatusUnread:
		return !n.Read
	}
	return true
}

// Apply returns the matching items in their original order
func (f Filter) Apply(items []notification.NotificationResponse) []notification.NotificationResponse {
	out := make([]notification.NotificationResponse, 0, len(items))
	for _, n := range items {
		if f.Match(n) {
			out = append(out, n)
		}
	}
	return out
}

// Inbox holds the last fetched page for one owner.
// Filtering only ever looks at that page, so Count can be lower than Meta().Total.
type Inbox struct {
	api     *Client
	ownerID string

	mu     sync.RWMutex
	page   int
	limit  int
	items  []notification.NotificationResponse
	meta   notification.PaginationMeta
	filter Filter
}

func NewInbox(api *Client, ownerID string, limit int) *Inbox {
	return &Inbox{
		api:     api,
		ownerID: ownerID,
		page:    notification.DefaultPage,
		limit:   limit,
	}
}

// Refresh refetches the current page
func (in *Inbox) Refresh(ctx context.Context) error {
	in.mu.RLock()
	page, limit := in.page, in.limit
	in.mu.RUnlock()

	return in.load(ctx, page, limit)
}

// Goto fetches another page
func (in *Inbox) Goto(ctx context.Context, page int) error {
	in.mu.RLock()
	limit := in.limit
	in.mu.RUnlock()

	return in.load(ctx, page, limit)
}

func (in *Inbox) load(ctx context.Context, page, limit int) error {
	result, err := in.api.List(ctx, in.ownerID, page, limit)
	if err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	in.items = result.Items
	in.meta = result.Meta
	in.page = result.Meta.Page
	in.limit = result.Meta.Limit
	return nil
}

func (in *Inbox) SetFilter(f Filter) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.filter = f
}

// View returns the held page after the current filter
func (in *Inbox) View() []notification.NotificationResponse {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.filter.Apply(in.items)
}

func (in *Inbox) Count() int {
	return len(in.View())
}

// UnreadCount counts unread items on the held page, ignoring the filter
func (in *Inbox) UnreadCount() int {
	in.mu.RLock()
	defer in.mu.RUnlock()

	unread := 0
	for _, n := range in.items {
		if !n.Read {
			unread++
		}
	}
	return unread
}

func (in *Inbox) Meta() notification.PaginationMeta {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.meta
}

// MarkRead marks the notification read on the server and in the held page
func (in *Inbox) MarkRead(ctx context.Context, id string) error {
	if err := in.api.MarkRead(ctx, id); err != nil {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	for i := range in.items {
		if in.items[i].ID == id {
			in.items[i].Read = true
		}
	}
	return nil
}

// Remove cancels the notification and drops it from the held page.
// A notification that is already gone is not an error.
// Meta is left as fetched until the next Refresh.
func (in *Inbox) Remove(ctx context.Context, id string) error {
	if err := in.api.Cancel(ctx, id); err != nil && !errors.Is(err, notification.ErrNotificationNotFound) {
		return err
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	kept := in.items[:0]
	for _, n := range in.items {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	in.items = kept
	return nil
}
