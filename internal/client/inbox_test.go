package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeItemPage = `{
	"success": true,
	"data": [
		{"id": "n3", "ownerId": "user_123", "content": "Alice liked your post", "category": "social", "read": false, "canceledAt": null},
		{"id": "n2", "ownerId": "user_123", "content": "50% off this weekend", "category": "promo", "read": true, "canceledAt": null},
		{"id": "n1", "ownerId": "user_123", "content": "Bob followed you", "category": "social", "read": true, "canceledAt": null}
	],
	"meta": {"page": 1, "limit": 3, "total": 7, "totalPages": 3}
}`

// newCountingServer serves a fixed page and counts every request it sees
func newCountingServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(threeItemPage))
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestFilter_Match(t *testing.T) {
	n := notification.NotificationResponse{Content: "Alice LIKED your post", Category: "social", Read: false}

	assert.True(t, Filter{}.Match(n))
	assert.True(t, Filter{Search: "liked"}.Match(n))
	assert.False(t, Filter{Search: "followed"}.Match(n))
	assert.True(t, Filter{Category: "all"}.Match(n))
	assert.True(t, Filter{Category: "social"}.Match(n))
	assert.False(t, Filter{Category: "soc"}.Match(n))
	assert.True(t, Filter{Status: StatusUnread}.Match(n))
	assert.False(t, Filter{Status: StatusRead}.Match(n))
	assert.True(t, Filter{Status: StatusAll}.Match(n))
}

func TestInbox_CategoryFilterIsLocal(t *testing.T) {
	server, hits := newCountingServer(t)
	inbox := NewInbox(New(server.URL, WithToken("token")), "user_123", 3)

	require.NoError(t, inbox.Refresh(context.Background()))
	require.Equal(t, int32(1), atomic.LoadInt32(hits))

	inbox.SetFilter(Filter{Category: "social"})
	view := inbox.View()

	assert.Len(t, view, 2)
	assert.Equal(t, "n3", view[0].ID)
	assert.Equal(t, "n1", view[1].ID)
	assert.Equal(t, 2, inbox.Count())
	assert.Equal(t, int64(7), inbox.Meta().Total)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestInbox_CombinedFilters(t *testing.T) {
	server, _ := newCountingServer(t)
	inbox := NewInbox(New(server.URL), "user_123", 3)
	require.NoError(t, inbox.Refresh(context.Background()))

	inbox.SetFilter(Filter{Category: "social", Status: StatusRead})
	require.Len(t, inbox.View(), 1)
	assert.Equal(t, "n1", inbox.View()[0].ID)

	inbox.SetFilter(Filter{Search: "OFF"})
	require.Len(t, inbox.View(), 1)
	assert.Equal(t, "n2", inbox.View()[0].ID)

	assert.Equal(t, 1, inbox.UnreadCount())
}

func TestInbox_MarkReadAndRemoveUpdateLocalCopy(t *testing.T) {
	server, hits := newCountingServer(t)
	inbox := NewInbox(New(server.URL), "user_123", 3)
	require.NoError(t, inbox.Refresh(context.Background()))

	require.NoError(t, inbox.MarkRead(context.Background(), "n3"))
	assert.Equal(t, 0, inbox.UnreadCount())

	require.NoError(t, inbox.Remove(context.Background(), "n2"))
	assert.Equal(t, 2, inbox.Count())
	assert.Equal(t, int64(7), inbox.Meta().Total)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestInbox_RemoveAlreadyGoneIsNoOp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"Notification not found"}}`))
			return
		}
		w.Write([]byte(threeItemPage))
	}))
	t.Cleanup(server.Close)

	api := New(server.URL)
	inbox := NewInbox(api, "user_123", 3)
	require.NoError(t, inbox.Refresh(context.Background()))

	assert.ErrorIs(t, api.Cancel(context.Background(), "n2"), notification.ErrNotificationNotFound)
	require.NoError(t, inbox.Remove(context.Background(), "n2"))
	assert.Equal(t, 2, inbox.Count())
}
