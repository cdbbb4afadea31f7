package client_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/notihub/notification-backend-go/internal/client"
	"github.com/notihub/notification-backend-go/internal/domain/auth"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
	handler "github.com/notihub/notification-backend-go/internal/handler/http"
	"github.com/notihub/notification-backend-go/internal/pkg/database"
	"github.com/notihub/notification-backend-go/internal/pkg/jwt"
	"github.com/notihub/notification-backend-go/internal/pkg/sse"
	"github.com/notihub/notification-backend-go/internal/repository/sqlite"
	authService "github.com/notihub/notification-backend-go/internal/service/auth"
	notificationService "github.com/notihub/notification-backend-go/internal/service/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := sqlite.NewNotificationRepository(context.Background(), db)
	require.NoError(t, err)

	hub := sse.NewHub()
	jwtSvc := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	router := handler.NewRouter(
		handler.RouterOptions{Env: "test", LogLevel: slog.LevelError},
		jwtSvc,
		handler.NewAuthHandler(authService.NewAuthService(jwtSvc)),
		handler.NewNotificationHandler(notificationService.NewNotificationService(repo, hub, notificationService.Config{})),
		handler.NewHealthHandler(db.PingContext, hub),
	)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestClient_EndToEnd(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	api := client.New(server.URL)

	_, err := api.List(ctx, "user_123", 1, 10)
	require.Error(t, err)
	assert.True(t, errors.Is(err, auth.ErrInvalidToken))

	_, err = api.Login(ctx, "user_123")
	require.NoError(t, err)
	require.NotEmpty(t, api.Token())

	categories := []string{"social", "promo", "social"}
	for i, category := range categories {
		_, err := api.Create(ctx, notification.CreateNotificationRequest{
			OwnerID:  "user_123",
			Content:  fmt.Sprintf("notification %d", i),
			Category: category,
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page, err := api.List(ctx, "user_123", 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, notification.PaginationMeta{Page: 1, Limit: 10, Total: 3, TotalPages: 1}, page.Meta)

	inbox := client.NewInbox(api, "user_123", 10)
	require.NoError(t, inbox.Refresh(ctx))
	inbox.SetFilter(client.Filter{Category: "social"})
	assert.Equal(t, 2, inbox.Count())

	target := inbox.View()[0].ID
	require.NoError(t, inbox.MarkRead(ctx, target))
	require.NoError(t, inbox.Remove(ctx, target))
	assert.Equal(t, 1, inbox.Count())

	// A second cancel reports the record as gone; the inbox shrugs it off.
	assert.ErrorIs(t, api.Cancel(ctx, target), notification.ErrNotificationNotFound)
	require.NoError(t, inbox.Remove(ctx, target))

	err = api.MarkRead(ctx, target)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	require.NoError(t, inbox.Refresh(ctx))
	assert.Equal(t, int64(2), inbox.Meta().Total)
}

func TestClient_ValidationError(t *testing.T) {
	server := newTestServer(t)
	api := client.New(server.URL)

	_, err := api.Login(context.Background(), "ab")

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 400, apiErr.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Details, "ownerId")
}

func TestClient_Stream(t *testing.T) {
	server := newTestServer(t)
	api := client.New(server.URL)
	_, err := api.Login(context.Background(), "user_123")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	received := make(chan notification.Event, 1)
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- api.Stream(ctx, "user_123", func(ev notification.Event) error {
			received <- ev
			return errors.New("done")
		})
	}()

	// Keep creating until the stream is attached and sees one.
	for {
		_, err := api.Create(context.Background(), notification.CreateNotificationRequest{
			OwnerID: "user_123", Content: "streamed notification", Category: "social",
		})
		require.NoError(t, err)

		select {
		case ev := <-received:
			assert.Equal(t, notification.EventCreated, ev.Type)
			assert.Equal(t, "streamed notification", ev.Notification.Content)
			assert.EqualError(t, <-streamErr, "done")
			return
		case <-time.After(100 * time.Millisecond):
		case <-ctx.Done():
			t.Fatal("no event received")
		}
	}
}
