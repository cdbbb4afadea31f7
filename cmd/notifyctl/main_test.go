package main

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
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

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := sqlite.NewNotificationRepository(context.Background(), db)
	require.NoError(t, err)

	hub := sse.NewHub()
	jwtSvc := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	server := httptest.NewServer(handler.NewRouter(
		handler.RouterOptions{Env: "test", LogLevel: slog.LevelError},
		jwtSvc,
		handler.NewAuthHandler(authService.NewAuthService(jwtSvc)),
		handler.NewNotificationHandler(notificationService.NewNotificationService(repo, hub, notificationService.Config{})),
		handler.NewHealthHandler(db.PingContext, hub),
	))
	t.Cleanup(server.Close)
	return server
}

func TestConfig_RoundTrip(t *testing.T) {
	t.Setenv("NOTIFY_API_URL", "")
	t.Setenv("NOTIFY_TOKEN", "")
	path := filepath.Join(t.TempDir(), "notifyctl", "config.yaml")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, cfg.APIURL)

	cfg.Token = "abc"
	cfg.OwnerID = "user_123"
	require.NoError(t, saveConfig(path, cfg))

	loaded, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, *cfg, *loaded)

	t.Setenv("NOTIFY_TOKEN", "from-env")
	loaded, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.Token)
}

func TestRun_Workflow(t *testing.T) {
	color.NoColor = true
	server := newAPIServer(t)
	t.Setenv("NOTIFY_API_URL", server.URL)
	t.Setenv("NOTIFY_TOKEN", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	ctx := context.Background()

	var out, errOut bytes.Buffer
	require.Equal(t, 0, run(ctx, []string{"login", "user_123"}, &out, &errOut, path), errOut.String())

	for _, args := range [][]string{
		{"send", "user_123", "social", "Alice", "liked", "your", "post"},
		{"send", "user_123", "promo", "Half price this weekend"},
		{"send", "user_123", "social", "Bob followed you"},
	} {
		out.Reset()
		require.Equal(t, 0, run(ctx, args, &out, &errOut, path), errOut.String())
		assert.Contains(t, out.String(), "created")
	}

	out.Reset()
	require.Equal(t, 0, run(ctx, []string{"list", "-category", "social"}, &out, &errOut, path), errOut.String())
	assert.Contains(t, out.String(), "Alice liked your post")
	assert.NotContains(t, out.String(), "Half price")
	assert.Contains(t, out.String(), "showing 2 of 3 (page 1/1, 3 unread on this page)")

	out.Reset()
	errOut.Reset()
	assert.Equal(t, 1, run(ctx, []string{"read", "missing"}, &out, &errOut, path))
	assert.Contains(t, errOut.String(), "404")

	out.Reset()
	assert.Equal(t, 0, run(ctx, []string{"cancel", "missing"}, &out, &errOut, path))
	assert.Contains(t, out.String(), "missing already removed")
}

func TestRun_Usage(t *testing.T) {
	var out, errOut bytes.Buffer
	path := filepath.Join(t.TempDir(), "config.yaml")

	assert.Equal(t, 2, run(context.Background(), nil, &out, &errOut, path))
	assert.Equal(t, 2, run(context.Background(), []string{"frobnicate"}, &out, &errOut, path))
	assert.Equal(t, 2, run(context.Background(), []string{"send", "user_123"}, &out, &errOut, path))
	assert.Equal(t, 2, run(context.Background(), []string{"list", "-owner", "user_123", "-page", "x"}, &out, &errOut, path))
	assert.Equal(t, 2, run(context.Background(), []string{"watch", "-bogus"}, &out, &errOut, path))

	errOut.Reset()
	assert.Equal(t, 2, run(context.Background(), []string{"list", "-owner", "user_123", "-status", "bogus"}, &out, &errOut, path))
	assert.Contains(t, errOut.String(), "-status must be one of all, read, unread")
}
