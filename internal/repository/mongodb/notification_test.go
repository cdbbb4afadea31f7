package mongodb_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/notihub/notification-backend-go/internal/pkg/database"
	"github.com/notihub/notification-backend-go/internal/repository/mongodb"
	"github.com/notihub/notification-backend-go/internal/repository/repotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRepository gives each test its own throwaway database on TEST_MONGO_URI
func newRepository(t *testing.T) notification.Repository {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	m, err := database.NewMongoDB(ctx, uri, fmt.Sprintf("notifications_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = m.Database.Drop(context.Background())
		_ = m.Close(context.Background())
	})

	require.NoError(t, mongodb.EnsureIndexes(ctx, m.Database))
	return mongodb.NewNotificationRepository(m.Database)
}

func TestNotificationRepository(t *testing.T) {
	repotest.Run(t, newRepository)
}

func TestNotificationRepository_MalformedID(t *testing.T) {
	repo := newRepository(t)

	_, err := repo.FindByID(context.Background(), "not-an-object-id", true)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	_, err = repo.FindByID(context.Background(), "65f000000000000000000000", false)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}
