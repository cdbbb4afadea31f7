package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/notihub/notification-backend-go/internal/pkg/database"
	"github.com/notihub/notification-backend-go/internal/repository/repotest"
	"github.com/notihub/notification-backend-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepository(t *testing.T) notification.Repository {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := sqlite.NewNotificationRepository(context.Background(), db)
	require.NoError(t, err)
	return repo
}

func TestNotificationRepository(t *testing.T) {
	repotest.Run(t, newRepository)
}

func TestNotificationRepository_StoreUnavailable(t *testing.T) {
	db, err := database.NewSQLiteDB(":memory:")
	require.NoError(t, err)

	repo, err := sqlite.NewNotificationRepository(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = repo.Create(context.Background(), "user_123", "You got a new like", "social")
	require.Error(t, err)
	assert.True(t, errors.Is(err, notification.ErrStoreUnavailable))

	_, err = repo.FindByID(context.Background(), "any", false)
	assert.ErrorIs(t, err, notification.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, notification.ErrNotificationNotFound)
}
