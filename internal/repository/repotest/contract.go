// Package repotest holds the behaviour every notification.Repository backend must share.
package repotest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty repository for a single test
type Factory func(t *testing.T) notification.Repository

// Run executes the repository contract against the backend built by newRepo
func Run(t *testing.T, newRepo Factory) {
	t.Run("CreateAppliesDefaults", func(t *testing.T) { testCreateDefaults(t, newRepo(t)) })
	t.Run("FindByIDUnknown", func(t *testing.T) { testFindByIDUnknown(t, newRepo(t)) })
	t.Run("PaginationNewestFirst", func(t *testing.T) { testPagination(t, newRepo(t)) })
	t.Run("InvalidPagination", func(t *testing.T) { testInvalidPagination(t, newRepo(t)) })
	t.Run("CancelHidesRecord", func(t *testing.T) { testCancelHides(t, newRepo(t)) })
	t.Run("SaveIsMonotonic", func(t *testing.T) { testSaveMonotonic(t, newRepo(t)) })
	t.Run("SaveUnknown", func(t *testing.T) { testSaveUnknown(t, newRepo(t)) })
	t.Run("OwnersAreIsolated", func(t *testing.T) { testOwnerIsolation(t, newRepo(t)) })
}

func testCreateDefaults(t *testing.T, repo notification.Repository) {
	ctx := context.Background()

	n, err := repo.Create(ctx, "user_123", "You got a new like", "social")
	require.NoError(t, err)

	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "user_123", n.OwnerID)
	assert.Equal(t, "You got a new like", n.Content)
	assert.Equal(t, "social", n.Category)
	assert.False(t, n.Read)
	assert.Nil(t, n.CanceledAt)
	assert.False(t, n.CreatedAt.IsZero())
	assert.True(t, n.CreatedAt.Equal(n.UpdatedAt))

	found, err := repo.FindByID(ctx, n.ID, false)
	require.NoError(t, err)
	assert.Equal(t, n.ID, found.ID)
	assert.True(t, n.CreatedAt.Equal(found.CreatedAt))
}

func testFindByIDUnknown(t *testing.T, repo notification.Repository) {
	_, err := repo.FindByID(context.Background(), "does-not-exist", false)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	_, err = repo.FindByID(context.Background(), "does-not-exist", true)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func testPagination(t *testing.T, repo notification.Repository) {
	ctx := context.Background()

	created := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		n, err := repo.Create(ctx, "user_123", fmt.Sprintf("message %02d", i), "social")
		require.NoError(t, err)
		created = append(created, n.ID)
		time.Sleep(2 * time.Millisecond)
	}

	seen := make(map[string]bool)
	var ordered []string
	for page, want := range map[int]int{1: 5, 2: 5, 3: 2, 4: 0} {
		items, err := repo.FindManyByOwner(ctx, "user_123", page, 5, false)
		require.NoError(t, err)
		assert.Len(t, items, want, "page %d", page)
		for _, n := range items {
			assert.False(t, seen[n.ID], "record %s appears on more than one page", n.ID)
			seen[n.ID] = true
		}
	}
	assert.Len(t, seen, 12)

	for page := 1; page <= 3; page++ {
		items, err := repo.FindManyByOwner(ctx, "user_123", page, 5, false)
		require.NoError(t, err)
		for _, n := range items {
			ordered = append(ordered, n.ID)
		}
	}
	for i := range ordered {
		assert.Equal(t, created[len(created)-1-i], ordered[i], "position %d", i)
	}

	total, err := repo.CountByOwner(ctx, "user_123", false)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}

func testInvalidPagination(t *testing.T, repo notification.Repository) {
	ctx := context.Background()

	_, err := repo.FindManyByOwner(ctx, "user_123", 0, 10, false)
	assert.ErrorIs(t, err, notification.ErrInvalidPagination)

	_, err = repo.FindManyByOwner(ctx, "user_123", 1, 0, false)
	assert.ErrorIs(t, err, notification.ErrInvalidPagination)

	// (page-1)*5 would wrap to -1
	_, err = repo.FindManyByOwner(ctx, "user_123", 3689348814741910324, 5, false)
	assert.ErrorIs(t, err, notification.ErrInvalidPagination)
}

func testCancelHides(t *testing.T, repo notification.Repository) {
	ctx := context.Background()

	keep, err := repo.Create(ctx, "user_123", "still here", "promo")
	require.NoError(t, err)
	gone, err := repo.Create(ctx, "user_123", "going away", "promo")
	require.NoError(t, err)

	gone.Cancel(time.Now())
	saved, err := repo.Save(ctx, gone)
	require.NoError(t, err)
	require.NotNil(t, saved.CanceledAt)

	_, err = repo.FindByID(ctx, gone.ID, false)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	stored, err := repo.FindByID(ctx, gone.ID, true)
	require.NoError(t, err)
	assert.True(t, stored.IsCanceled())

	items, err := repo.FindManyByOwner(ctx, "user_123", 1, 10, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, keep.ID, items[0].ID)

	items, err = repo.FindManyByOwner(ctx, "user_123", 1, 10, true)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	active, err := repo.CountByOwner(ctx, "user_123", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)

	all, err := repo.CountByOwner(ctx, "user_123", true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all)
}

func testSaveMonotonic(t *testing.T, repo notification.Repository) {
	ctx := context.Background()

	n, err := repo.Create(ctx, "user_123", "read me later", "system")
	require.NoError(t, err)
	stale := *n

	n.MarkRead()
	n.Cancel(time.Now())
	saved, err := repo.Save(ctx, n)
	require.NoError(t, err)
	require.True(t, saved.Read)
	require.NotNil(t, saved.CanceledAt)
	firstCancel := *saved.CanceledAt

	again, err := repo.Save(ctx, &stale)
	require.NoError(t, err)
	assert.True(t, again.Read)
	require.NotNil(t, again.CanceledAt)
	assert.True(t, firstCancel.Equal(*again.CanceledAt))
	assert.False(t, again.UpdatedAt.Before(again.CreatedAt))
}

func testSaveUnknown(t *testing.T, repo notification.Repository) {
	_, err := repo.Save(context.Background(), &notification.Notification{ID: "does-not-exist", Read: true})
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
}

func testOwnerIsolation(t *testing.T, repo notification.Repository) {
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice_01", "for alice", "social")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "bob_001", "for bob", "social")
	require.NoError(t, err)

	items, err := repo.FindManyByOwner(ctx, "alice_01", 1, 10, false)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "alice_01", items[0].OwnerID)

	total, err := repo.CountByOwner(ctx, "nobody", false)
	require.NoError(t, err)
	assert.Zero(t, total)
}
