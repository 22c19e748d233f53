// Package test provides a sqlite-backed store harness for driver tests.
package test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SurinderTech/findify-finder/internal/profile"
	"github.com/SurinderTech/findify-finder/store"
	"github.com/SurinderTech/findify-finder/store/db"
)

// NewTestingStore creates a migrated store over a throwaway sqlite file.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	dir := t.TempDir()
	testProfile := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: "sqlite",
		DSN:    filepath.Join(dir, "findify_test.db"),
	}
	require.NoError(t, testProfile.Validate())

	dbDriver, err := db.NewDBDriver(testProfile)
	require.NoError(t, err)

	ts := store.New(dbDriver, testProfile)
	require.NoError(t, ts.Migrate(ctx))
	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}

func createTestingUser(ctx context.Context, t *testing.T, ts *store.Store, email string) *store.User {
	user, err := ts.CreateUser(ctx, &store.User{
		Email:    email,
		FullName: "Test User",
	})
	require.NoError(t, err)
	return user
}

func createTestingItem(ctx context.Context, t *testing.T, ts *store.Store, ownerID int32, title string, status store.ItemStatus, location, imageURL string) *store.Item {
	item, err := ts.CreateItem(ctx, &store.Item{
		UID:          fmt.Sprintf("uid-%s-%d", title, ownerID),
		OwnerID:      ownerID,
		Title:        title,
		Status:       status,
		Location:     location,
		DateReported: 1700000000,
		ImageURL:     imageURL,
	})
	require.NoError(t, err)
	return item
}
