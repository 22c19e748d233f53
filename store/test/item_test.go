package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SurinderTech/findify-finder/store"
)

func TestItemStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts, "owner@example.com")

	wallet := createTestingItem(ctx, t, ts, user.ID, "Black Wallet", store.ItemStatusLost, "Central Park", "assets/wallet.jpg")
	umbrella := createTestingItem(ctx, t, ts, user.ID, "Umbrella", store.ItemStatusFound, "Times Square", "")

	got, err := ts.GetItem(ctx, &store.FindItem{ID: &wallet.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Black Wallet", got.Title)
	require.Equal(t, store.ItemStatusLost, got.Status)
	require.NotZero(t, got.CreatedTs)

	lost := store.ItemStatusLost
	list, err := ts.ListItems(ctx, &store.FindItem{Status: &lost})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, wallet.ID, list[0].ID)

	// ExcludeID drops the probe item.
	list, err = ts.ListItems(ctx, &store.FindItem{ExcludeID: &wallet.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, umbrella.ID, list[0].ID)

	// Location filtering is a case-insensitive substring.
	needle := "central park"
	list, err = ts.ListItems(ctx, &store.FindItem{LocationContains: &needle})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, wallet.ID, list[0].ID)

	claimed := store.ItemStatusClaimed
	require.NoError(t, ts.UpdateItem(ctx, &store.UpdateItem{ID: wallet.ID, Status: &claimed}))
	got, err = ts.GetItem(ctx, &store.FindItem{ID: &wallet.ID})
	require.NoError(t, err)
	require.Equal(t, store.ItemStatusClaimed, got.Status)
}

func TestListItemsWithoutFeatures(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts, "owner@example.com")

	withImage := createTestingItem(ctx, t, ts, user.ID, "Wallet", store.ItemStatusLost, "", "assets/wallet.jpg")
	createTestingItem(ctx, t, ts, user.ID, "No Image", store.ItemStatusLost, "", "")
	claimed := createTestingItem(ctx, t, ts, user.ID, "Claimed", store.ItemStatusLost, "", "assets/claimed.jpg")
	claimedStatus := store.ItemStatusClaimed
	require.NoError(t, ts.UpdateItem(ctx, &store.UpdateItem{ID: claimed.ID, Status: &claimedStatus}))

	// Only active items with an image and no stored vector qualify.
	pending, err := ts.ListItemsWithoutFeatures(ctx, &store.FindItemsWithoutFeatures{Model: "test-model", Limit: 10})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, withImage.ID, pending[0].ID)

	_, err = ts.UpsertItemFeature(ctx, &store.ItemFeature{
		ItemID: withImage.ID,
		Vector: []float32{0.1, 0.2, 0.3},
		Model:  "test-model",
	})
	require.NoError(t, err)

	pending, err = ts.ListItemsWithoutFeatures(ctx, &store.FindItemsWithoutFeatures{Model: "test-model", Limit: 10})
	require.NoError(t, err)
	require.Empty(t, pending)

	// A different model still needs extraction.
	pending, err = ts.ListItemsWithoutFeatures(ctx, &store.FindItemsWithoutFeatures{Model: "other-model", Limit: 10})
	require.NoError(t, err)
	require.Len(t, pending, 1)
}
