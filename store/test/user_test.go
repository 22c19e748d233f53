package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SurinderTech/findify-finder/store"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	user := createTestingUser(ctx, t, ts, "finder@example.com")
	require.NotZero(t, user.ID)
	require.Zero(t, user.Points)
	require.Zero(t, user.ItemsReturned)

	got, err := ts.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "finder@example.com", got.Email)

	email := "finder@example.com"
	got, err = ts.GetUser(ctx, &store.FindUser{Email: &email})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)
}

func TestAddReturnPoints(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts, "finder@example.com")

	require.NoError(t, ts.AddReturnPoints(ctx, user.ID, 10))

	// The cached copy is invalidated, so the credit is visible.
	got, err := ts.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.Equal(t, 10, got.Points)
	require.Equal(t, 1, got.ItemsReturned)

	require.NoError(t, ts.AddReturnPoints(ctx, user.ID, 10))
	got, err = ts.GetUser(ctx, &store.FindUser{ID: &user.ID})
	require.NoError(t, err)
	require.Equal(t, 20, got.Points)
	require.Equal(t, 2, got.ItemsReturned)

	require.Error(t, ts.AddReturnPoints(ctx, 9999, 10))
}

func TestNotificationStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts, "owner@example.com")
	item := createTestingItem(ctx, t, ts, user.ID, "Black Wallet", store.ItemStatusLost, "", "")

	notification, err := ts.CreateNotification(ctx, &store.Notification{
		UserID:        user.ID,
		Title:         "Potential match found!",
		Message:       `We found 1 potential match for your lost item "Black Wallet".`,
		RelatedItemID: &item.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, notification.ID)

	list, err := ts.ListNotifications(ctx, &store.FindNotification{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].IsRead)
	require.NotNil(t, list[0].RelatedItemID)
	require.Equal(t, item.ID, *list[0].RelatedItemID)

	isRead := true
	require.NoError(t, ts.UpdateNotification(ctx, &store.UpdateNotification{ID: notification.ID, IsRead: &isRead}))

	unread := false
	list, err = ts.ListNotifications(ctx, &store.FindNotification{UserID: &user.ID, IsRead: &unread})
	require.NoError(t, err)
	require.Empty(t, list)
}
