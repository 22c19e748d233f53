package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SurinderTech/findify-finder/store"
)

func TestMatchStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts, "owner@example.com")
	lost := createTestingItem(ctx, t, ts, user.ID, "Black Wallet", store.ItemStatusLost, "", "")
	found := createTestingItem(ctx, t, ts, user.ID, "Leather Wallet", store.ItemStatusFound, "", "")

	match, err := ts.CreateMatch(ctx, &store.Match{
		LostItemID:  lost.ID,
		FoundItemID: found.ID,
		MatchScore:  87,
		Status:      store.MatchStatusPending,
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	require.NotZero(t, match.ID)

	got, err := ts.GetMatch(ctx, &store.FindMatch{
		LostItemID:  &lost.ID,
		FoundItemID: &found.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 87, got.MatchScore)
	require.Equal(t, store.MatchStatusPending, got.Status)

	// Either side of the pair finds the match.
	got, err = ts.GetMatch(ctx, &store.FindMatch{ItemID: &found.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, match.ID, got.ID)

	confirmed := store.MatchStatusConfirmed
	require.NoError(t, ts.UpdateMatch(ctx, &store.UpdateMatch{ID: match.ID, Status: &confirmed}))
	got, err = ts.GetMatch(ctx, &store.FindMatch{ID: &match.ID})
	require.NoError(t, err)
	require.Equal(t, store.MatchStatusConfirmed, got.Status)
}

func TestCreateMatchPairConflict(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user := createTestingUser(ctx, t, ts, "owner@example.com")
	lost := createTestingItem(ctx, t, ts, user.ID, "Black Wallet", store.ItemStatusLost, "", "")
	found := createTestingItem(ctx, t, ts, user.ID, "Leather Wallet", store.ItemStatusFound, "", "")

	first, err := ts.CreateMatch(ctx, &store.Match{
		LostItemID:  lost.ID,
		FoundItemID: found.ID,
		MatchScore:  87,
	})
	require.NoError(t, err)
	require.NotNil(t, first)

	// The unique pair index reports a duplicate as (nil, nil), not an error.
	duplicate, err := ts.CreateMatch(ctx, &store.Match{
		LostItemID:  lost.ID,
		FoundItemID: found.ID,
		MatchScore:  90,
	})
	require.NoError(t, err)
	require.Nil(t, duplicate)

	list, err := ts.ListMatches(ctx, &store.FindMatch{LostItemID: &lost.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 87, list[0].MatchScore)
}
