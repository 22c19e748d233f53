package matching

import (
	"context"
	"log/slog"

	"github.com/SurinderTech/findify-finder/internal/errors"
	"github.com/SurinderTech/findify-finder/store"
)

// LifecycleManager advances matches from pending to a terminal state and
// cascades item and reward updates on confirmation.
type LifecycleManager struct {
	store        Store
	notifier     Notifier
	rewardPoints int
	logger       *slog.Logger
}

// NewLifecycleManager creates a lifecycle manager. rewardPoints is the
// credit issued to the finder on a confirmed return.
func NewLifecycleManager(s Store, notifier Notifier, rewardPoints int) *LifecycleManager {
	if rewardPoints <= 0 {
		rewardPoints = 10
	}
	return &LifecycleManager{
		store:        s,
		notifier:     notifier,
		rewardPoints: rewardPoints,
		logger:       slog.Default(),
	}
}

// Confirm transitions a pending match to confirmed and cascades:
// the lost item becomes claimed, the found item becomes returned, both
// owners are notified, and the finder is credited reward points.
//
// Steps after the match status write are best-effort across independent
// collaborators: each failure is logged and later steps still run. A
// partially applied confirmation is by contract preferable to rolling back
// the confirmed match.
func (m *LifecycleManager) Confirm(ctx context.Context, matchID int32) (*store.Match, error) {
	match, err := m.transition(ctx, matchID, store.MatchStatusConfirmed)
	if err != nil {
		return nil, err
	}

	lostItem, foundItem := m.fetchPair(ctx, match)

	if lostItem != nil {
		claimed := store.ItemStatusClaimed
		if err := m.store.UpdateItem(ctx, &store.UpdateItem{ID: lostItem.ID, Status: &claimed}); err != nil {
			m.logger.Error("failed to mark lost item claimed",
				"match_id", match.ID, "item_id", lostItem.ID, "error", err)
		} else {
			lostItem.Status = claimed
		}
	}
	if foundItem != nil {
		returned := store.ItemStatusReturned
		if err := m.store.UpdateItem(ctx, &store.UpdateItem{ID: foundItem.ID, Status: &returned}); err != nil {
			m.logger.Error("failed to mark found item returned",
				"match_id", match.ID, "item_id", foundItem.ID, "error", err)
		} else {
			foundItem.Status = returned
		}
	}

	if m.notifier != nil && lostItem != nil && foundItem != nil {
		m.notifier.NotifyConfirmation(ctx, match, lostItem, foundItem)
	}

	if foundItem != nil {
		if err := m.store.AddReturnPoints(ctx, foundItem.OwnerID, m.rewardPoints); err != nil {
			m.logger.Error("failed to credit return points",
				"match_id", match.ID, "user_id", foundItem.OwnerID, "error", err)
		}
	}

	return match, nil
}

// Reject transitions a pending match to rejected. No cascades.
func (m *LifecycleManager) Reject(ctx context.Context, matchID int32) (*store.Match, error) {
	return m.transition(ctx, matchID, store.MatchStatusRejected)
}

func (m *LifecycleManager) transition(ctx context.Context, matchID int32, to store.MatchStatus) (*store.Match, error) {
	match, err := m.store.GetMatch(ctx, &store.FindMatch{ID: &matchID})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNotFound, "failed to fetch match")
	}
	if match == nil {
		return nil, errors.NotFound("match", matchID)
	}
	if match.Status != store.MatchStatusPending {
		return nil, errors.InvalidTransition(string(match.Status), string(to))
	}

	if err := m.store.UpdateMatch(ctx, &store.UpdateMatch{ID: match.ID, Status: &to}); err != nil {
		return nil, errors.PersistenceFailed("failed to update match status", err)
	}
	match.Status = to
	return match, nil
}

func (m *LifecycleManager) fetchPair(ctx context.Context, match *store.Match) (lostItem, foundItem *store.Item) {
	var err error
	lostItem, err = m.store.GetItem(ctx, &store.FindItem{ID: &match.LostItemID})
	if err != nil || lostItem == nil {
		m.logger.Error("failed to fetch lost item of confirmed match",
			"match_id", match.ID, "item_id", match.LostItemID, "error", err)
		lostItem = nil
	}
	foundItem, err = m.store.GetItem(ctx, &store.FindItem{ID: &match.FoundItemID})
	if err != nil || foundItem == nil {
		m.logger.Error("failed to fetch found item of confirmed match",
			"match_id", match.ID, "item_id", match.FoundItemID, "error", err)
		foundItem = nil
	}
	return lostItem, foundItem
}
