package store

import "context"

// MatchStatus is the lifecycle status of a match.
type MatchStatus string

const (
	// MatchStatusPending is a freshly created match awaiting review.
	MatchStatusPending MatchStatus = "pending"
	// MatchStatusConfirmed is a terminal, accepted match.
	MatchStatusConfirmed MatchStatus = "confirmed"
	// MatchStatusRejected is a terminal, declined match.
	MatchStatusRejected MatchStatus = "rejected"
)

// Match is a candidate pairing between a lost item and a found item.
// At most one match exists per (lost_item_id, found_item_id) pair,
// enforced by a unique index in both drivers.
type Match struct {
	ID          int32
	LostItemID  int32
	FoundItemID int32
	// MatchScore is an integer confidence in [0, 100].
	MatchScore int
	Status     MatchStatus
	CreatedTs  int64
}

// FindMatch is the find condition for matches.
type FindMatch struct {
	ID          *int32
	LostItemID  *int32
	FoundItemID *int32
	// ItemID matches either side of the pair.
	ItemID *int32
	Status *MatchStatus

	Limit *int
}

// UpdateMatch is the update request for matches.
type UpdateMatch struct {
	ID     int32
	Status *MatchStatus
}

// CreateMatch creates a new match. When the unique pair index rejects the
// insert because the pair already exists, it returns (nil, nil) so a
// concurrent duplicate is indistinguishable from a pre-existing one.
func (s *Store) CreateMatch(ctx context.Context, create *Match) (*Match, error) {
	return s.driver.CreateMatch(ctx, create)
}

// ListMatches lists matches with filter.
func (s *Store) ListMatches(ctx context.Context, find *FindMatch) ([]*Match, error) {
	return s.driver.ListMatches(ctx, find)
}

// GetMatch gets a single match, or nil when no match matches the filter.
func (s *Store) GetMatch(ctx context.Context, find *FindMatch) (*Match, error) {
	list, err := s.driver.ListMatches(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateMatch updates a match.
func (s *Store) UpdateMatch(ctx context.Context, update *UpdateMatch) error {
	return s.driver.UpdateMatch(ctx, update)
}
