package store

import "context"

// ItemStatus is the status of an item report.
type ItemStatus string

const (
	// ItemStatusLost is a lost item report.
	ItemStatusLost ItemStatus = "lost"
	// ItemStatusFound is a found item report.
	ItemStatusFound ItemStatus = "found"
	// ItemStatusClaimed is a lost item whose match has been confirmed.
	ItemStatusClaimed ItemStatus = "claimed"
	// ItemStatusReturned is a found item whose match has been confirmed.
	ItemStatusReturned ItemStatus = "returned"
)

// Opposite returns the status a candidate must have to be matchable
// against an item of this status. Terminal statuses have no opposite.
func (s ItemStatus) Opposite() ItemStatus {
	switch s {
	case ItemStatusLost:
		return ItemStatusFound
	case ItemStatusFound:
		return ItemStatusLost
	}
	return ""
}

// Item is the object representing a lost or found report.
type Item struct {
	ID           int32
	UID          string
	OwnerID      int32
	Title        string
	Description  string
	Category     string
	Status       ItemStatus
	Location     string
	DateReported int64
	ImageURL     string
	CreatedTs    int64
	UpdatedTs    int64
}

// FindItem is the find condition for items.
type FindItem struct {
	ID      *int32
	UID     *string
	OwnerID *int32
	Status  *ItemStatus

	// ExcludeID removes a single item from the result set.
	ExcludeID *int32
	// LocationContains filters by case-insensitive location substring.
	LocationContains *string

	Limit  *int
	Offset *int
}

// UpdateItem is the update request for items.
type UpdateItem struct {
	ID        int32
	Status    *ItemStatus
	ImageURL  *string
	UpdatedTs *int64
}

// FindItemsWithoutFeatures is the find condition for items missing a
// stored feature vector for the given model.
type FindItemsWithoutFeatures struct {
	Model string
	Limit int
}

// CreateItem creates a new item.
func (s *Store) CreateItem(ctx context.Context, create *Item) (*Item, error) {
	return s.driver.CreateItem(ctx, create)
}

// ListItems lists items with filter.
func (s *Store) ListItems(ctx context.Context, find *FindItem) ([]*Item, error) {
	return s.driver.ListItems(ctx, find)
}

// GetItem gets a single item, or nil when no item matches.
func (s *Store) GetItem(ctx context.Context, find *FindItem) (*Item, error) {
	list, err := s.driver.ListItems(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateItem updates an item.
func (s *Store) UpdateItem(ctx context.Context, update *UpdateItem) error {
	return s.driver.UpdateItem(ctx, update)
}

// ListItemsWithoutFeatures lists items that have no stored feature vector yet.
func (s *Store) ListItemsWithoutFeatures(ctx context.Context, find *FindItemsWithoutFeatures) ([]*Item, error) {
	return s.driver.ListItemsWithoutFeatures(ctx, find)
}
