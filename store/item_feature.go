package store

import "context"

// ItemFeature represents the stored feature vector of an item image.
type ItemFeature struct {
	ID        int32
	ItemID    int32
	Vector    []float32
	Model     string
	CreatedTs int64
	UpdatedTs int64
}

// FindItemFeature is the find condition for item features.
type FindItemFeature struct {
	ItemID *int32
	Model  *string
}

// ItemWithScore represents a vector search result with similarity score.
type ItemWithScore struct {
	Item *Item
	// Score is cosine similarity in [0, 1], higher is more similar.
	Score float64
}

// VectorSearchOptions represents the options for vector search.
type VectorSearchOptions struct {
	// Status restricts results to items of this status.
	Status ItemStatus
	// Vector is the probe feature vector.
	Vector []float32
	// Limit is the number of results to return, default 10.
	Limit int
}

// UpsertItemFeature inserts or updates an item feature vector.
func (s *Store) UpsertItemFeature(ctx context.Context, feature *ItemFeature) (*ItemFeature, error) {
	return s.driver.UpsertItemFeature(ctx, feature)
}

// GetItemFeature gets the feature vector of a specific item.
func (s *Store) GetItemFeature(ctx context.Context, itemID int32, model string) (*ItemFeature, error) {
	list, err := s.driver.ListItemFeatures(ctx, &FindItemFeature{
		ItemID: &itemID,
		Model:  &model,
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// ListItemFeatures lists item features.
func (s *Store) ListItemFeatures(ctx context.Context, find *FindItemFeature) ([]*ItemFeature, error) {
	return s.driver.ListItemFeatures(ctx, find)
}

// DeleteItemFeature deletes an item feature.
func (s *Store) DeleteItemFeature(ctx context.Context, itemID int32) error {
	return s.driver.DeleteItemFeature(ctx, itemID)
}

// SearchItemsByVector performs vector similarity search. Only the postgres
// driver supports this; callers must fall back to a full candidate scan
// when it fails.
func (s *Store) SearchItemsByVector(ctx context.Context, opts *VectorSearchOptions) ([]*ItemWithScore, error) {
	return s.driver.SearchItemsByVector(ctx, opts)
}
