package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Item model related methods.
	CreateItem(ctx context.Context, create *Item) (*Item, error)
	ListItems(ctx context.Context, find *FindItem) ([]*Item, error)
	UpdateItem(ctx context.Context, update *UpdateItem) error
	ListItemsWithoutFeatures(ctx context.Context, find *FindItemsWithoutFeatures) ([]*Item, error)

	// ItemFeature model related methods.
	UpsertItemFeature(ctx context.Context, feature *ItemFeature) (*ItemFeature, error)
	ListItemFeatures(ctx context.Context, find *FindItemFeature) ([]*ItemFeature, error)
	DeleteItemFeature(ctx context.Context, itemID int32) error

	// SearchItemsByVector performs similarity search over stored vectors.
	// Postgres only; the sqlite driver returns an error.
	SearchItemsByVector(ctx context.Context, opts *VectorSearchOptions) ([]*ItemWithScore, error)

	// Match model related methods. CreateMatch returns (nil, nil) when the
	// unique pair index reports the pair already exists.
	CreateMatch(ctx context.Context, create *Match) (*Match, error)
	ListMatches(ctx context.Context, find *FindMatch) ([]*Match, error)
	UpdateMatch(ctx context.Context, update *UpdateMatch) error

	// Notification model related methods.
	CreateNotification(ctx context.Context, create *Notification) (*Notification, error)
	ListNotifications(ctx context.Context, find *FindNotification) ([]*Notification, error)
	UpdateNotification(ctx context.Context, update *UpdateNotification) error

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	AddReturnPoints(ctx context.Context, userID int32, points int) error
}
