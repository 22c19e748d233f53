package store

import "context"

// Notification is an in-app notification. The matching pipeline only ever
// inserts these; marking as read is a client concern.
type Notification struct {
	ID            int32
	UserID        int32
	Title         string
	Message       string
	IsRead        bool
	RelatedItemID *int32
	CreatedTs     int64
}

// FindNotification is the find condition for notifications.
type FindNotification struct {
	ID     *int32
	UserID *int32
	IsRead *bool

	Limit *int
}

// UpdateNotification is the update request for notifications.
type UpdateNotification struct {
	ID     int32
	IsRead *bool
}

// CreateNotification creates a new notification.
func (s *Store) CreateNotification(ctx context.Context, create *Notification) (*Notification, error) {
	return s.driver.CreateNotification(ctx, create)
}

// ListNotifications lists notifications with filter.
func (s *Store) ListNotifications(ctx context.Context, find *FindNotification) ([]*Notification, error) {
	return s.driver.ListNotifications(ctx, find)
}

// UpdateNotification updates a notification.
func (s *Store) UpdateNotification(ctx context.Context, update *UpdateNotification) error {
	return s.driver.UpdateNotification(ctx, update)
}
