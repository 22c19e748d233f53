package store

import (
	"context"
	"fmt"
)

// User is a profile record. The matching pipeline reads id/email and issues
// point credits; it does not own this entity's lifecycle.
type User struct {
	ID            int32
	Email         string
	FullName      string
	Phone         string
	Points        int
	ItemsReturned int
	CreatedTs     int64
}

// FindUser is the find condition for users.
type FindUser struct {
	ID    *int32
	Email *string
}

// UpdateUser is the update request for users.
type UpdateUser struct {
	ID       int32
	FullName *string
	Phone    *string
}

// CreateUser creates a new user.
func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	user, err := s.driver.CreateUser(ctx, create)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

// GetUser gets a single user, or nil when no user matches.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	if find.ID != nil && find.Email == nil {
		if cached, ok := s.userCache.Get(ctx, userCacheKey(*find.ID)); ok {
			if user, ok := cached.(*User); ok {
				return user, nil
			}
		}
	}

	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	user := list[0]
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

// UpdateUser updates a user.
func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Set(ctx, userCacheKey(user.ID), user)
	return user, nil
}

// AddReturnPoints atomically credits reward points to a user and increments
// their returned-item count.
func (s *Store) AddReturnPoints(ctx context.Context, userID int32, points int) error {
	if err := s.driver.AddReturnPoints(ctx, userID, points); err != nil {
		return err
	}
	s.userCache.Delete(ctx, userCacheKey(userID))
	return nil
}

func userCacheKey(id int32) string {
	return fmt.Sprintf("user:%d", id)
}
