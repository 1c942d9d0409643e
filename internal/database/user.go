package repository

import (
	"context"
	"fmt"

	"ChatCRM/entity"
)

// GetUserByID resolves a user by its short wire identifier.
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	var user entity.User
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUserByUsername resolves a user by login name.
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*entity.User, error) {
	var user entity.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// CreateUser inserts a new user record.
func (s *Storage) CreateUser(ctx context.Context, user *entity.User) error {
	if user == nil {
		return fmt.Errorf("user cannot be nil")
	}
	if user.UserID == "" {
		user.UserID = entity.NewShortID()
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// getUsersByIDs loads user records preserving no particular order.
func (s *Storage) getUsersByIDs(ctx context.Context, userIDs []string) ([]entity.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var users []entity.User
	err := s.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}
