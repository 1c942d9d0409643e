package user

import (
	"context"

	"ChatCRM/entity"
)

type Core interface {
	GetUser(ctx context.Context, userID string) (*entity.User, error)
	CreateUser(ctx context.Context, user *entity.User) (*entity.User, error)
}
