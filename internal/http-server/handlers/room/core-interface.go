package room

import (
	"context"

	"ChatCRM/entity"
)

type Core interface {
	// ListRooms returns the user's chat list, newest activity first.
	ListRooms(ctx context.Context, user *entity.User, limit, offset int) ([]entity.ChatRoom, error)
	// CreateRoom creates a room or, for DM rooms, returns the existing one
	// with the same pair of members. The bool reports reuse.
	CreateRoom(ctx context.Context, creator *entity.User, req *entity.CreateRoomRequest) (*entity.ChatRoom, bool, error)
}
