package support

import (
	"context"

	"ChatCRM/entity"
)

type Core interface {
	// ListSupportRooms returns the agent queue, expired claims released.
	ListSupportRooms(ctx context.Context) ([]entity.ChatRoom, error)
	// TakeSupportRoom claims the room for the agent. A live claim by
	// another agent yields ErrClaimConflict.
	TakeSupportRoom(ctx context.Context, agent *entity.User, roomID string) (*entity.ChatRoom, error)
	// ReleaseSupportRoom clears the claim. Assigned agent or admin only.
	ReleaseSupportRoom(ctx context.Context, actor *entity.User, roomID string) (*entity.ChatRoom, error)
}
