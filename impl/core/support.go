package core

import (
	"context"

	"ChatCRM/entity"
)

// ListSupportRooms returns the agent queue. Expired claims are released by
// the store before the listing is built.
func (c *Core) ListSupportRooms(ctx context.Context) ([]entity.ChatRoom, error) {
	return c.repo.ListSupportRooms(ctx, c.conf.SupportClaimWindow())
}

// TakeSupportRoom claims the room for the agent and tells every connected
// client the queue changed.
func (c *Core) TakeSupportRoom(ctx context.Context, agent *entity.User, roomID string) (*entity.ChatRoom, error) {
	room, err := c.repo.TakeSupportRoom(ctx, roomID, agent.UserID, c.conf.SupportClaimWindow())
	if err != nil {
		return nil, err
	}
	c.router.BroadcastSupportUpdate(roomID)
	return room, nil
}

// ReleaseSupportRoom clears the claim and broadcasts the queue change.
func (c *Core) ReleaseSupportRoom(ctx context.Context, actor *entity.User, roomID string) (*entity.ChatRoom, error) {
	room, err := c.repo.ReleaseSupportRoom(ctx, roomID, actor)
	if err != nil {
		return nil, err
	}
	c.router.BroadcastSupportUpdate(roomID)
	return room, nil
}
