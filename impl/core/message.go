package core

import (
	"context"
	"time"

	"ChatCRM/entity"
	"ChatCRM/internal/database"
)

// ListMessages returns room history for members only.
func (c *Core) ListMessages(ctx context.Context, user *entity.User, roomID string, limit, offset int) ([]entity.ChatMessage, error) {
	if err := c.requireMember(ctx, roomID, user); err != nil {
		return nil, err
	}
	return c.repo.ListMessages(ctx, roomID, limit, offset)
}

// SendMessage persists the message and delivers it to each member's
// personal channel, same path the socket takes.
func (c *Core) SendMessage(ctx context.Context, sender *entity.User, roomID, body string) (*entity.ChatMessage, error) {
	if err := c.requireMember(ctx, roomID, sender); err != nil {
		return nil, err
	}

	msg, err := c.repo.CreateMessage(ctx, roomID, sender.UserID, body, nil)
	if err != nil {
		return nil, err
	}

	c.fanOut(ctx, sender, msg)
	return msg, nil
}

// MarkRead stamps the caller's read cursor on the room.
func (c *Core) MarkRead(ctx context.Context, user *entity.User, roomID string) (time.Time, error) {
	return c.repo.MarkRoomRead(ctx, roomID, user.UserID)
}

// requireMember checks membership and, for claimed support rooms, that an
// agent caller is the assigned one. An agent who lost the claim stays a
// member but may no longer write.
func (c *Core) requireMember(ctx context.Context, roomID string, user *entity.User) error {
	room, err := c.repo.GetRoomByID(ctx, roomID)
	if err != nil {
		return err
	}

	ok, err := c.repo.IsMember(ctx, roomID, user.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return repository.ErrForbidden
	}

	if room.Type == entity.RoomTypeSupport && user.IsAgent() && room.IsClaimed() {
		if *room.AssignedAgentID != user.UserID && !user.IsAdmin() {
			return repository.ErrForbidden
		}
	}
	return nil
}

func (c *Core) fanOut(ctx context.Context, sender *entity.User, msg *entity.ChatMessage) {
	payload := entity.MessagePayload{
		Action:    entity.ActionMessage,
		UserID:    sender.UserID,
		RoomID:    msg.RoomID,
		Message:   msg.Body,
		UserName:  sender.FullName(),
		UserImage: sender.Image,
		Timestamp: msg.Timestamp.Format(time.RFC3339),
		Image:     msg.Image,
		File:      msg.File,
		FileName:  msg.FileName,
		FileType:  msg.FileType,
		FileSize:  msg.FileSize,
		Kind:      msg.Kind,
	}
	if room, err := c.repo.GetRoomByID(ctx, msg.RoomID); err == nil {
		payload.ChatType = room.Type
	}

	if _, err := c.router.FanOut(ctx, msg.RoomID, payload); err != nil {
		c.log.Error("fan out message", "room", msg.RoomID, "err", err)
	}
}
