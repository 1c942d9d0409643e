package message

import (
	"context"
	"time"

	"ChatCRM/entity"
)

type Core interface {
	// ListMessages returns a page of room history, newest first. Non-members
	// get ErrForbidden.
	ListMessages(ctx context.Context, user *entity.User, roomID string, limit, offset int) ([]entity.ChatMessage, error)
	// SendMessage persists a text message and fans it out to the members'
	// personal channels.
	SendMessage(ctx context.Context, sender *entity.User, roomID, body string) (*entity.ChatMessage, error)
	// MarkRead stamps the sender's read cursor and returns the new time.
	MarkRead(ctx context.Context, user *entity.User, roomID string) (time.Time, error)
}
