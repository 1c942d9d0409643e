package repository

import (
	"context"
	"fmt"
	"time"

	"ChatCRM/entity"
)

// CreateMessage persists a chat message and bumps the room's activity stamp.
// The author may be empty for system messages.
func (s *Storage) CreateMessage(ctx context.Context, roomID, authorID, body string, att *entity.Attachment) (*entity.ChatMessage, error) {
	if _, err := s.GetRoomByID(ctx, roomID); err != nil {
		return nil, err
	}

	msg := &entity.ChatMessage{
		RoomID:    roomID,
		Body:      body,
		Kind:      entity.MessageKindText,
		Timestamp: time.Now().UTC(),
	}
	if authorID != "" {
		msg.UserID = &authorID
	}
	if att != nil {
		msg.Kind = att.Kind
		msg.Image = att.Image
		msg.File = att.File
		msg.FileName = att.FileName
		msg.FileType = att.FileType
		msg.FileSize = att.FileSize
	}

	if err := s.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	err := s.db.WithContext(ctx).
		Model(&entity.ChatRoom{}).
		Where("room_id = ?", roomID).
		Update("updated_at", msg.Timestamp).Error
	if err != nil {
		s.log.Warn("failed to touch room", "room", roomID, "err", err)
	}
	return msg, nil
}

// ListMessages returns a page of room history, newest first.
func (s *Storage) ListMessages(ctx context.Context, roomID string, limit, offset int) ([]entity.ChatMessage, error) {
	if _, err := s.GetRoomByID(ctx, roomID); err != nil {
		return nil, err
	}

	var messages []entity.ChatMessage
	err := s.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("timestamp DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// CleanupMessages deletes messages older than the retention cutoff, always
// keeping the newest keepPerRoom messages in each room regardless of age.
func (s *Storage) CleanupMessages(ctx context.Context, olderThan time.Duration, keepPerRoom int) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)

	var roomIDs []string
	err := s.db.WithContext(ctx).
		Model(&entity.ChatMessage{}).
		Where("timestamp < ?", cutoff).
		Distinct("room_id").
		Pluck("room_id", &roomIDs).Error
	if err != nil {
		return 0, fmt.Errorf("cleanup messages: %w", err)
	}

	var total int64
	for _, roomID := range roomIDs {
		var keepIDs []int64
		err := s.db.WithContext(ctx).
			Model(&entity.ChatMessage{}).
			Where("room_id = ?", roomID).
			Order("timestamp DESC").
			Limit(keepPerRoom).
			Pluck("id", &keepIDs).Error
		if err != nil {
			return total, fmt.Errorf("cleanup messages: %w", err)
		}

		query := s.db.WithContext(ctx).
			Where("room_id = ? AND timestamp < ?", roomID, cutoff)
		if len(keepIDs) > 0 {
			query = query.Where("id NOT IN ?", keepIDs)
		}
		result := query.Delete(&entity.ChatMessage{})
		if result.Error != nil {
			return total, fmt.Errorf("cleanup messages: %w", result.Error)
		}
		total += result.RowsAffected
	}

	if total > 0 {
		s.log.Info("message retention cleanup", "deleted", total, "rooms", len(roomIDs))
	}
	return total, nil
}
