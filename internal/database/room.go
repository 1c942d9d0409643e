package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ChatCRM/entity"
)

// CreateRoom inserts a room and its initial membership in one transaction.
// Member-count invariants (DM=2, SELF=1) are validated by the caller; the
// store only guarantees atomicity and unique membership rows.
func (s *Storage) CreateRoom(ctx context.Context, room *entity.ChatRoom, memberIDs []string) error {
	if room.RoomID == "" {
		room.RoomID = entity.NewShortID()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, userID := range memberIDs {
			member := entity.RoomMember{
				RoomID:   room.RoomID,
				UserID:   userID,
				JoinedAt: now,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// GetRoomByID loads a room by its short identifier.
func (s *Storage) GetRoomByID(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	var room entity.ChatRoom
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).First(&room).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &room, nil
}

// ListRoomsForUser returns every room the user belongs to, support rooms
// included. The connection lifecycle subscribes to this snapshot.
func (s *Storage) ListRoomsForUser(ctx context.Context, userID string) ([]entity.ChatRoom, error) {
	var rooms []entity.ChatRoom
	err := s.db.WithContext(ctx).
		Select("chat_rooms.*").
		Joins("JOIN room_members ON room_members.room_id = chat_rooms.room_id").
		Where("room_members.user_id = ?", userID).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("list rooms for user: %w", err)
	}
	return rooms, nil
}

// ListUserRooms returns the user's chat list: non-support rooms that either
// carry messages or were created by the user, newest activity first.
func (s *Storage) ListUserRooms(ctx context.Context, userID string, limit, offset int) ([]entity.ChatRoom, error) {
	var rooms []entity.ChatRoom
	err := s.db.WithContext(ctx).
		Select("chat_rooms.*").
		Joins("JOIN room_members ON room_members.room_id = chat_rooms.room_id").
		Where("room_members.user_id = ?", userID).
		Where("chat_rooms.type <> ?", entity.RoomTypeSupport).
		Where(
			"EXISTS (SELECT 1 FROM chat_messages WHERE chat_messages.room_id = chat_rooms.room_id) OR chat_rooms.created_by_id = ?",
			userID,
		).
		Order("chat_rooms.updated_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("list user rooms: %w", err)
	}

	for i := range rooms {
		if err := s.hydrateRoom(ctx, &rooms[i], userID); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

// ListRoomMembers resolves the live member set of a room. An unknown room
// yields an empty slice, never an error: an in-flight event with a stale
// room reference simply has zero targets.
func (s *Storage) ListRoomMembers(ctx context.Context, roomID string) ([]string, error) {
	var userIDs []string
	err := s.db.WithContext(ctx).
		Model(&entity.RoomMember{}).
		Where("room_id = ?", roomID).
		Order("joined_at ASC").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, fmt.Errorf("list room members: %w", err)
	}
	return userIDs, nil
}

// IsMember reports whether the user currently belongs to the room.
func (s *Storage) IsMember(ctx context.Context, roomID, userID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&entity.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return count > 0, nil
}

// AddMember joins a user to a room. Adding an existing member is a no-op.
func (s *Storage) AddMember(ctx context.Context, roomID, userID string) error {
	member := entity.RoomMember{
		RoomID:   roomID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error
	if err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

// FindExistingDMRoom returns the DM room whose member set equals exactly the
// two given users, in either order, or nil when none exists.
func (s *Storage) FindExistingDMRoom(ctx context.Context, userA, userB string) (*entity.ChatRoom, error) {
	var rooms []entity.ChatRoom
	err := s.db.WithContext(ctx).
		Where("type = ?", entity.RoomTypeDM).
		Where("(SELECT COUNT(*) FROM room_members WHERE room_members.room_id = chat_rooms.room_id) = 2").
		Where(
			"EXISTS (SELECT 1 FROM room_members WHERE room_members.room_id = chat_rooms.room_id AND room_members.user_id = ?)",
			userA,
		).
		Where(
			"EXISTS (SELECT 1 FROM room_members WHERE room_members.room_id = chat_rooms.room_id AND room_members.user_id = ?)",
			userB,
		).
		Limit(1).
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("find dm room: %w", err)
	}
	if len(rooms) == 0 {
		return nil, nil
	}
	return &rooms[0], nil
}

// MarkRoomRead stamps the membership row and returns the new read time.
func (s *Storage) MarkRoomRead(ctx context.Context, roomID, userID string) (time.Time, error) {
	if _, err := s.GetRoomByID(ctx, roomID); err != nil {
		return time.Time{}, err
	}

	now := time.Now().UTC()
	result := s.db.WithContext(ctx).
		Model(&entity.RoomMember{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_read_at", now)
	if result.Error != nil {
		return time.Time{}, fmt.Errorf("mark room read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return time.Time{}, ErrForbidden
	}
	return now, nil
}

// hydrateRoom fills the transient Members and Unread fields.
func (s *Storage) hydrateRoom(ctx context.Context, room *entity.ChatRoom, forUserID string) error {
	memberIDs, err := s.ListRoomMembers(ctx, room.RoomID)
	if err != nil {
		return err
	}
	room.Members, err = s.getUsersByIDs(ctx, memberIDs)
	if err != nil {
		return err
	}

	if forUserID == "" {
		return nil
	}

	var member entity.RoomMember
	err = s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", room.RoomID, forUserID).
		First(&member).Error
	if err != nil {
		return nil // not a member: no unread count
	}

	query := s.db.WithContext(ctx).
		Model(&entity.ChatMessage{}).
		Where("room_id = ?", room.RoomID).
		Where("user_id IS NULL OR user_id <> ?", forUserID)
	if member.LastReadAt != nil {
		query = query.Where("timestamp > ?", *member.LastReadAt)
	}
	if err := query.Count(&room.Unread).Error; err != nil {
		return fmt.Errorf("count unread: %w", err)
	}
	return nil
}
