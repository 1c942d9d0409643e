package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"ChatCRM/entity"
)

// TakeSupportRoom assigns the support room to the agent. The claim succeeds
// when the room is unclaimed, already held by the same agent (refreshes the
// stamp), or held by another agent whose claim has expired. A live claim by
// another agent yields ErrClaimConflict. The winning agent is joined to the
// room so targeted delivery reaches them.
func (s *Storage) TakeSupportRoom(ctx context.Context, roomID, agentID string, window time.Duration) (*entity.ChatRoom, error) {
	var claimed *entity.ChatRoom

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room entity.ChatRoom
		err := tx.Where("room_id = ? AND type = ?", roomID, entity.RoomTypeSupport).First(&room).Error
		if err != nil {
			return notFound(err)
		}

		if room.IsClaimed() && *room.AssignedAgentID != agentID && !room.ClaimExpired(window) {
			return ErrClaimConflict
		}

		now := time.Now().UTC()
		room.AssignedAgentID = &agentID
		room.TakenAt = &now
		err = tx.Model(&entity.ChatRoom{}).
			Where("room_id = ?", roomID).
			Updates(map[string]any{"assigned_agent_id": agentID, "taken_at": now}).Error
		if err != nil {
			return err
		}

		member := entity.RoomMember{RoomID: roomID, UserID: agentID, JoinedAt: now}
		err = tx.Where("room_id = ? AND user_id = ?", roomID, agentID).
			FirstOrCreate(&member).Error
		if err != nil {
			return err
		}

		claimed = &room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ReleaseSupportRoom clears the claim. Only the assigned agent or an admin
// may release; anyone else gets ErrForbidden. Releasing an unclaimed room is
// a no-op.
func (s *Storage) ReleaseSupportRoom(ctx context.Context, roomID string, actor *entity.User) (*entity.ChatRoom, error) {
	var released *entity.ChatRoom

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room entity.ChatRoom
		err := tx.Where("room_id = ? AND type = ?", roomID, entity.RoomTypeSupport).First(&room).Error
		if err != nil {
			return notFound(err)
		}

		if room.IsClaimed() && *room.AssignedAgentID != actor.UserID && !actor.IsAdmin() {
			return ErrForbidden
		}

		room.AssignedAgentID = nil
		room.TakenAt = nil
		err = tx.Model(&entity.ChatRoom{}).
			Where("room_id = ?", roomID).
			Updates(map[string]any{"assigned_agent_id": nil, "taken_at": nil}).Error
		if err != nil {
			return err
		}

		released = &room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// ListSupportRooms returns the support queue, expired claims swept first.
// Sweeping is lazy: no timer clears a stale claim, the next listing does.
func (s *Storage) ListSupportRooms(ctx context.Context, window time.Duration) ([]entity.ChatRoom, error) {
	if err := s.sweepExpiredClaims(ctx, window); err != nil {
		return nil, err
	}

	var rooms []entity.ChatRoom
	err := s.db.WithContext(ctx).
		Where("type = ?", entity.RoomTypeSupport).
		Order("updated_at DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("list support rooms: %w", err)
	}

	for i := range rooms {
		if err := s.hydrateRoom(ctx, &rooms[i], ""); err != nil {
			return nil, err
		}
	}
	return rooms, nil
}

func (s *Storage) sweepExpiredClaims(ctx context.Context, window time.Duration) error {
	cutoff := time.Now().UTC().Add(-window)
	result := s.db.WithContext(ctx).
		Model(&entity.ChatRoom{}).
		Where("type = ? AND taken_at IS NOT NULL AND taken_at < ?", entity.RoomTypeSupport, cutoff).
		Updates(map[string]any{"assigned_agent_id": nil, "taken_at": nil})
	if result.Error != nil {
		return fmt.Errorf("sweep expired claims: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		s.log.Info("released expired support claims", "count", result.RowsAffected)
	}
	return nil
}
