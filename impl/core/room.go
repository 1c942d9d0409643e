package core

import (
	"context"
	"fmt"

	"ChatCRM/entity"
)

// ListRooms returns the caller's chat list.
func (c *Core) ListRooms(ctx context.Context, user *entity.User, limit, offset int) ([]entity.ChatRoom, error) {
	return c.repo.ListUserRooms(ctx, user.UserID, limit, offset)
}

// CreateRoom creates a room after enforcing the member-count invariants:
// a SELF room holds only its creator, a DM exactly two users. Creating a DM
// that already exists for the same pair returns the existing room instead
// of a duplicate, whichever order the members were listed in.
func (c *Core) CreateRoom(ctx context.Context, creator *entity.User, req *entity.CreateRoomRequest) (*entity.ChatRoom, bool, error) {
	members := dedupe(append([]string{creator.UserID}, req.Members...))

	for _, memberID := range members {
		if memberID == creator.UserID {
			continue
		}
		if _, err := c.repo.GetUserByID(ctx, memberID); err != nil {
			return nil, false, fmt.Errorf("member %s: %w", memberID, err)
		}
	}

	switch req.Type {
	case entity.RoomTypeSelf:
		if len(members) != 1 {
			return nil, false, fmt.Errorf("a SELF room holds exactly one member")
		}
	case entity.RoomTypeDM:
		if len(members) != 2 {
			return nil, false, fmt.Errorf("a DM room holds exactly two members")
		}
		existing, err := c.repo.FindExistingDMRoom(ctx, members[0], members[1])
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, true, nil
		}
	case entity.RoomTypeGroup, entity.RoomTypeSupport:
	default:
		return nil, false, fmt.Errorf("unknown room type %q", req.Type)
	}

	room := &entity.ChatRoom{
		Type:        req.Type,
		Name:        req.Name,
		CreatedByID: creator.UserID,
	}
	if err := c.repo.CreateRoom(ctx, room, members); err != nil {
		return nil, false, err
	}
	return room, false, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
