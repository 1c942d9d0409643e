package entity

import (
	"net/http"
	"time"

	"ChatCRM/internal/lib/validate"
)

// Room types.
const (
	RoomTypeDM      = "DM"
	RoomTypeGroup   = "GROUP"
	RoomTypeSelf    = "SELF"
	RoomTypeSupport = "SUPPORT"
)

// ChatRoom represents a persisted room. Invariants enforced at creation:
// a DM room has exactly 2 members, a SELF room exactly 1.
type ChatRoom struct {
	ID              int64      `json:"-" gorm:"primaryKey;autoIncrement"`
	RoomID          string     `json:"roomId" gorm:"column:room_id;size:32;uniqueIndex;not null"`
	Type            string     `json:"type" gorm:"size:10;default:DM"`
	Name            string     `json:"name" gorm:"size:64"`
	CreatedByID     string     `json:"createdBy" gorm:"column:created_by_id;size:32"`
	AssignedAgentID *string    `json:"assignedAgent,omitempty" gorm:"column:assigned_agent_id;size:32"`
	TakenAt         *time.Time `json:"takenAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// Hydrated by the store for list responses; not a gorm association.
	Members []User `json:"members,omitempty" gorm:"-"`
	Unread  int64  `json:"unread" gorm:"-"`
}

func (ChatRoom) TableName() string { return "chat_rooms" }

// IsClaimed reports whether a SUPPORT room currently has an assigned agent.
func (r *ChatRoom) IsClaimed() bool {
	return r.AssignedAgentID != nil && *r.AssignedAgentID != ""
}

// ClaimExpired reports whether the current claim is older than the window.
func (r *ChatRoom) ClaimExpired(window time.Duration) bool {
	if r.TakenAt == nil {
		return true
	}
	return r.TakenAt.Add(window).Before(time.Now())
}

// RoomMember links a user to a room. Unique per (room, user); last_read_at
// feeds unread counts only. Delivery routing always re-reads the member list.
type RoomMember struct {
	ID         int64      `json:"-" gorm:"primaryKey;autoIncrement"`
	RoomID     string     `json:"roomId" gorm:"column:room_id;size:32;uniqueIndex:uniq_room_user,priority:1;not null"`
	UserID     string     `json:"userId" gorm:"column:user_id;size:32;uniqueIndex:uniq_room_user,priority:2;index;not null"`
	JoinedAt   time.Time  `json:"joinedAt"`
	LastReadAt *time.Time `json:"lastReadAt,omitempty"`
}

func (RoomMember) TableName() string { return "room_members" }

// CreateRoomRequest is the body of POST /api/v1/rooms.
type CreateRoomRequest struct {
	Type    string   `json:"type" validate:"omitempty,oneof=DM GROUP SELF SUPPORT"`
	Name    string   `json:"name" validate:"omitempty,max=64"`
	Members []string `json:"members" validate:"required,min=1,dive,required"`
}

func (r *CreateRoomRequest) Bind(_ *http.Request) error {
	if r.Type == "" {
		r.Type = RoomTypeDM
	}
	return validate.Struct(r)
}
