package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User type codes, highest privilege first.
const (
	AdminType = "ADMIN"
	ModType   = "MOD"
	AgentType = "AGENT"
	UserType  = "USER"
	GuestType = "GUEST"
)

// User represents a registered chat participant. UserID is the opaque short
// identifier exchanged on the wire; the numeric row id never leaves the store.
type User struct {
	ID        int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"userId" gorm:"column:user_id;size:32;uniqueIndex;not null"`
	Username  string    `json:"username" gorm:"size:64;uniqueIndex" validate:"required"`
	FirstName string    `json:"firstName" gorm:"size:64" validate:"omitempty"`
	LastName  string    `json:"lastName" gorm:"size:64" validate:"omitempty"`
	Email     string    `json:"email" gorm:"size:128" validate:"omitempty,email"`
	Image     string    `json:"image" gorm:"size:255" validate:"omitempty"`
	TypeCode  string    `json:"userType" gorm:"size:8;default:USER"`
	Priority  int       `json:"-" gorm:"default:0"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

func NewUser(username, email string) *User {
	return &User{
		UserID:   NewShortID(),
		Username: username,
		Email:    email,
		TypeCode: UserType,
	}
}

// FullName returns the display name used in message payloads.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.TypeCode == AdminType
}

func (u *User) IsGuest() bool {
	return u.TypeCode == GuestType
}

// IsAgent reports whether the user may work the support queue.
func (u *User) IsAgent() bool {
	return u.TypeCode == AgentType || u.TypeCode == ModType || u.TypeCode == AdminType
}

// NewShortID returns an opaque 22-character identifier derived from a UUID.
// Used for user and room ids that travel on the wire.
func NewShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:22]
}
