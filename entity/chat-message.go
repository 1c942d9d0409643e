package entity

import (
	"time"
)

// Message kinds.
const (
	MessageKindText  = "text"
	MessageKindImage = "image"
	MessageKindFile  = "file"
)

// ChatMessage represents a single persisted message. Immutable once created;
// the author reference is nullable because users may be deleted later.
type ChatMessage struct {
	ID        int64     `json:"messageId" gorm:"primaryKey;autoIncrement"`
	RoomID    string    `json:"roomId" gorm:"column:room_id;size:32;index:idx_room_ts,priority:1;not null"`
	UserID    *string   `json:"userId" gorm:"column:user_id;size:32"`
	Body      string    `json:"message" gorm:"type:text"`
	Kind      string    `json:"type" gorm:"size:8;default:text"`
	Image     string    `json:"image,omitempty" gorm:"size:255"`
	File      string    `json:"file,omitempty" gorm:"size:255"`
	FileName  string    `json:"fileName,omitempty" gorm:"size:255"`
	FileType  string    `json:"fileType,omitempty" gorm:"size:64"`
	FileSize  int64     `json:"fileSize,omitempty"`
	Timestamp time.Time `json:"timestamp" gorm:"index:idx_room_ts,priority:2"`
}

func (ChatMessage) TableName() string { return "chat_messages" }

// Attachment carries the optional single attachment of a message: either an
// image or a generic file with name/type/size.
type Attachment struct {
	Kind     string `json:"type"`
	Image    string `json:"image,omitempty"`
	File     string `json:"file,omitempty"`
	FileName string `json:"fileName,omitempty"`
	FileType string `json:"fileType,omitempty"`
	FileSize int64  `json:"fileSize,omitempty"`
}
