package entity

import (
	"net/http"
	"time"

	"ChatCRM/internal/lib/validate"
)

// API key states.
const (
	KeyStatusActive   = "ACTIVE"
	KeyStatusInactive = "INACTIVE"
	KeyStatusRevoked  = "REVOKED"
	KeyStatusExpired  = "EXPIRED"
)

// ApiKey stores the SHA-256 hash of an issued key. The plaintext is returned
// exactly once at issuance and never persisted.
type ApiKey struct {
	ID        int64     `json:"-" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"size:24;not null"`
	KeyHash   string    `json:"-" gorm:"column:key_hash;size:64;uniqueIndex;not null"`
	KeyPrefix string    `json:"keyPrefix" gorm:"column:key_prefix;size:8"`
	Status    string    `json:"status" gorm:"size:8;default:ACTIVE"`
	OwnerID   string    `json:"owner" gorm:"column:owner_id;size:32"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

func (ApiKey) TableName() string { return "api_keys" }

// GenerateKeyRequest is the body of POST /api/v1/key/new.
type GenerateKeyRequest struct {
	Name string `json:"name" validate:"required,max=24"`
}

func (r *GenerateKeyRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}
