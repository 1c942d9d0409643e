package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ChatCRM/entity"
)

// GenerateApiKey mints a new key for the owner and returns the plaintext
// token. Only the SHA-256 hash is stored; the plaintext is shown once.
func (s *Storage) GenerateApiKey(ctx context.Context, name, ownerID string) (string, error) {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	hash := hashToken(token)

	key := entity.ApiKey{
		Name:      name,
		KeyHash:   hash,
		KeyPrefix: token[:8],
		Status:    entity.KeyStatusActive,
		OwnerID:   ownerID,
	}
	if err := s.db.WithContext(ctx).Create(&key).Error; err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return token, nil
}

// AuthenticateByToken resolves the user behind a bearer token. Revoked keys
// and unknown tokens both come back as ErrNotFound so callers cannot tell
// them apart.
func (s *Storage) AuthenticateByToken(ctx context.Context, token string) (*entity.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var key entity.ApiKey
	err := s.db.WithContext(ctx).
		Where("key_hash = ? AND status = ?", hashToken(token), entity.KeyStatusActive).
		First(&key).Error
	if err != nil {
		return nil, notFound(err)
	}
	return s.GetUserByID(ctx, key.OwnerID)
}

// RevokeApiKey disables a key by its display prefix.
func (s *Storage) RevokeApiKey(ctx context.Context, prefix, ownerID string) error {
	result := s.db.WithContext(ctx).
		Model(&entity.ApiKey{}).
		Where("key_prefix = ? AND owner_id = ?", prefix, ownerID).
		Update("status", entity.KeyStatusRevoked)
	if result.Error != nil {
		return fmt.Errorf("revoke api key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
