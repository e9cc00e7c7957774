package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketbay/storefront-api/models"
)

// RefreshTokenStore persists refresh tokens. Tokens are single-use: Consume
// deletes the row it reads, so a replayed token always fails.
type RefreshTokenStore struct {
	db *gorm.DB
}

func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

// Create issues a new refresh token for the user, valid for ttl.
func (s *RefreshTokenStore) Create(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	if userID == 0 {
		return "", ErrInvalidInput
	}
	token := models.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&token).Error; err != nil {
		return "", fmt.Errorf("creating refresh token: %w", err)
	}
	return token.ID, nil
}

// Consume validates and deletes a refresh token, returning the owning user.
// Missing, already-consumed and expired tokens all surface as ErrNotFound.
func (s *RefreshTokenStore) Consume(ctx context.Context, id string) (uint, error) {
	if id == "" {
		return 0, ErrInvalidInput
	}
	var token models.RefreshToken
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("fetching refresh token: %w", err)
	}

	// Delete first so two concurrent refreshes can't both succeed; the loser
	// sees zero rows affected.
	res := s.db.WithContext(ctx).Delete(&models.RefreshToken{}, "id = ?", id)
	if res.Error != nil {
		return 0, fmt.Errorf("deleting refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	if time.Now().After(token.ExpiresAt) {
		return 0, ErrNotFound
	}
	return token.UserID, nil
}

// RevokeAllForUser deletes every refresh token the user holds (logout).
func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	if err := s.db.WithContext(ctx).Delete(&models.RefreshToken{}, "user_id = ?", userID).Error; err != nil {
		return fmt.Errorf("revoking refresh tokens: %w", err)
	}
	return nil
}

// PurgeExpired removes tokens past their expiry; run periodically from main.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Delete(&models.RefreshToken{}, "expires_at < ?", time.Now())
	if res.Error != nil {
		return 0, fmt.Errorf("purging refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}
