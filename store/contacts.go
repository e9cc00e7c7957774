package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/marketbay/storefront-api/models"
)

// ContactStore persists contact-form submissions. Write-only: nothing in the
// application reads these back.
type ContactStore struct {
	db *gorm.DB
}

func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db}
}

func (s *ContactStore) Create(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	if name == "" || email == "" || message == "" {
		return nil, ErrInvalidInput
	}
	msg := models.ContactMessage{
		Name:    name,
		Email:   email,
		Message: message,
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, fmt.Errorf("saving contact message: %w", err)
	}
	return &msg, nil
}
