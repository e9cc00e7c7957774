package store

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketbay/storefront-api/models"
)

// CartItem is the caller-supplied shape of one cart write.
type CartItem struct {
	ProductID uint
	Title     string
	Price     float64
	Image     string
	Quantity  int
}

// CartStore is the single access path to persisted cart lines. Handlers never
// touch the cart table directly.
type CartStore struct {
	db *gorm.DB
}

func NewCartStore(db *gorm.DB) *CartStore {
	return &CartStore{db: db}
}

// ListByUser returns all cart lines for a user, oldest first.
func (s *CartStore) ListByUser(ctx context.Context, userID uint) ([]models.CartLine, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	var lines []models.CartLine
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&lines).Error; err != nil {
		return nil, fmt.Errorf("listing cart: %w", err)
	}
	return lines, nil
}

// Upsert inserts a new line for (userID, item.ProductID) or, if one exists,
// adds item.Quantity to the stored quantity and overwrites title/price/image
// with the new values. The ON CONFLICT statement rides on the unique index,
// so two concurrent writers can never produce duplicate rows.
func (s *CartStore) Upsert(ctx context.Context, userID uint, email string, item CartItem) (uint, error) {
	if userID == 0 || item.ProductID == 0 {
		return 0, ErrInvalidInput
	}
	item = sanitizeItem(item)

	line := models.CartLine{
		UserID:    userID,
		ProductID: item.ProductID,
		Email:     email,
		Title:     item.Title,
		Price:     item.Price,
		Image:     item.Image,
		Quantity:  item.Quantity,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_lines.quantity + ?", item.Quantity),
			"email":    email,
			"title":    item.Title,
			"price":    item.Price,
			"image":    item.Image,
		}),
	}).Create(&line).Error
	if err != nil {
		return 0, fmt.Errorf("upserting cart line: %w", err)
	}

	// On the conflict path GORM does not backfill the existing row's ID.
	var stored models.CartLine
	if err := s.db.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND product_id = ?", userID, item.ProductID).
		First(&stored).Error; err != nil {
		return 0, fmt.Errorf("reading upserted line: %w", err)
	}
	return stored.ID, nil
}

// ReplaceAll swaps the user's entire cart for the supplied set in one
// transaction. Any malformed item aborts the whole operation; a concurrent
// reader sees either the old full set or the new full set, never a mix.
func (s *CartStore) ReplaceAll(ctx context.Context, userID uint, email string, items []CartItem) error {
	if userID == 0 {
		return ErrInvalidInput
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartLine{}).Error; err != nil {
			return fmt.Errorf("clearing cart: %w", err)
		}
		for _, item := range items {
			if item.ProductID == 0 {
				return ErrInvalidInput
			}
			item = sanitizeItem(item)
			line := models.CartLine{
				UserID:    userID,
				ProductID: item.ProductID,
				Email:     email,
				Title:     item.Title,
				Price:     item.Price,
				Image:     item.Image,
				Quantity:  item.Quantity,
			}
			if err := tx.Create(&line).Error; err != nil {
				return fmt.Errorf("inserting cart line: %w", err)
			}
		}
		return nil
	})
	return err
}

// SetQuantity replaces the stored quantity exactly. Unlike the write paths
// that accept arbitrary input, a non-positive quantity here is a hard error:
// the whole point of this operation is a caller-specified quantity. Returns
// false when no line matched.
func (s *CartStore) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (bool, error) {
	if userID == 0 || productID == 0 || quantity <= 0 {
		return false, ErrInvalidInput
	}
	res := s.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", quantity)
	if res.Error != nil {
		return false, fmt.Errorf("updating quantity: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RemoveLine deletes one line; false if none matched.
func (s *CartStore) RemoveLine(ctx context.Context, userID, productID uint) (bool, error) {
	if userID == 0 || productID == 0 {
		return false, ErrInvalidInput
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return false, fmt.Errorf("deleting cart line: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Clear deletes all lines for a user; false if the cart was already empty.
func (s *CartStore) Clear(ctx context.Context, userID uint) (bool, error) {
	if userID == 0 {
		return false, ErrInvalidInput
	}
	res := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{})
	if res.Error != nil {
		return false, fmt.Errorf("clearing cart: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// sanitizeItem coerces rather than rejects: quantity floors at 1, price at 0,
// so a sloppy client still gets a usable record.
func sanitizeItem(item CartItem) CartItem {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.Price < 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		item.Price = 0
	}
	return item
}
