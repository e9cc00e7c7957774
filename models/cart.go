package models

import "time"

// CartLine is one product inside one user's cart. The unique index keeps a
// single row per (user, product) pair even with concurrent writers; product
// metadata is denormalized onto the row at write time.
type CartLine struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"-"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"productId"`
	Email     string    `json:"-"` // owner's email at time of write
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Image     string    `json:"image"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"-"`
}
