package models

import "time"

// RefreshToken is one issued refresh token. Row presence means the token is
// still valid; logout and rotation delete the row.
type RefreshToken struct {
	ID        string `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	ExpiresAt time.Time
	CreatedAt time.Time
}
