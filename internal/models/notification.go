package models

import "time"

// Notification represents a user-facing notification event (PostgreSQL).
// A notification belongs exclusively to its recipient; only the recipient
// may flip the read flag.
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient" gorm:"index"`
	SenderID    *uint     `json:"sender,omitempty" gorm:"index"` // nil for system-generated notices
	Content     string    `json:"content"`
	Link        string    `json:"link"`
	Read        bool      `json:"read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index"`
}
