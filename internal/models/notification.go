package models

import "time"

// Notification is the materialized inbox entry written by the ticket.booked
// consumer. The email/QR collaborator reads from here instead of being
// called inline with the booking transaction.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	IsRead    bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
