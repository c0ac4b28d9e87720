package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TicketCategory string

const (
	CategoryRegular TicketCategory = "regular"
	CategoryVIP     TicketCategory = "vip"
)

type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketBooked    TicketStatus = "booked"
	TicketCancelled TicketStatus = "cancelled"
)

// Ticket is a time-boxed hold on event seats. The unit price is snapshotted
// at reservation time so later price edits never change an open reservation.
type Ticket struct {
	ID             string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	EventID        uint            `gorm:"not null;index" json:"event_id"`
	UserID         string          `gorm:"not null;index" json:"user_id"`
	Category       TicketCategory  `gorm:"type:varchar(10);not null" json:"category"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Status         TicketStatus    `gorm:"type:varchar(15);not null;default:'pending'" json:"status"`
	RedemptionCode string          `gorm:"uniqueIndex;type:varchar(64);not null" json:"-"`
	ExpiresAt      time.Time       `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Event *Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

func (t *Ticket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
