package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventStatus string

const (
	EventPending  EventStatus = "pending"
	EventApproved EventStatus = "approved"
	EventBlocked  EventStatus = "blocked"
)

type Event struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	Name         string           `gorm:"not null" json:"name"`
	OrganizerID  string           `gorm:"not null" json:"organizer_id"`
	Location     string           `json:"location"`
	EventTime    time.Time        `gorm:"not null" json:"event_time"`
	RegularPrice decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"regular_price"`
	VIPPrice     *decimal.Decimal `gorm:"type:numeric(12,2)" json:"vip_price,omitempty"`
	Status       EventStatus      `gorm:"type:varchar(15);not null;default:'pending'" json:"status"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
