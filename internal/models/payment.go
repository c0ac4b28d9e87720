package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	MethodVNPay PaymentMethod = "vnpay"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment belongs to exactly one Ticket. Amount and redirect URL are written
// once at creation and never recomputed. A partial unique index on
// payments(ticket_id) WHERE status='pending' guarantees at most one pending
// payment per ticket (see pkg/database).
type Payment struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	TicketID    string          `gorm:"type:varchar(36);not null;index" json:"ticket_id"`
	Method      PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status      PaymentStatus   `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RedirectURL string          `gorm:"type:text" json:"redirect_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Ticket *Ticket `gorm:"foreignKey:TicketID" json:"ticket,omitempty"`
}
