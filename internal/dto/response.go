package dto

import (
	"time"

	"github.com/nthoangDev/event-management/internal/models"
	"github.com/shopspring/decimal"
)

type EventResponse struct {
	ID           uint               `json:"id"`
	Name         string             `json:"name"`
	OrganizerID  string             `json:"organizer_id"`
	Location     string             `json:"location"`
	EventTime    time.Time          `json:"event_time"`
	RegularPrice decimal.Decimal    `json:"regular_price"`
	VIPPrice     *decimal.Decimal   `json:"vip_price,omitempty"`
	Status       models.EventStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

type TicketResponse struct {
	ID        string                `json:"id"`
	EventID   uint                  `json:"event_id"`
	UserID    string                `json:"user_id"`
	Category  models.TicketCategory `json:"category"`
	Quantity  int                   `json:"quantity"`
	UnitPrice decimal.Decimal       `json:"unit_price"`
	Total     decimal.Decimal       `json:"total"`
	Status    models.TicketStatus   `json:"status"`
	ExpiresAt time.Time             `json:"expires_at"`
	CreatedAt time.Time             `json:"created_at"`
}

type PaymentResponse struct {
	ID        string               `json:"id"`
	TicketID  string               `json:"ticket_id"`
	Method    models.PaymentMethod `json:"method"`
	Amount    decimal.Decimal      `json:"amount"`
	Status    models.PaymentStatus `json:"status"`
	PayURL    string               `json:"pay_url,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// ReturnResponse is what the browser sees after the gateway redirect. It is
// informational only; the IPN path owns the authoritative state.
type ReturnResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PaymentStatus string `json:"payment_status,omitempty"`
	TicketStatus  string `json:"ticket_status,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToEventResponse(e *models.Event) EventResponse {
	return EventResponse{
		ID:           e.ID,
		Name:         e.Name,
		OrganizerID:  e.OrganizerID,
		Location:     e.Location,
		EventTime:    e.EventTime,
		RegularPrice: e.RegularPrice,
		VIPPrice:     e.VIPPrice,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt,
	}
}

func ToTicketResponse(t *models.Ticket) TicketResponse {
	return TicketResponse{
		ID:        t.ID,
		EventID:   t.EventID,
		UserID:    t.UserID,
		Category:  t.Category,
		Quantity:  t.Quantity,
		UnitPrice: t.UnitPrice,
		Total:     t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity))),
		Status:    t.Status,
		ExpiresAt: t.ExpiresAt,
		CreatedAt: t.CreatedAt,
	}
}

func ToPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		TicketID:  p.TicketID,
		Method:    p.Method,
		Amount:    p.Amount,
		Status:    p.Status,
		PayURL:    p.RedirectURL,
		CreatedAt: p.CreatedAt,
	}
}
