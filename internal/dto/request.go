package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateEventRequest struct {
	Name         string           `json:"name"`
	OrganizerID  string           `json:"organizer_id"`
	Location     string           `json:"location"`
	EventTime    time.Time        `json:"event_time"`
	RegularPrice decimal.Decimal  `json:"regular_price"`
	VIPPrice     *decimal.Decimal `json:"vip_price,omitempty"`
}

type ReserveTicketRequest struct {
	EventID  uint   `json:"event_id"`
	UserID   string `json:"user_id"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}

type CancelTicketRequest struct {
	UserID string `json:"user_id"`
}

type ValidateTicketRequest struct {
	Code        string `json:"code"`
	ValidatorID string `json:"validator_id"`
}

type CreateIntentRequest struct {
	UserID string `json:"user_id"`
	Method string `json:"method"`
}
