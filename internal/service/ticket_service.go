package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nthoangDev/event-management/internal/models"
	"github.com/nthoangDev/event-management/internal/monitoring"
	"github.com/nthoangDev/event-management/internal/repository"
	"github.com/nthoangDev/event-management/pkg/random"
	"gorm.io/gorm"
)

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrEventNotOpen    = errors.New("event is not open for booking")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidCategory = errors.New("unknown ticket category")
	ErrNoVIPPrice      = errors.New("event has no VIP price configured")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrForbidden       = errors.New("not allowed to operate on this ticket")
	ErrInvalidState    = errors.New("ticket is not in a valid state for this operation")
	ErrCodeMismatch    = errors.New("redemption code does not match")
	ErrTicketExpired   = errors.New("ticket hold has expired")
)

const redemptionCodeBytes = 16 // 128 bits

// ValidationResult is what the check-in operator sees for a valid ticket.
type ValidationResult struct {
	TicketID  string                `json:"ticket_id"`
	EventID   uint                  `json:"event_id"`
	EventName string                `json:"event_name"`
	UserID    string                `json:"user_id"`
	Category  models.TicketCategory `json:"category"`
	Quantity  int                   `json:"quantity"`
}

type TicketService interface {
	Reserve(ctx context.Context, eventID uint, userID string, category models.TicketCategory, quantity int) (*models.Ticket, error)
	Cancel(ctx context.Context, ticketID, userID string) (*models.Ticket, error)
	Validate(ctx context.Context, ticketID, code, validatorID string) (*ValidationResult, error)
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	ListByUser(ctx context.Context, userID string) ([]models.Ticket, error)
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	eventRepo  repository.EventRepository
	holdFor    time.Duration
}

func NewTicketService(ticketRepo repository.TicketRepository, eventRepo repository.EventRepository, holdFor time.Duration) TicketService {
	return &ticketService{
		ticketRepo: ticketRepo,
		eventRepo:  eventRepo,
		holdFor:    holdFor,
	}
}

// canOperateEvent is the check-in capability check: only the event's
// organizer may validate its tickets.
func canOperateEvent(event *models.Event, userID string) bool {
	return event != nil && event.OrganizerID == userID
}

func (s *ticketService) Reserve(ctx context.Context, eventID uint, userID string, category models.TicketCategory, quantity int) (*models.Ticket, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, ErrEventNotFound
	}
	if event.Status != models.EventApproved {
		return nil, ErrEventNotOpen
	}

	unitPrice := event.RegularPrice
	switch category {
	case models.CategoryRegular:
	case models.CategoryVIP:
		if event.VIPPrice == nil {
			return nil, ErrNoVIPPrice
		}
		unitPrice = *event.VIPPrice
	default:
		return nil, ErrInvalidCategory
	}

	// A redemption-code collision is an internal invariant violation, not a
	// caller error: regenerate and retry.
	for attempt := 0; ; attempt++ {
		code, err := random.Code(redemptionCodeBytes)
		if err != nil {
			return nil, fmt.Errorf("generate redemption code: %w", err)
		}

		ticket := &models.Ticket{
			ID:             uuid.NewString(),
			EventID:        event.ID,
			UserID:         userID,
			Category:       category,
			Quantity:       quantity,
			UnitPrice:      unitPrice,
			Status:         models.TicketPending,
			RedemptionCode: code,
			ExpiresAt:      time.Now().Add(s.holdFor),
		}

		err = s.ticketRepo.Create(ctx, ticket)
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < 3 {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create ticket: %w", err)
		}

		monitoring.TicketReserved(string(category))
		return ticket, nil
	}
}

func (s *ticketService) Cancel(ctx context.Context, ticketID, userID string) (*models.Ticket, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	if ticket.UserID != userID {
		return nil, ErrForbidden
	}
	if ticket.Status != models.TicketPending {
		return nil, ErrInvalidState
	}

	cancelled, err := s.ticketRepo.CancelWithPayment(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("cancel ticket: %w", err)
	}
	if !cancelled {
		// Lost a race against a concurrent transition.
		return nil, ErrInvalidState
	}

	ticket.Status = models.TicketCancelled
	return ticket, nil
}

func (s *ticketService) Validate(ctx context.Context, ticketID, code, validatorID string) (*ValidationResult, error) {
	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil {
		return nil, ErrTicketNotFound
	}
	if !canOperateEvent(ticket.Event, validatorID) {
		return nil, ErrForbidden
	}
	if subtle.ConstantTimeCompare([]byte(code), []byte(ticket.RedemptionCode)) != 1 {
		return nil, ErrCodeMismatch
	}
	if ticket.Status != models.TicketBooked {
		return nil, ErrInvalidState
	}
	if ticket.Expired(time.Now()) {
		return nil, ErrTicketExpired
	}

	// Read-only: re-scanning a valid ticket is idempotent.
	return &ValidationResult{
		TicketID:  ticket.ID,
		EventID:   ticket.EventID,
		EventName: ticket.Event.Name,
		UserID:    ticket.UserID,
		Category:  ticket.Category,
		Quantity:  ticket.Quantity,
	}, nil
}

func (s *ticketService) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	return s.ticketRepo.FindByID(ctx, id)
}

func (s *ticketService) ListByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.ticketRepo.FindByUser(ctx, userID)
}
