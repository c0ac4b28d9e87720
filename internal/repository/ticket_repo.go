package repository

import (
	"context"
	"errors"

	"github.com/nthoangDev/event-management/internal/models"
	"gorm.io/gorm"
)

// errCASLost aborts a transaction whose conditional update matched no rows.
// Callers translate it into a clean "lost the race" result.
var errCASLost = errors.New("conditional update matched no rows")

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	FindByID(ctx context.Context, id string) (*models.Ticket, error)
	FindByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	// CancelWithPayment cancels a pending ticket and fails any pending
	// payment for it in one transaction. Returns false when the ticket was
	// no longer pending.
	CancelWithPayment(ctx context.Context, ticketID string) (bool, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) FindByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) CancelWithPayment(ctx context.Context, ticketID string) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Payment row first: same lock order as CompleteAndBook.
		res := tx.Model(&models.Payment{}).
			Where("ticket_id = ? AND status = ?", ticketID, models.PaymentPending).
			Update("status", models.PaymentFailed)
		if res.Error != nil {
			return res.Error
		}

		res = tx.Model(&models.Ticket{}).
			Where("id = ? AND status = ?", ticketID, models.TicketPending).
			Update("status", models.TicketCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errCASLost
		}
		return nil
	})
	if errors.Is(err, errCASLost) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
