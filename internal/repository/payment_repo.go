package repository

import (
	"context"
	"errors"

	"github.com/nthoangDev/event-management/internal/models"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	FindPendingByTicket(ctx context.Context, ticketID string) (*models.Payment, error)
	// CompleteAndBook atomically moves a pending payment to completed and
	// its pending ticket to booked. Returns false without mutating anything
	// when either row already left the pending state — the caller lost the
	// race and must treat the delivery as a replay.
	CompleteAndBook(ctx context.Context, paymentID, ticketID string) (bool, error)
	// MarkFailed moves a pending payment to failed. Returns false when the
	// payment was already terminal.
	MarkFailed(ctx context.Context, paymentID string) (bool, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Preload("Ticket").
		Where("id = ?", id).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindPendingByTicket(ctx context.Context, ticketID string) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("ticket_id = ? AND status = ?", ticketID, models.PaymentPending).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) CompleteAndBook(ctx context.Context, paymentID, ticketID string) (bool, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payment{}).
			Where("id = ? AND status = ?", paymentID, models.PaymentPending).
			Update("status", models.PaymentCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errCASLost
		}

		res = tx.Model(&models.Ticket{}).
			Where("id = ? AND status = ?", ticketID, models.TicketPending).
			Update("status", models.TicketBooked)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Ticket left pending (e.g. cancelled mid-flight); roll back the
			// payment update too.
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

func (r *paymentRepository) MarkFailed(ctx context.Context, paymentID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentPending).
		Update("status", models.PaymentFailed)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
