package service

import (
	"context"

	"github.com/nthoangDev/event-management/internal/models"
)

type mockTicketRepo struct {
	createFn            func(ctx context.Context, ticket *models.Ticket) error
	findByIDFn          func(ctx context.Context, id string) (*models.Ticket, error)
	findByUserFn        func(ctx context.Context, userID string) ([]models.Ticket, error)
	cancelWithPaymentFn func(ctx context.Context, ticketID string) (bool, error)
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *models.Ticket) error {
	return m.createFn(ctx, ticket)
}

func (m *mockTicketRepo) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockTicketRepo) FindByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return m.findByUserFn(ctx, userID)
}

func (m *mockTicketRepo) CancelWithPayment(ctx context.Context, ticketID string) (bool, error) {
	return m.cancelWithPaymentFn(ctx, ticketID)
}

type mockEventRepo struct {
	createFn       func(ctx context.Context, event *models.Event) error
	findByIDFn     func(ctx context.Context, id uint) (*models.Event, error)
	findApprovedFn func(ctx context.Context) ([]models.Event, error)
	updateStatusFn func(ctx context.Context, id uint, status models.EventStatus) error
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}

func (m *mockEventRepo) FindByID(ctx context.Context, id uint) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockEventRepo) FindApproved(ctx context.Context) ([]models.Event, error) {
	return m.findApprovedFn(ctx)
}

func (m *mockEventRepo) UpdateStatus(ctx context.Context, id uint, status models.EventStatus) error {
	return m.updateStatusFn(ctx, id, status)
}

type mockPaymentRepo struct {
	createFn              func(ctx context.Context, payment *models.Payment) error
	findByIDFn            func(ctx context.Context, id string) (*models.Payment, error)
	findPendingByTicketFn func(ctx context.Context, ticketID string) (*models.Payment, error)
	completeAndBookFn     func(ctx context.Context, paymentID, ticketID string) (bool, error)
	markFailedFn          func(ctx context.Context, paymentID string) (bool, error)
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	return m.createFn(ctx, payment)
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockPaymentRepo) FindPendingByTicket(ctx context.Context, ticketID string) (*models.Payment, error) {
	return m.findPendingByTicketFn(ctx, ticketID)
}

func (m *mockPaymentRepo) CompleteAndBook(ctx context.Context, paymentID, ticketID string) (bool, error) {
	return m.completeAndBookFn(ctx, paymentID, ticketID)
}

func (m *mockPaymentRepo) MarkFailed(ctx context.Context, paymentID string) (bool, error) {
	return m.markFailedFn(ctx, paymentID)
}

// mockPublisher collects published events on a channel so tests can wait for
// the async dispatch.
type mockPublisher struct {
	events chan TicketBooked
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{events: make(chan TicketBooked, 8)}
}

func (m *mockPublisher) Publish(routingKey string, payload any) error {
	if evt, ok := payload.(TicketBooked); ok && routingKey == "ticket.booked" {
		m.events <- evt
	}
	return nil
}
