package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nthoangDev/event-management/internal/models"
	"github.com/nthoangDev/event-management/internal/monitoring"
	"github.com/nthoangDev/event-management/internal/repository"
	"github.com/nthoangDev/event-management/internal/vnpay"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPendingPaymentExists = errors.New("ticket already has a pending payment")
	ErrUnsupportedMethod    = errors.New("unsupported payment method")
)

// BookedPublisher is the at-most-once hook fired when a ticket transitions
// to booked. Collaborators (email, QR rendering) subscribe on the other end.
type BookedPublisher interface {
	Publish(routingKey string, payload any) error
}

// TicketBooked is the payload of the ticket.booked hook.
type TicketBooked struct {
	TicketID       string `json:"ticket_id"`
	EventID        uint   `json:"event_id"`
	UserID         string `json:"user_id"`
	RedemptionCode string `json:"redemption_code"`
}

// ReconcileResult carries the gateway acknowledgement contract. The IPN
// handler must echo RspCode/Message verbatim; the return handler renders the
// same verdict for the browser.
type ReconcileResult struct {
	RspCode string          `json:"RspCode"`
	Message string          `json:"Message"`
	Payment *models.Payment `json:"-"`
}

type PaymentService interface {
	CreateIntent(ctx context.Context, ticketID, userID string, method models.PaymentMethod, clientIP string) (*models.Payment, error)
	GetPayment(ctx context.Context, id, userID string) (*models.Payment, error)
	// HandleReturn processes the browser redirect callback. Best effort: the
	// user may never come back, so it shares the reconciliation logic with
	// HandleNotify and is never the sole source of truth.
	HandleReturn(ctx context.Context, fields map[string]string) *ReconcileResult
	// HandleNotify processes the server-to-server IPN, delivered
	// at-least-once and in arbitrary order relative to HandleReturn.
	HandleNotify(ctx context.Context, fields map[string]string) *ReconcileResult
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	ticketRepo  repository.TicketRepository
	gateway     *vnpay.Client
	publisher   BookedPublisher
}

func NewPaymentService(paymentRepo repository.PaymentRepository, ticketRepo repository.TicketRepository, gateway *vnpay.Client, publisher BookedPublisher) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		ticketRepo:  ticketRepo,
		gateway:     gateway,
		publisher:   publisher,
	}
}

func (s *paymentService) CreateIntent(ctx context.Context, ticketID, userID string, method models.PaymentMethod, clientIP string) (*models.Payment, error) {
	if method != models.MethodVNPay {
		return nil, ErrUnsupportedMethod
	}

	ticket, err := s.ticketRepo.FindByID(ctx, ticketID)
	if err != nil || ticket.UserID != userID || ticket.Status != models.TicketPending {
		return nil, ErrTicketNotFound
	}
	if ticket.Expired(time.Now()) {
		return nil, ErrTicketExpired
	}

	if _, err := s.paymentRepo.FindPendingByTicket(ctx, ticketID); err == nil {
		return nil, ErrPendingPaymentExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check pending payment: %w", err)
	}

	now := time.Now()
	amount := ticket.UnitPrice.Mul(decimal.NewFromInt(int64(ticket.Quantity)))
	payment := &models.Payment{
		ID:       uuid.NewString(),
		TicketID: ticket.ID,
		Method:   method,
		Amount:   amount,
		Status:   models.PaymentPending,
	}
	payment.RedirectURL = s.gateway.BuildPayURL(vnpay.PayParams{
		TxnRef:     vnpay.FormatTxnRef(payment.ID, now),
		Amount:     amount,
		OrderInfo:  fmt.Sprintf("Ticket %s x%d", ticket.ID, ticket.Quantity),
		ClientIP:   clientIP,
		CreateTime: now,
	})

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		// The partial unique index is the real guard behind the pre-check.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrPendingPaymentExists
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}

	return payment, nil
}

// GetPayment returns a payment to its ticket's holder. Anyone else sees not
// found rather than forbidden so payment ids do not leak existence.
func (s *paymentService) GetPayment(ctx context.Context, id, userID string) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if payment.Ticket == nil || payment.Ticket.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *paymentService) HandleReturn(ctx context.Context, fields map[string]string) *ReconcileResult {
	res := s.reconcile(ctx, fields)
	monitoring.CallbackVerdict("return", res.RspCode)
	return res
}

func (s *paymentService) HandleNotify(ctx context.Context, fields map[string]string) *ReconcileResult {
	res := s.reconcile(ctx, fields)
	monitoring.CallbackVerdict("ipn", res.RspCode)
	return res
}

// reconcile applies the shared callback state machine. Every exit path maps
// to one of the four acknowledgement codes; replays of a terminal payment
// are a defined no-op, never an error.
func (s *paymentService) reconcile(ctx context.Context, fields map[string]string) *ReconcileResult {
	txnRef := fields[vnpay.FieldTxnRef]
	if txnRef == "" {
		return &ReconcileResult{RspCode: vnpay.RspUnknownError, Message: "missing transaction reference"}
	}
	paymentID, ok := vnpay.ParseTxnRef(txnRef)
	if !ok {
		return &ReconcileResult{RspCode: vnpay.RspUnknownError, Message: "malformed transaction reference"}
	}

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &ReconcileResult{RspCode: vnpay.RspOrderNotFound, Message: "order not found"}
		}
		log.Printf("[Reconcile] load payment %s: %v", paymentID, err)
		return &ReconcileResult{RspCode: vnpay.RspUnknownError, Message: "processing error"}
	}

	// Idempotency gate: a terminal payment is reported as-is. No signature
	// re-check, no mutation, no re-fired hook.
	if payment.Status != models.PaymentPending {
		return &ReconcileResult{RspCode: vnpay.RspOK, Message: "order already confirmed", Payment: payment}
	}
	if payment.Ticket == nil {
		log.Printf("[Reconcile] payment %s has no ticket", payment.ID)
		return &ReconcileResult{RspCode: vnpay.RspUnknownError, Message: "processing error", Payment: payment}
	}

	if !s.gateway.VerifyCallback(fields) {
		if failed, err := s.paymentRepo.MarkFailed(ctx, payment.ID); err != nil {
			log.Printf("[Reconcile] mark payment %s failed: %v", payment.ID, err)
		} else if failed {
			monitoring.PaymentOutcome("signature_invalid")
		}
		return &ReconcileResult{RspCode: vnpay.RspInvalidSignature, Message: "invalid signature", Payment: payment}
	}

	responseCode := fields[vnpay.FieldResponseCode]
	if responseCode == vnpay.ResponseCodeSuccess && !payment.Ticket.Expired(time.Now()) {
		return s.settleSuccess(ctx, payment)
	}

	// Gateway reported failure, or a late success for an expired hold: the
	// payment resolves to failed either way and the ticket is never booked.
	failed, err := s.paymentRepo.MarkFailed(ctx, payment.ID)
	if err != nil {
		log.Printf("[Reconcile] mark payment %s failed: %v", payment.ID, err)
		return &ReconcileResult{RspCode: vnpay.RspUnknownError, Message: "processing error", Payment: payment}
	}
	if !failed {
		return s.replayVerdict(ctx, payment)
	}

	payment.Status = models.PaymentFailed
	if responseCode == vnpay.ResponseCodeSuccess {
		// Funds captured after the hold lapsed; flag for refund handling.
		log.Printf("[Reconcile] late success for expired ticket %s, payment %s flagged as failed", payment.TicketID, payment.ID)
		monitoring.PaymentOutcome("expired")
	} else {
		monitoring.PaymentOutcome("failed")
	}
	return &ReconcileResult{RspCode: vnpay.RspOK, Message: "confirm success", Payment: payment}
}

func (s *paymentService) settleSuccess(ctx context.Context, payment *models.Payment) *ReconcileResult {
	booked, err := s.paymentRepo.CompleteAndBook(ctx, payment.ID, payment.TicketID)
	if err != nil {
		log.Printf("[Reconcile] complete payment %s: %v", payment.ID, err)
		return &ReconcileResult{RspCode: vnpay.RspUnknownError, Message: "processing error", Payment: payment}
	}
	if !booked {
		return s.replayVerdict(ctx, payment)
	}

	payment.Status = models.PaymentCompleted
	if payment.Ticket != nil {
		payment.Ticket.Status = models.TicketBooked
	}
	monitoring.PaymentOutcome("completed")

	// Fired at most once per ticket: only the transition winner reaches
	// here. Dispatched after commit, never inline with the transaction.
	if s.publisher != nil && payment.Ticket != nil {
		evt := TicketBooked{
			TicketID:       payment.TicketID,
			EventID:        payment.Ticket.EventID,
			UserID:         payment.Ticket.UserID,
			RedemptionCode: payment.Ticket.RedemptionCode,
		}
		go func() {
			if err := s.publisher.Publish("ticket.booked", evt); err != nil {
				log.Printf("[Reconcile] publish ticket.booked for %s: %v", evt.TicketID, err)
			}
		}()
	}

	return &ReconcileResult{RspCode: vnpay.RspOK, Message: "confirm success", Payment: payment}
}

// replayVerdict re-reads the payment after losing a transition race and
// reports the state the winner left behind.
func (s *paymentService) replayVerdict(ctx context.Context, payment *models.Payment) *ReconcileResult {
	current, err := s.paymentRepo.FindByID(ctx, payment.ID)
	if err != nil {
		log.Printf("[Reconcile] reload payment %s: %v", payment.ID, err)
		return &ReconcileResult{RspCode: vnpay.RspUnknownError, Message: "processing error", Payment: payment}
	}
	return &ReconcileResult{RspCode: vnpay.RspOK, Message: "order already confirmed", Payment: current}
}
