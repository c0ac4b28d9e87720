//go:build integration

package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nthoangDev/event-management/internal/models"
	"github.com/nthoangDev/event-management/internal/repository"
	"github.com/nthoangDev/event-management/internal/service"
	"github.com/nthoangDev/event-management/internal/vnpay"
)

const testSecret = "INTEGRATIONSECRET0123456789ABCDE"

type countingPublisher struct {
	n int64
}

func (p *countingPublisher) Publish(routingKey string, payload any) error {
	atomic.AddInt64(&p.n, 1)
	return nil
}

func (p *countingPublisher) count() int64 { return atomic.LoadInt64(&p.n) }

func newStack() (service.TicketService, service.PaymentService, *countingPublisher) {
	eventRepo := repository.NewEventRepository(testDB)
	ticketRepo := repository.NewTicketRepository(testDB)
	paymentRepo := repository.NewPaymentRepository(testDB)

	gateway := vnpay.New(vnpay.Config{
		TmnCode:    "ITEST",
		HashSecret: testSecret,
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/api/v1/payments/vnpay/return",
	})

	pub := &countingPublisher{}
	ticketSvc := service.NewTicketService(ticketRepo, eventRepo, 30*time.Minute)
	paymentSvc := service.NewPaymentService(paymentRepo, ticketRepo, gateway, pub)
	return ticketSvc, paymentSvc, pub
}

func createApprovedEvent(t *testing.T) *models.Event {
	t.Helper()
	vip := decimal.NewFromInt(250)
	event := &models.Event{
		Name:         "Integration Concert",
		OrganizerID:  "org-1",
		Location:     "Da Nang",
		EventTime:    time.Now().Add(72 * time.Hour),
		RegularPrice: decimal.NewFromInt(100),
		VIPPrice:     &vip,
		Status:       models.EventApproved,
	}
	require.NoError(t, testDB.Create(event).Error)
	return event
}

// successCallback builds a gateway IPN field set for the given payment with a
// valid signature.
func successCallback(paymentID, responseCode string) map[string]string {
	fields := map[string]string{
		vnpay.FieldTmnCode:      "ITEST",
		vnpay.FieldTxnRef:       vnpay.FormatTxnRef(paymentID, time.Now()),
		vnpay.FieldResponseCode: responseCode,
		"vnp_TransactionNo":     "14226112",
		"vnp_PayDate":           time.Now().Format("20060102150405"),
	}
	fields[vnpay.FieldSecureHash] = vnpay.Sign(fields, testSecret)
	return fields
}

func loadTicket(t *testing.T, id string) *models.Ticket {
	t.Helper()
	var ticket models.Ticket
	require.NoError(t, testDB.Where("id = ?", id).First(&ticket).Error)
	return &ticket
}

func loadPayment(t *testing.T, id string) *models.Payment {
	t.Helper()
	var payment models.Payment
	require.NoError(t, testDB.Where("id = ?", id).First(&payment).Error)
	return &payment
}

func TestReserveToBookedLifecycle(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	event := createApprovedEvent(t)
	ticketSvc, paymentSvc, pub := newStack()

	ticket, err := ticketSvc.Reserve(ctx, event.ID, "user-1", models.CategoryRegular, 2)
	require.NoError(t, err)
	assert.Equal(t, models.TicketPending, ticket.Status)

	payment, err := paymentSvc.CreateIntent(ctx, ticket.ID, "user-1", models.MethodVNPay, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(200).Equal(payment.Amount))
	assert.Contains(t, payment.RedirectURL, "vnp_SecureHash=")

	res := paymentSvc.HandleNotify(ctx, successCallback(payment.ID, "00"))
	assert.Equal(t, vnpay.RspOK, res.RspCode)

	assert.Equal(t, models.TicketBooked, loadTicket(t, ticket.ID).Status)
	assert.Equal(t, models.PaymentCompleted, loadPayment(t, payment.ID).Status)

	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)

	// Re-scanning at the gate is idempotent.
	code := loadTicket(t, ticket.ID).RedemptionCode
	first, err := ticketSvc.Validate(ctx, ticket.ID, code, "org-1")
	require.NoError(t, err)
	second, err := ticketSvc.Validate(ctx, ticket.ID, code, "org-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// A replayed IPN after settlement is a no-op ack.
	res = paymentSvc.HandleNotify(ctx, successCallback(payment.ID, "00"))
	assert.Equal(t, vnpay.RspOK, res.RspCode)
	assert.Equal(t, "order already confirmed", res.Message)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), pub.count())
}

func TestConcurrentNotifyDelivery(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	event := createApprovedEvent(t)
	ticketSvc, paymentSvc, pub := newStack()

	ticket, err := ticketSvc.Reserve(ctx, event.ID, "user-1", models.CategoryRegular, 1)
	require.NoError(t, err)
	payment, err := paymentSvc.CreateIntent(ctx, ticket.ID, "user-1", models.MethodVNPay, "10.0.0.1")
	require.NoError(t, err)

	fields := successCallback(payment.ID, "00")

	const deliveries = 20
	var wg sync.WaitGroup
	results := make([]*service.ReconcileResult, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = paymentSvc.HandleNotify(ctx, fields)
		}(i)
	}
	wg.Wait()

	// Every delivery acks 00; exactly one of them performed the transition.
	for i, res := range results {
		assert.Equal(t, vnpay.RspOK, res.RspCode, "delivery %d", i)
	}
	assert.Equal(t, models.TicketBooked, loadTicket(t, ticket.ID).Status)
	assert.Equal(t, models.PaymentCompleted, loadPayment(t, payment.ID).Status)

	// The hook fires exactly once no matter how many replicas raced.
	assert.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), pub.count())
}

func TestCancelCascadesToPendingPayment(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	event := createApprovedEvent(t)
	ticketSvc, paymentSvc, pub := newStack()

	ticket, err := ticketSvc.Reserve(ctx, event.ID, "user-1", models.CategoryVIP, 1)
	require.NoError(t, err)
	payment, err := paymentSvc.CreateIntent(ctx, ticket.ID, "user-1", models.MethodVNPay, "10.0.0.1")
	require.NoError(t, err)

	cancelled, err := ticketSvc.Cancel(ctx, ticket.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.TicketCancelled, cancelled.Status)
	assert.Equal(t, models.PaymentFailed, loadPayment(t, payment.ID).Status)

	// Cancelling again is a state conflict, not a double cascade.
	_, err = ticketSvc.Cancel(ctx, ticket.ID, "user-1")
	assert.ErrorIs(t, err, service.ErrInvalidState)

	// A success IPN arriving after cancellation finds a terminal payment: the
	// ticket must stay cancelled and the hook must not fire.
	res := paymentSvc.HandleNotify(ctx, successCallback(payment.ID, "00"))
	assert.Equal(t, vnpay.RspOK, res.RspCode)
	assert.Equal(t, models.TicketCancelled, loadTicket(t, ticket.ID).Status)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), pub.count())
}

func TestDuplicatePendingIntentRejected(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	event := createApprovedEvent(t)
	ticketSvc, paymentSvc, _ := newStack()

	ticket, err := ticketSvc.Reserve(ctx, event.ID, "user-1", models.CategoryRegular, 1)
	require.NoError(t, err)
	_, err = paymentSvc.CreateIntent(ctx, ticket.ID, "user-1", models.MethodVNPay, "10.0.0.1")
	require.NoError(t, err)

	_, err = paymentSvc.CreateIntent(ctx, ticket.ID, "user-1", models.MethodVNPay, "10.0.0.1")
	assert.ErrorIs(t, err, service.ErrPendingPaymentExists)

	// The partial unique index backs the service-level check even for a raw
	// insert that bypasses it.
	paymentRepo := repository.NewPaymentRepository(testDB)
	err = paymentRepo.Create(ctx, &models.Payment{
		ID:       "raw-duplicate",
		TicketID: ticket.ID,
		Method:   models.MethodVNPay,
		Amount:   decimal.NewFromInt(100),
		Status:   models.PaymentPending,
	})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestExpiredHoldNeverBooks(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	event := createApprovedEvent(t)
	ticketSvc, paymentSvc, pub := newStack()

	ticket, err := ticketSvc.Reserve(ctx, event.ID, "user-1", models.CategoryRegular, 1)
	require.NoError(t, err)
	payment, err := paymentSvc.CreateIntent(ctx, ticket.ID, "user-1", models.MethodVNPay, "10.0.0.1")
	require.NoError(t, err)

	// The hold lapses while the user sits on the gateway page.
	require.NoError(t, testDB.Model(&models.Ticket{}).
		Where("id = ?", ticket.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	res := paymentSvc.HandleNotify(ctx, successCallback(payment.ID, "00"))
	assert.Equal(t, vnpay.RspOK, res.RspCode)

	// Valid signature and success code, but too late: failed, never booked.
	assert.Equal(t, models.PaymentFailed, loadPayment(t, payment.ID).Status)
	assert.Equal(t, models.TicketPending, loadTicket(t, ticket.ID).Status)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), pub.count())
}

func TestForgedSignatureNeverBooks(t *testing.T) {
	cleanTables()
	ctx := context.Background()
	event := createApprovedEvent(t)
	ticketSvc, paymentSvc, pub := newStack()

	ticket, err := ticketSvc.Reserve(ctx, event.ID, "user-1", models.CategoryRegular, 1)
	require.NoError(t, err)
	payment, err := paymentSvc.CreateIntent(ctx, ticket.ID, "user-1", models.MethodVNPay, "10.0.0.1")
	require.NoError(t, err)

	fields := successCallback(payment.ID, "00")
	fields[vnpay.FieldResponseCode] = "00"
	fields[vnpay.FieldSecureHash] = "deadbeef"

	res := paymentSvc.HandleNotify(ctx, fields)
	assert.Equal(t, vnpay.RspInvalidSignature, res.RspCode)

	assert.Equal(t, models.PaymentFailed, loadPayment(t, payment.ID).Status)
	assert.Equal(t, models.TicketPending, loadTicket(t, ticket.ID).Status)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(0), pub.count())
}
