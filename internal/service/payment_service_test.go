package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/gateway"
	"orders-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCharger mimics the gateway's two-outcome contract: tokens prefixed
// tok_ complete, tok_declined is rejected, anything else never reaches the
// processor.
type stubCharger struct {
	calls int
	down  bool
}

func (c *stubCharger) Name() string { return "stripe" }

func (c *stubCharger) Charge(ctx context.Context, token string, amount float64, payerEmail string) (*gateway.Outcome, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errs.ErrGateway
	}
	c.calls++
	if c.down {
		return nil, errs.ErrGatewayUnavailable
	}
	if token == "tok_declined" {
		return &gateway.Outcome{Status: models.PaymentStatusRejected, TransactionID: "pi_declined"}, nil
	}
	return &gateway.Outcome{Status: models.PaymentStatusApproved, TransactionID: "pi_ok"}, nil
}

// stubPaymentStore upserts payments on their natural key, like the real one.
type stubPaymentStore struct {
	orders   map[int64]*models.Order
	payments map[string]*models.Payment
}

func newStubPaymentStore() *stubPaymentStore {
	return &stubPaymentStore{
		orders:   map[int64]*models.Order{},
		payments: map[string]*models.Payment{},
	}
}

func (s *stubPaymentStore) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return order, nil
}

func (s *stubPaymentStore) RecordPaymentOutcome(ctx context.Context, payment *models.Payment, confirmOrder bool) error {
	key := payment.GatewayTxnID
	s.payments[key] = payment
	if confirmOrder {
		s.orders[payment.OrderID].Status = models.OrderStatusConfirmed
	}
	return nil
}

type stubLocker struct {
	held     map[int64]bool
	acquired int
	released int
}

func newStubLocker() *stubLocker { return &stubLocker{held: map[int64]bool{}} }

func (l *stubLocker) AcquireOrderLock(ctx context.Context, orderID int64, ttl time.Duration) (bool, error) {
	if l.held[orderID] {
		return false, nil
	}
	l.held[orderID] = true
	l.acquired++
	return true, nil
}

func (l *stubLocker) ReleaseOrderLock(ctx context.Context, orderID int64) error {
	delete(l.held, orderID)
	l.released++
	return nil
}

func paymentFixture() (*PaymentService, *stubPaymentStore, *stubCharger, *stubLocker) {
	store := newStubPaymentStore()
	store.orders[1] = &models.Order{ID: 1, Status: models.OrderStatusPending, Total: 49.00}
	charger := &stubCharger{}
	locker := newStubLocker()
	svc := NewPaymentService(store, charger, locker, nopPublisher{}, 30*time.Second)
	return svc, store, charger, locker
}

func TestProcessPaymentApproved(t *testing.T) {
	svc, store, _, locker := paymentFixture()

	orderID := int64(1)
	result, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "tok_valid",
		Amount:          49.00,
		OrderID:         &orderID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, result.Status)
	assert.Equal(t, "pi_ok", result.GatewayTransactionID)

	require.Len(t, store.payments, 1)
	payment := store.payments["pi_ok"]
	assert.Equal(t, models.PaymentStatusApproved, payment.Status)
	assert.Equal(t, 49.00, payment.Amount)
	assert.Equal(t, "stripe", payment.Gateway)

	assert.Equal(t, models.OrderStatusConfirmed, store.orders[1].Status)
	assert.Equal(t, locker.acquired, locker.released, "lock must be released")
}

func TestProcessPaymentRejectedLeavesStatus(t *testing.T) {
	svc, store, _, _ := paymentFixture()

	orderID := int64(1)
	result, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "tok_declined",
		Amount:          49.00,
		OrderID:         &orderID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusRejected, result.Status)

	// the payment row exists, the order is untouched
	require.Len(t, store.payments, 1)
	assert.Equal(t, models.OrderStatusPending, store.orders[1].Status)
}

func TestProcessPaymentMissingToken(t *testing.T) {
	svc, store, charger, _ := paymentFixture()

	orderID := int64(1)
	_, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "",
		Amount:          49.00,
		OrderID:         &orderID,
	})
	assert.ErrorIs(t, err, errs.ErrGateway)
	assert.Zero(t, charger.calls, "no remote call for a missing credential")
	assert.Empty(t, store.payments)
}

func TestProcessPaymentGatewayUnavailable(t *testing.T) {
	svc, store, charger, _ := paymentFixture()
	charger.down = true

	orderID := int64(1)
	_, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "tok_valid",
		Amount:          49.00,
		OrderID:         &orderID,
	})
	assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	assert.Empty(t, store.payments, "no payment row without a completed call")
	assert.Equal(t, models.OrderStatusPending, store.orders[1].Status)
}

func TestProcessPaymentRetrySameTxnUpserts(t *testing.T) {
	svc, store, _, _ := paymentFixture()

	orderID := int64(1)
	req := &PaymentRequest{CredentialToken: "tok_valid", Amount: 49.00, OrderID: &orderID}

	_, err := svc.ProcessPayment(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.ProcessPayment(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, store.payments, 1, "same (order, txn) must not duplicate")
}

func TestProcessPaymentConcurrentSubmit(t *testing.T) {
	svc, _, _, locker := paymentFixture()
	locker.held[1] = true

	orderID := int64(1)
	_, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "tok_valid",
		Amount:          49.00,
		OrderID:         &orderID,
	})
	assert.ErrorIs(t, err, errs.ErrConflict)
}

func TestProcessPaymentWithoutOrder(t *testing.T) {
	svc, store, charger, locker := paymentFixture()

	result, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "tok_valid",
		Amount:          10.00,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusApproved, result.Status)
	assert.Equal(t, 1, charger.calls)
	assert.Empty(t, store.payments, "nothing persists without an order id")
	assert.Zero(t, locker.acquired)
}

func TestProcessPaymentUnknownOrder(t *testing.T) {
	svc, _, charger, _ := paymentFixture()

	orderID := int64(99)
	_, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "tok_valid",
		Amount:          49.00,
		OrderID:         &orderID,
	})
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Zero(t, charger.calls, "unknown order must not be charged")
}

func TestProcessPaymentInvalidAmount(t *testing.T) {
	svc, _, charger, _ := paymentFixture()

	_, err := svc.ProcessPayment(context.Background(), &PaymentRequest{
		CredentialToken: "tok_valid",
		Amount:          0,
	})
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Zero(t, charger.calls)
}
