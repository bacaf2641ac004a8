package service

import (
	"context"
	"fmt"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/gateway"
	"orders-api/internal/models"
	"orders-api/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PaymentStore is the persistence surface reconciliation depends on.
type PaymentStore interface {
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	RecordPaymentOutcome(ctx context.Context, payment *models.Payment, confirmOrder bool) error
}

// OrderLocker serializes reconciliation per order so a client double-submit
// cannot charge the same order twice.
type OrderLocker interface {
	AcquireOrderLock(ctx context.Context, orderID int64, ttl time.Duration) (bool, error)
	ReleaseOrderLock(ctx context.Context, orderID int64) error
}

// PaymentService drives the charge-then-reconcile pipeline: one external
// charge attempt, then the outcome persisted in its own short transaction.
// The gateway call never runs inside a database transaction.
type PaymentService struct {
	store          PaymentStore
	charger        gateway.Charger
	locker         OrderLocker
	eventPublisher Publisher
	lockTTL        time.Duration
	logger         *zap.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(store PaymentStore, charger gateway.Charger, locker OrderLocker, eventPublisher Publisher, lockTTL time.Duration) *PaymentService {
	return &PaymentService{
		store:          store,
		charger:        charger,
		locker:         locker,
		eventPublisher: eventPublisher,
		lockTTL:        lockTTL,
		logger:         util.GetLogger(),
	}
}

// PaymentRequest is a charge request, optionally linked to an order.
type PaymentRequest struct {
	CredentialToken string  `json:"credentialToken"`
	Amount          float64 `json:"amount"`
	PayerEmail      string  `json:"payerEmail"`
	OrderID         *int64  `json:"orderId"`
}

// PaymentResult is the normalized outcome returned to the client.
type PaymentResult struct {
	Status               models.PaymentStatus `json:"status"`
	GatewayTransactionID string               `json:"gatewayTransactionId"`
}

// ProcessPayment charges the gateway and reconciles the outcome. With an
// order id, the payment row is upserted on (order id, gateway transaction
// id) and an approved outcome flips the order to confirmed; no other outcome
// touches order status. Without an order id the charge still happens but
// nothing is persisted.
func (ps *PaymentService) ProcessPayment(ctx context.Context, req *PaymentRequest) (*PaymentResult, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ProcessPayment")
	defer span.End()

	util.PaymentAttemptsTotal.Inc()

	if req.Amount <= 0 {
		util.PaymentFailuresTotal.WithLabelValues("invalid_amount").Inc()
		return nil, fmt.Errorf("amount must be positive: %w", errs.ErrValidation)
	}

	var order *models.Order
	if req.OrderID != nil {
		var err error
		order, err = ps.store.GetOrderByID(ctx, *req.OrderID)
		if err != nil {
			util.PaymentFailuresTotal.WithLabelValues("unknown_order").Inc()
			return nil, err
		}

		acquired, err := ps.locker.AcquireOrderLock(ctx, order.ID, ps.lockTTL)
		if err != nil {
			ps.logger.Warn("Order lock unavailable, proceeding unlocked",
				zap.Int64("order_id", order.ID), zap.Error(err))
		} else if !acquired {
			util.PaymentFailuresTotal.WithLabelValues("concurrent_payment").Inc()
			return nil, fmt.Errorf("payment already in progress for order %d: %w",
				order.ID, errs.ErrConflict)
		} else {
			defer func() {
				if err := ps.locker.ReleaseOrderLock(context.Background(), order.ID); err != nil {
					ps.logger.Warn("Failed to release order lock",
						zap.Int64("order_id", order.ID), zap.Error(err))
				}
			}()
		}
	}

	// The charge runs outside any database transaction; no lock is held on
	// the order row across gateway latency.
	outcome, err := ps.charger.Charge(ctx, req.CredentialToken, req.Amount, req.PayerEmail)
	if err != nil {
		util.PaymentFailuresTotal.WithLabelValues("gateway").Inc()
		return nil, err
	}

	util.PaymentOutcomesTotal.WithLabelValues(string(outcome.Status)).Inc()

	if order != nil {
		payment := &models.Payment{
			OrderID:      order.ID,
			Gateway:      ps.charger.Name(),
			GatewayTxnID: outcome.TransactionID,
			Status:       outcome.Status,
			Amount:       req.Amount,
		}

		approved := outcome.Status == models.PaymentStatusApproved
		if err := ps.store.RecordPaymentOutcome(ctx, payment, approved); err != nil {
			util.PaymentFailuresTotal.WithLabelValues("db_error").Inc()
			return nil, fmt.Errorf("failed to record payment: %v: %w", err, errs.ErrPersistence)
		}

		ps.logger.Info("Payment reconciled",
			zap.Int64("order_id", order.ID),
			zap.String("txn_id", outcome.TransactionID),
			zap.String("status", string(outcome.Status)))

		ps.publishRecorded(ctx, payment)
		if approved {
			ps.publishConfirmed(ctx, order)
		}
	}

	return &PaymentResult{
		Status:               outcome.Status,
		GatewayTransactionID: outcome.TransactionID,
	}, nil
}

func (ps *PaymentService) publishRecorded(ctx context.Context, payment *models.Payment) {
	event := &models.PaymentRecordedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypePaymentRecorded,
			Timestamp: time.Now(),
		},
		OrderID:      payment.OrderID,
		GatewayTxnID: payment.GatewayTxnID,
		Status:       payment.Status,
		Amount:       payment.Amount,
	}
	if err := ps.eventPublisher.PublishPaymentRecorded(ctx, event); err != nil {
		ps.logger.Error("Failed to publish PaymentRecorded event", zap.Error(err))
	}
}

func (ps *PaymentService) publishConfirmed(ctx context.Context, order *models.Order) {
	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		From:    order.Status,
		To:      models.OrderStatusConfirmed,
	}
	if err := ps.eventPublisher.PublishOrderStatusChanged(ctx, event); err != nil {
		ps.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
	}
}
