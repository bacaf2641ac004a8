package worker

import (
	"context"

	"orders-api/internal/broker"
	"orders-api/internal/models"
	"orders-api/internal/util"

	"go.uber.org/zap"
)

// NotificationWorker consumes order lifecycle events and notifies customers
// of status changes. Delivery is currently the structured log; the consumer
// loop and commit semantics are the part that matters.
type NotificationWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(consumer *broker.Consumer) *NotificationWorker {
	w := &NotificationWorker{
		consumer: consumer,
		logger:   util.GetLogger(),
	}

	handler := broker.NewEventHandler()
	handler.OnStatusChanged(w.handleStatusChanged)
	handler.OnPaymentRecorded(w.handlePaymentRecorded)
	w.eventHandler = handler

	return w
}

// Start starts the worker
func (w *NotificationWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting notification worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *NotificationWorker) Stop() error {
	w.logger.Info("Stopping notification worker")
	return w.consumer.Close()
}

func (w *NotificationWorker) handleStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	w.logger.Info("Order status notification",
		zap.Int64("order_id", event.OrderID),
		zap.String("from", string(event.From)),
		zap.String("to", string(event.To)))
	return nil
}

func (w *NotificationWorker) handlePaymentRecorded(ctx context.Context, event *models.PaymentRecordedEvent) error {
	w.logger.Info("Payment notification",
		zap.Int64("order_id", event.OrderID),
		zap.String("txn_id", event.GatewayTxnID),
		zap.String("status", string(event.Status)))
	return nil
}
