package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"orders-api/internal/models"
)

// RecordPaymentOutcome persists a gateway outcome in one short transaction:
// the payment row is upserted on its natural key (order_id, gateway_txn_id)
// so a retried confirmation never produces a duplicate, and the order is
// flipped to confirmed in the same transaction when the charge was approved.
func (s *Store) RecordPaymentOutcome(ctx context.Context, payment *models.Payment, confirmOrder bool) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowxContext(ctx, `
		INSERT INTO payments (order_id, gateway, gateway_txn_id, status, amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (order_id, gateway_txn_id)
		DO UPDATE SET status = EXCLUDED.status, amount = EXCLUDED.amount
		RETURNING id, created_at`,
		payment.OrderID, payment.Gateway, payment.GatewayTxnID,
		payment.Status, payment.Amount).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}

	if confirmOrder {
		_, err = tx.ExecContext(ctx,
			"UPDATE orders SET status = $1 WHERE id = $2",
			models.OrderStatusConfirmed, payment.OrderID)
		if err != nil {
			return fmt.Errorf("failed to confirm order: %w", err)
		}
	}

	return tx.Commit()
}

// GetFirstPaymentByOrderID retrieves the earliest payment record for an
// order, or nil when none exists.
func (s *Store) GetFirstPaymentByOrderID(ctx context.Context, orderID int64) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.GetContext(ctx, &payment,
		"SELECT * FROM payments WHERE order_id = $1 ORDER BY created_at, id LIMIT 1", orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
