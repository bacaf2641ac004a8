package gateway

import (
	"context"

	"orders-api/internal/models"
)

// Outcome is the normalized result of a completed charge attempt. Exactly
// two outcomes exist: approved or rejected. Partial and pending gateway
// states collapse to rejected.
type Outcome struct {
	Status        models.PaymentStatus
	TransactionID string
}

// Charger creates and immediately confirms one external charge per call.
// Implementations are not idempotent at the gateway level; the caller must
// not invoke Charge twice for the same intended payment.
type Charger interface {
	// Name is the gateway tag recorded on payment rows.
	Name() string

	// Charge attempts to charge amount (two-decimal major units) against
	// the single-use credential token. A nil error means the call
	// completed and the outcome is authoritative.
	Charge(ctx context.Context, token string, amount float64, payerEmail string) (*Outcome, error)
}
