package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestChargeRequiresToken(t *testing.T) {
	g := NewStripeGateway("sk_test_dummy", "brl", "https://example.com/return", time.Second)

	_, err := g.Charge(context.Background(), "   ", 49.00, "")
	assert.ErrorIs(t, err, errs.ErrGateway, "a blank token must fail before any network call")
}

func TestNormalizeIntentStatus(t *testing.T) {
	assert.Equal(t, models.PaymentStatusApproved, normalizeIntentStatus(stripe.PaymentIntentStatusSucceeded))

	for _, status := range []stripe.PaymentIntentStatus{
		stripe.PaymentIntentStatusRequiresPaymentMethod,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusCanceled,
	} {
		assert.Equal(t, models.PaymentStatusRejected, normalizeIntentStatus(status), string(status))
	}
}

func TestOutcomeFromError(t *testing.T) {
	g := NewStripeGateway("sk_test_dummy", "brl", "", time.Second)

	t.Run("card decline is a completed rejected charge", func(t *testing.T) {
		cardErr := &stripe.Error{
			Type:          stripe.ErrorTypeCard,
			Code:          stripe.ErrorCodeCardDeclined,
			PaymentIntent: &stripe.PaymentIntent{ID: "pi_declined"},
		}

		outcome, err := g.outcomeFromError(cardErr)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusRejected, outcome.Status)
		assert.Equal(t, "pi_declined", outcome.TransactionID)
	})

	t.Run("invalid request is a caller error", func(t *testing.T) {
		reqErr := &stripe.Error{Type: stripe.ErrorTypeInvalidRequest}

		outcome, err := g.outcomeFromError(reqErr)
		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, errs.ErrGateway)
	})

	t.Run("transport failure carries no outcome", func(t *testing.T) {
		outcome, err := g.outcomeFromError(errors.New("connection reset"))
		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)

		apiErr := &stripe.Error{Type: stripe.ErrorTypeAPI}
		outcome, err = g.outcomeFromError(apiErr)
		assert.Nil(t, outcome)
		assert.ErrorIs(t, err, errs.ErrGatewayUnavailable)
	})
}
