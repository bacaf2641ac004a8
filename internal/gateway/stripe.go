package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"orders-api/internal/errs"
	"orders-api/internal/models"
	"orders-api/internal/util"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// StripeGateway charges card tokens through Stripe PaymentIntents.
type StripeGateway struct {
	api       *client.API
	currency  string
	returnURL string
	logger    *zap.Logger
}

// NewStripeGateway builds a Stripe client with a bounded HTTP timeout so a
// slow processor cannot hold a request open indefinitely.
func NewStripeGateway(secretKey, currency, returnURL string, timeout time.Duration) *StripeGateway {
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient:    &http.Client{Timeout: timeout},
		LeveledLogger: &stripe.LeveledLogger{Level: stripe.LevelError},
	})

	api := &client.API{}
	api.Init(secretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeGateway{
		api:       api,
		currency:  currency,
		returnURL: returnURL,
		logger:    util.GetLogger(),
	}
}

// Name implements Charger.
func (g *StripeGateway) Name() string { return "stripe" }

// Charge implements Charger. The credential is validated before any network
// call; transport failures surface as ErrGatewayUnavailable with no outcome.
func (g *StripeGateway) Charge(ctx context.Context, token string, amount float64, payerEmail string) (*Outcome, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("missing card token: %w", errs.ErrGateway)
	}

	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(models.Cents(amount)),
		Currency: stripe.String(g.currency),
		Confirm:  stripe.Bool(true),
		PaymentMethodData: &stripe.PaymentIntentPaymentMethodDataParams{
			Type: stripe.String("card"),
		},
		ReturnURL:   stripe.String(g.returnURL),
		Description: stripe.String("food order"),
	}
	params.AddExtra("payment_method_data[card][token]", token)
	if payerEmail != "" {
		params.ReceiptEmail = stripe.String(payerEmail)
	}

	start := time.Now()
	intent, err := g.api.PaymentIntents.New(params)
	util.GatewayChargeLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		return g.outcomeFromError(err)
	}

	outcome := &Outcome{
		Status:        normalizeIntentStatus(intent.Status),
		TransactionID: intent.ID,
	}
	g.logger.Info("Gateway charge completed",
		zap.String("intent_id", intent.ID),
		zap.String("status", string(outcome.Status)))
	return outcome, nil
}

// outcomeFromError classifies a failed Stripe call. A card decline is a
// completed call with a rejected outcome; everything else carries no outcome.
func (g *StripeGateway) outcomeFromError(err error) (*Outcome, error) {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		switch stripeErr.Type {
		case stripe.ErrorTypeCard:
			outcome := &Outcome{Status: models.PaymentStatusRejected}
			if stripeErr.PaymentIntent != nil {
				outcome.TransactionID = stripeErr.PaymentIntent.ID
			}
			g.logger.Info("Gateway declined charge", zap.String("code", string(stripeErr.Code)))
			return outcome, nil
		case stripe.ErrorTypeInvalidRequest:
			g.logger.Warn("Gateway rejected request", zap.String("code", string(stripeErr.Code)))
			return nil, fmt.Errorf("gateway rejected request: %w", errs.ErrGateway)
		}
	}

	g.logger.Error("Gateway call failed", zap.Error(err))
	return nil, fmt.Errorf("gateway call failed: %w", errs.ErrGatewayUnavailable)
}

// normalizeIntentStatus collapses a PaymentIntent status to the two-state
// outcome model. Only a fully succeeded intent counts as approved.
func normalizeIntentStatus(status stripe.PaymentIntentStatus) models.PaymentStatus {
	if status == stripe.PaymentIntentStatusSucceeded {
		return models.PaymentStatusApproved
	}
	return models.PaymentStatusRejected
}
