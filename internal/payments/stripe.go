package payments

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/stripe/stripe-go/v79"
	checkoutsession "github.com/stripe/stripe-go/v79/checkout/session"
)

// StripeGateway runs checkout through Stripe Checkout Sessions in payment
// mode. The booking's transaction id travels as client reference id and
// metadata so callbacks can be correlated.
type StripeGateway struct {
	secretKey  string
	successURL string
	cancelURL  string
}

type StripeConfig struct {
	SecretKey  string
	SuccessURL string
	CancelURL  string
}

func NewStripeGateway(cfg StripeConfig) (*StripeGateway, error) {
	key := strings.TrimSpace(cfg.SecretKey)
	if key == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" || strings.TrimSpace(cfg.CancelURL) == "" {
		return nil, errors.New("success and cancel URLs are required")
	}
	return &StripeGateway{
		secretKey:  key,
		successURL: strings.TrimSpace(cfg.SuccessURL),
		cancelURL:  strings.TrimSpace(cfg.CancelURL),
	}, nil
}

func (g *StripeGateway) Initiate(_ context.Context, p InitiateParams) (Session, error) {
	// stripe-go uses a package-level API key; set it per call.
	stripe.Key = g.secretKey

	currency := strings.ToLower(strings.TrimSpace(p.Currency))
	if currency == "" {
		currency = "usd"
	}
	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = "Facility booking"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.successURL),
		CancelURL:         stripe.String(g.cancelURL),
		ClientReferenceID: stripe.String(p.TransactionID),
		CustomerEmail:     stripe.String(p.CustomerEmail),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(toMinorUnits(p.Amount)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"transaction_id": p.TransactionID,
			"customer_name":  p.CustomerName,
		},
	}
	params.IdempotencyKey = stripe.String(p.TransactionID)

	sess, err := checkoutsession.New(params)
	if err != nil {
		return Session{}, err
	}
	return Session{ProviderSessionID: sess.ID, PaymentURL: sess.URL}, nil
}

func (g *StripeGateway) Verify(_ context.Context, providerSessionID string) (Status, error) {
	stripe.Key = g.secretKey

	sess, err := checkoutsession.Get(providerSessionID, nil)
	if err != nil {
		return StatusPending, err
	}
	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid {
		return StatusPaid, nil
	}
	if sess.Status == stripe.CheckoutSessionStatusExpired {
		return StatusFailed, nil
	}
	return StatusPending, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
