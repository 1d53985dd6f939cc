package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrNotConfigured is returned when no payment provider key is set.
var ErrNotConfigured = errors.New("payments are not configured")

// CheckoutRequest describes a single-item purchase.
type CheckoutRequest struct {
	ProductName string
	Price       float64
	Origin      string
}

// CheckoutSession is a hosted payment page the shopper is redirected to.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Provider opens hosted checkout sessions.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

// ProviderError is a rejection from the payment provider.
type ProviderError struct {
	Message string
	Code    string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("payment provider error (%s): %s", e.Code, e.Message)
	}
	return "payment provider error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeProvider creates Stripe Checkout sessions in payment mode.
type StripeProvider struct {
	sessions sessionCreator
	currency string
}

// NewStripeProvider creates a provider using the secret key. Currency
// defaults to usd.
func NewStripeProvider(secretKey, currency string) *StripeProvider {
	var sessions sessionCreator
	if secretKey != "" {
		sessions = client.New(secretKey, nil).CheckoutSessions
	}
	return newStripeProvider(sessions, currency)
}

func newStripeProvider(sessions sessionCreator, currency string) *StripeProvider {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeProvider{sessions: sessions, currency: currency}
}

// UnitAmount converts a decimal price into the smallest currency unit,
// rounding half away from zero.
func UnitAmount(price float64) int64 {
	return decimal.NewFromFloat(price).Shift(2).Round(0).IntPart()
}

// CreateCheckoutSession opens a session for one unit of the requested item.
// The shopper returns to <origin>/success on payment and <origin> on cancel.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if p.sessions == nil {
		return nil, ErrNotConfigured
	}
	origin := strings.TrimRight(req.Origin, "/")

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.ProductName),
					},
					UnitAmount: stripe.Int64(UnitAmount(req.Price)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(origin + "/success"),
		CancelURL:  stripe.String(origin),
	}
	params.Context = ctx

	session, err := p.sessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &ProviderError{Message: stripeErr.Msg, Code: string(stripeErr.Code), Err: err}
		}
		return nil, &ProviderError{Message: err.Error(), Err: err}
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
