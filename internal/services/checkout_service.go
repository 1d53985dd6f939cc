package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"nexora/internal/payments"
)

var (
	// ErrProductNotFound is returned when a checkout request names no product.
	ErrProductNotFound = errors.New("Product not found")
	// ErrInvalidPrice is returned for free or malformed prices.
	ErrInvalidPrice = errors.New("Product price must be greater than zero")
)

// CheckoutItem is the product a shopper is buying.
type CheckoutItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CheckoutService starts hosted payments.
type CheckoutService struct {
	provider payments.Provider
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(provider payments.Provider) *CheckoutService {
	return &CheckoutService{provider: provider}
}

// Checkout opens a payment session for one unit of item. The shopper is sent
// back to origin when the session ends.
func (s *CheckoutService) Checkout(ctx context.Context, item *CheckoutItem, origin string) (*payments.CheckoutSession, error) {
	if item == nil || strings.TrimSpace(item.Name) == "" {
		return nil, ErrProductNotFound
	}
	if item.Price <= 0 || math.IsNaN(item.Price) || math.IsInf(item.Price, 0) {
		return nil, ErrInvalidPrice
	}
	return s.provider.CreateCheckoutSession(ctx, payments.CheckoutRequest{
		ProductName: strings.TrimSpace(item.Name),
		Price:       item.Price,
		Origin:      origin,
	})
}
