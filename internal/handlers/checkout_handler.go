package handlers

import (
	"errors"

	"nexora/internal/payments"
	"nexora/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CheckoutHandler starts hosted payments.
type CheckoutHandler struct {
	service *services.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(service *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// RegisterRoutes registers the checkout route behind guards.
func (h *CheckoutHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	router.Post("/checkout", append(guards, h.HandleCheckout)...)
}

// CheckoutRequest is the body of POST /api/checkout.
type CheckoutRequest struct {
	Product *services.CheckoutItem `json:"product"`
}

// HandleCheckout creates a payment session and returns its redirect URL.
func (h *CheckoutHandler) HandleCheckout(c *fiber.Ctx) error {
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}

	origin := c.Get(fiber.HeaderOrigin)
	if origin == "" {
		origin = c.BaseURL()
	}

	session, err := h.service.Checkout(c.UserContext(), req.Product, origin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound), errors.Is(err, services.ErrInvalidPrice):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, payments.ErrNotConfigured):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Checkout is not available",
			})
		}
		zap.L().Error("checkout failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":   "Could not start checkout",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"url": session.URL})
}
