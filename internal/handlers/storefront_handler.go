package handlers

import (
	"strconv"
	"time"

	"nexora/internal/repositories"
	"nexora/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// StorefrontHandler serves the public product pages.
type StorefrontHandler struct {
	service *services.StorefrontService
}

// NewStorefrontHandler creates a new StorefrontHandler.
func NewStorefrontHandler(service *services.StorefrontService) *StorefrontHandler {
	return &StorefrontHandler{service: service}
}

// RegisterRoutes registers the storefront routes with the Fiber app.
func (h *StorefrontHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
}

// HandleListProducts lists products, optionally filtered by ?gender=.
func (h *StorefrontHandler) HandleListProducts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    h.service.ListProducts(c.Query("gender")),
		"facets":  services.Facets,
	})
}

// HandleGetProduct returns a single product.
func (h *StorefrontHandler) HandleGetProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid product ID",
		})
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Product not found",
			})
		}
		zap.L().Error("failed to load product", zap.Int64("id", id), zap.Error(err))
		return storeFailure(c, "", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleHealth reports liveness and the in-memory catalog's state.
func (h *StorefrontHandler) HandleHealth(c *fiber.Ctx) error {
	products, loading := h.service.CatalogStatus()
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
		"catalog": fiber.Map{
			"products": products,
			"loading":  loading,
		},
	})
}
