package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"nexora/internal/catalog"
	"nexora/internal/models"
	"nexora/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ProductHandler serves the admin product endpoints.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: catalog.NewValidator(),
	}
}

// RegisterRoutes registers the admin product routes. The router is expected
// to carry the auth and no-cache middleware.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/add-product", h.HandleListProducts)
	router.Post("/add-product", h.HandleAddProduct)
	router.Delete("/delete-product", h.HandleDeleteProduct)
}

// AddProductRequest is the body of POST /api/admin/add-product.
type AddProductRequest struct {
	Name     string   `json:"name" validate:"required"`
	Gender   string   `json:"gender" validate:"required"`
	Price    *float64 `json:"price" validate:"required"`
	OldPrice *float64 `json:"oldPrice"`
	Image    string   `json:"image" validate:"required"`
}

// DeleteProductRequest is the body of DELETE /api/admin/delete-product.
type DeleteProductRequest struct {
	ID ProductID `json:"id"`
}

// ProductID accepts a JSON number or a numeric string.
type ProductID int64

func (id *ProductID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*id = 0
		return nil
	}
	raw = strings.TrimSpace(strings.Trim(raw, `"`))
	if raw == "" {
		*id = 0
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product id %q", raw)
	}
	*id = ProductID(n)
	return nil
}

// HandleListProducts returns every product, newest first, read from the store.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		zap.L().Error("failed to list products", zap.Error(err))
		return storeFailure(c, "", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
		"status":  "Fetch successful",
	})
}

// HandleAddProduct inserts a product and returns the stored record.
func (h *ProductHandler) HandleAddProduct(c *fiber.Ctx) error {
	var req AddProductRequest
	if err := c.BodyParser(&req); err != nil {
		zap.L().Debug("invalid add-product body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.service.AddProduct(c.UserContext(), models.ProductDraft{
		Name:     req.Name,
		Gender:   req.Gender,
		Price:    *req.Price,
		OldPrice: req.OldPrice,
		Image:    req.Image,
	})
	if err != nil {
		var fieldErr *catalog.ValidationError
		if errors.As(err, &fieldErr) {
			return validationFailed(c, err)
		}
		zap.L().Error("failed to add product", zap.String("name", req.Name), zap.Error(err))
		return storeFailure(c, "", err)
	}

	zap.L().Info("product added", zap.Int64("id", product.ID), zap.String("name", product.Name))
	return c.JSON(fiber.Map{
		"success": true,
		"data":    []models.Product{*product},
		"status":  "Insert successful",
	})
}

// HandleDeleteProduct removes the product named in the body.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	var req DeleteProductRequest
	if err := c.BodyParser(&req); err != nil || req.ID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product ID is required",
		})
	}

	id := int64(req.ID)
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		zap.L().Error("failed to delete product", zap.Int64("id", id), zap.Error(err))
		return storeFailure(c, "Failed to delete product", err)
	}

	zap.L().Info("product deleted", zap.Int64("id", id))
	return c.JSON(fiber.Map{
		"message": "Product deleted",
	})
}
