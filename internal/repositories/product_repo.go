package repositories

import (
	"context"

	"nexora/internal/models"
)

// ProductRepository defines the interface for product data access.
// Every error it returns is a *StoreError.
type ProductRepository interface {
	// GetAll returns every product, newest first.
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	// Create persists product and fills in its ID and timestamps.
	Create(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id int64) error
}
