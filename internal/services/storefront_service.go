package services

import (
	"context"

	"nexora/internal/catalog"
	"nexora/internal/models"
	"nexora/internal/repositories"
)

// Facets offered on the storefront, in display order.
var Facets = []string{catalog.FacetAll, "Male", "Female", "Unisex"}

// StorefrontService serves the read-only shopper views.
type StorefrontService struct {
	catalog *catalog.Catalog
	repo    repositories.ProductRepository
}

// NewStorefrontService creates a new StorefrontService.
func NewStorefrontService(cat *catalog.Catalog, repo repositories.ProductRepository) *StorefrontService {
	return &StorefrontService{catalog: cat, repo: repo}
}

// ListProducts returns the catalog filtered by gender facet.
func (s *StorefrontService) ListProducts(gender string) []models.Product {
	return s.catalog.FilteredBy(gender)
}

// GetProduct reads a single product from the store.
func (s *StorefrontService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CatalogStatus reports the in-memory list size and whether a load is running.
func (s *StorefrontService) CatalogStatus() (products int, loading bool) {
	return s.catalog.Len(), s.catalog.Loading()
}
