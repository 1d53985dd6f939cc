package catalog

import (
	"context"

	"nexora/internal/models"
	"nexora/internal/repositories"
)

// Client reaches the product store. Each call is a single round trip with no
// retry, and failures are returned to the caller unchanged.
type Client interface {
	// FetchAll returns the current product set, newest first.
	FetchAll(ctx context.Context) ([]models.Product, error)
	// Insert persists a parsed draft and returns the stored record.
	Insert(ctx context.Context, draft models.ProductDraft) (*models.Product, error)
	// Remove deletes the product with the given id.
	Remove(ctx context.Context, id int64) error
}

// StoreClient is an in-process Client backed by a ProductRepository.
type StoreClient struct {
	repo repositories.ProductRepository
}

// NewStoreClient creates a StoreClient.
func NewStoreClient(repo repositories.ProductRepository) *StoreClient {
	return &StoreClient{repo: repo}
}

// FetchAll reads straight from the repository; nothing is cached in between.
func (c *StoreClient) FetchAll(ctx context.Context) ([]models.Product, error) {
	return c.repo.GetAll(ctx)
}

// Insert creates the product described by draft.
func (c *StoreClient) Insert(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	product := draft.ToProduct()
	if err := c.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Remove deletes the product with the given id.
func (c *StoreClient) Remove(ctx context.Context, id int64) error {
	return c.repo.Delete(ctx, id)
}
