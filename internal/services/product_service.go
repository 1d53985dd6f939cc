package services

import (
	"context"
	"fmt"
	"time"

	"nexora/internal/catalog"
	"nexora/internal/models"
	"nexora/pkg/rabbitmq"

	"go.uber.org/zap"
)

// EventPublisher announces confirmed catalog changes to other instances.
type EventPublisher interface {
	PublishCatalogEvent(event rabbitmq.CatalogEvent) error
}

// ProductService handles the admin side of the catalog.
type ProductService struct {
	client  catalog.Client
	catalog *catalog.Catalog
	events  EventPublisher
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(client catalog.Client, cat *catalog.Catalog, events EventPublisher) *ProductService {
	return &ProductService{
		client:  client,
		catalog: cat,
		events:  events,
	}
}

// ListProducts reads the full product set straight from the store.
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.client.FetchAll(ctx)
}

// AddProduct validates the draft and inserts it through the catalog.
func (s *ProductService) AddProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	draft = draft.Normalize()
	if err := catalog.ValidateDraft(draft); err != nil {
		return nil, err
	}

	product, err := s.catalog.Add(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.publish(rabbitmq.EventProductCreated, product.ID)
	return product, nil
}

// DeleteProduct removes a product through the catalog.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return &catalog.ValidationError{Field: "id", Message: "Product ID is required"}
	}
	if err := s.catalog.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(rabbitmq.EventProductDeleted, id)
	return nil
}

// ReloadCatalog refreshes the in-memory list from the store.
func (s *ProductService) ReloadCatalog(ctx context.Context) error {
	if err := s.catalog.Load(ctx); err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}
	return nil
}

// HandleCatalogEvent reloads the catalog after another instance changed it.
func (s *ProductService) HandleCatalogEvent(event rabbitmq.CatalogEvent) error {
	zap.L().Info("catalog changed elsewhere",
		zap.String("type", event.Type),
		zap.Int64("product_id", event.ProductID),
		zap.String("origin", event.Origin))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.ReloadCatalog(ctx)
}

func (s *ProductService) publish(eventType string, productID int64) {
	if s.events == nil {
		return
	}
	event := rabbitmq.CatalogEvent{Type: eventType, ProductID: productID, At: time.Now().UTC()}
	if err := s.events.PublishCatalogEvent(event); err != nil {
		zap.L().Warn("failed to publish catalog event",
			zap.String("type", eventType),
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
}
