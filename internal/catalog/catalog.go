package catalog

import (
	"context"
	"strings"
	"sync"

	"nexora/internal/models"
)

// FacetAll selects every product regardless of gender.
const FacetAll = "All"

// Catalog holds the in-memory product list shown to shoppers and admins.
// Mutations go to the store first and are applied locally only after the
// store confirms them.
type Catalog struct {
	client Client

	mu       sync.RWMutex
	products []models.Product
	loaded   bool
	loads    int
	pending  int
	loadGen  uint64
	mutation uint64
}

// New creates an empty Catalog backed by client.
func New(client Client) *Catalog {
	return &Catalog{
		client:   client,
		products: make([]models.Product, 0),
	}
}

// Load replaces the list with the store's current contents. A result is
// dropped if a newer load started or a mutation was applied while it was in
// flight. On failure the previous list is kept.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.Lock()
	c.loadGen++
	gen, mutation := c.loadGen, c.mutation
	c.loads++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loads--
		c.mu.Unlock()
	}()

	products, err := c.client.FetchAll(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.loadGen || mutation != c.mutation {
		return nil
	}
	c.products = cloneProducts(products)
	c.loaded = true
	return nil
}

// Add inserts draft through the store and appends the stored record.
func (c *Catalog) Add(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	c.beginMutation()
	defer c.endMutation()

	product, err := c.client.Insert(ctx, draft)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(product.ID); i >= 0 {
		c.products[i] = *product
	} else {
		c.products = append(c.products, *product)
	}
	c.mutation++
	stored := *product
	return &stored, nil
}

// Delete removes the product through the store, then drops it locally.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	c.beginMutation()
	defer c.endMutation()

	if err := c.client.Remove(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.products = append(c.products[:i:i], c.products[i+1:]...)
	}
	c.mutation++
	return nil
}

// FilteredBy returns the products whose gender matches facet, ignoring case.
// An empty facet or FacetAll returns everything.
func (c *Catalog) FilteredBy(facet string) []models.Product {
	facet = strings.TrimSpace(facet)

	c.mu.RLock()
	defer c.mu.RUnlock()
	if facet == "" || strings.EqualFold(facet, FacetAll) {
		return cloneProducts(c.products)
	}
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		if strings.EqualFold(p.Gender, facet) {
			out = append(out, p)
		}
	}
	return out
}

// Products returns a copy of the current list.
func (c *Catalog) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneProducts(c.products)
}

// Find looks up a product by id in the current list.
func (c *Catalog) Find(id int64) (models.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.products[i], true
	}
	return models.Product{}, false
}

// Len reports how many products are held.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// Loading reports whether a load is in flight.
func (c *Catalog) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads > 0
}

// Pending reports whether an add or delete is in flight.
func (c *Catalog) Pending() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending > 0
}

// Loaded reports whether any load has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

func (c *Catalog) beginMutation() {
	c.mu.Lock()
	c.pending++
	c.mu.Unlock()
}

func (c *Catalog) endMutation() {
	c.mu.Lock()
	c.pending--
	c.mu.Unlock()
}

// indexOf must be called with mu held.
func (c *Catalog) indexOf(id int64) int {
	for i := range c.products {
		if c.products[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
