package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
)

type Filter struct {
	// Category restricts results to one category; empty means all.
	Category string
	// Query matches name or description, case-insensitively.
	Query string
}

// Catalog serves the menu from the product service, keeping the last
// listing so add-to-cart can resolve a product id without a round trip.
type Catalog struct {
	gateway repositories.CatalogGateway

	mu       sync.RWMutex
	products []entities.Product
}

func NewCatalog(gateway repositories.CatalogGateway) *Catalog {
	return &Catalog{gateway: gateway}
}

// Browse fetches the menu and returns the available products matching f.
func (c *Catalog) Browse(ctx context.Context, f Filter) ([]entities.Product, error) {
	products, err := c.refresh(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	var out []entities.Product
	for _, p := range products {
		if !p.Available {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(p.Name), query) &&
			!strings.Contains(strings.ToLower(p.Description), query) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// Categories lists distinct categories of the last listing in first-seen
// order.
func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for _, p := range c.products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		out = append(out, p.Category)
	}
	return out
}

// Product resolves a product id, refetching the menu when it is unknown.
func (c *Catalog) Product(ctx context.Context, productID string) (entities.Product, error) {
	if p, ok := c.lookup(productID); ok {
		return p, nil
	}

	if _, err := c.refresh(ctx); err != nil {
		return entities.Product{}, err
	}
	if p, ok := c.lookup(productID); ok {
		return p, nil
	}
	return entities.Product{}, fmt.Errorf("%w: %s", ErrUnknownProduct, productID)
}

func (c *Catalog) lookup(productID string) (entities.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ProductID == productID {
			return p, true
		}
	}
	return entities.Product{}, false
}

func (c *Catalog) refresh(ctx context.Context) ([]entities.Product, error) {
	products, err := c.gateway.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()
	return products, nil
}
