package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"
	"storefront/internal/infrastructure/logger"

	"github.com/shopspring/decimal"
)

// CartStore is the visitor's cart. It is keyed independently of the
// session, so an anonymous visitor can fill it before signing in. Every
// mutation is applied in memory and then written to the state store.
type CartStore struct {
	state  repositories.StateStore
	logger *logger.Logger

	mu    sync.RWMutex
	lines []entities.CartLine
}

func NewCartStore(state repositories.StateStore, logger *logger.Logger) *CartStore {
	return &CartStore{
		state:  state,
		logger: logger,
	}
}

// Load replaces the in-memory cart with the persisted one. An unreadable
// blob is deleted and the cart starts empty.
func (c *CartStore) Load(ctx context.Context) error {
	lines, err := loadCart(ctx, c.state)
	switch {
	case errors.Is(err, repositories.ErrStateNotFound):
		lines = nil
	case errors.Is(err, errUnreadableState):
		c.logger.Warn("Stored cart unreadable, starting empty", "error", err)
		if delErr := c.state.Delete(ctx, CartKey); delErr != nil {
			c.logger.Error("Failed to delete stored cart", "error", delErr)
		}
		lines = nil
	case err != nil:
		return fmt.Errorf("failed to load cart: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = normalizeLines(lines)
	return nil
}

// AddItem adds one unit of product, merging into an existing line.
func (c *CartStore) AddItem(ctx context.Context, product entities.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(product.ProductID); i >= 0 {
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, entities.CartLine{Product: product, Quantity: 1})
	}
	return c.persist(ctx)
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line.
func (c *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if quantity <= 0 {
		return c.remove(ctx, productID)
	}

	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	c.lines[i].Quantity = quantity
	return c.persist(ctx)
}

func (c *CartStore) RemoveItem(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remove(ctx, productID)
}

func (c *CartStore) ClearCart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lines = nil
	return c.persist(ctx)
}

// RemoveOrdered takes the ordered quantities out of the cart in one pass.
// Lines added or raised after the order was built keep the difference.
func (c *CartStore) RemoveOrdered(ctx context.Context, ordered []entities.CartLine) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.lines[:0]
	for _, line := range c.lines {
		for _, o := range ordered {
			if o.Product.ProductID == line.Product.ProductID {
				line.Quantity -= o.Quantity
			}
		}
		if line.Quantity > 0 {
			kept = append(kept, line)
		}
	}
	c.lines = kept
	return c.persist(ctx)
}

// Lines returns a copy of the cart in first-add order.
func (c *CartStore) Lines() []entities.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := make([]entities.CartLine, len(c.lines))
	copy(lines, c.lines)
	return lines
}

func (c *CartStore) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

func (c *CartStore) ItemCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

func (c *CartStore) remove(ctx context.Context, productID string) error {
	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return c.persist(ctx)
}

func (c *CartStore) indexOf(productID string) int {
	for i, line := range c.lines {
		if line.Product.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *CartStore) persist(ctx context.Context) error {
	if err := saveCart(ctx, c.state, c.lines); err != nil {
		c.logger.Error("Failed to persist cart", "lines", len(c.lines), "error", err)
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}

// normalizeLines drops non-positive quantities and merges duplicate
// products, keeping the first occurrence's position.
func normalizeLines(lines []entities.CartLine) []entities.CartLine {
	var out []entities.CartLine
	seen := make(map[string]int, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}
		if i, ok := seen[line.Product.ProductID]; ok {
			out[i].Quantity += line.Quantity
			continue
		}
		seen[line.Product.ProductID] = len(out)
		out = append(out, line)
	}
	return out
}
