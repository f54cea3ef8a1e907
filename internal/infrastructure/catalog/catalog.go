// Package catalog loads a menu from YAML. The offline backend serves it as
// the product listing.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront/internal/domain/entities"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

type menuFile struct {
	Products []menuEntry `yaml:"products"`
}

type menuEntry struct {
	ProductID   string `yaml:"product_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	ImageURL    string `yaml:"image_url"`
	Available   *bool  `yaml:"available"`
}

// Load parses a menu. Entries must have an id, a name and a non-negative
// price; ids must be unique.
func Load(r io.Reader) ([]entities.Product, error) {
	var menu menuFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&menu); err != nil {
		if errors.Is(err, io.EOF) {
			return []entities.Product{}, nil
		}
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}

	products := make([]entities.Product, 0, len(menu.Products))
	seen := make(map[string]bool, len(menu.Products))
	for i, entry := range menu.Products {
		product, err := entry.toProduct()
		if err != nil {
			return nil, fmt.Errorf("menu entry %d: %w", i, err)
		}
		if seen[product.ProductID] {
			return nil, fmt.Errorf("menu entry %d: duplicate product_id %q", i, product.ProductID)
		}
		seen[product.ProductID] = true
		products = append(products, product)
	}
	return products, nil
}

func LoadFile(path string) ([]entities.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open menu: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Default returns the built-in menu.
func Default() []entities.Product {
	products, err := Load(bytes.NewReader(defaultMenu))
	if err != nil {
		panic(fmt.Sprintf("embedded menu is invalid: %v", err))
	}
	return products
}

func (e menuEntry) toProduct() (entities.Product, error) {
	id := strings.TrimSpace(e.ProductID)
	if id == "" {
		return entities.Product{}, errors.New("product_id is required")
	}
	if strings.TrimSpace(e.Name) == "" {
		return entities.Product{}, fmt.Errorf("product %s: name is required", id)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(e.Price))
	if err != nil {
		return entities.Product{}, fmt.Errorf("product %s: invalid price %q: %w", id, e.Price, err)
	}
	if price.IsNegative() {
		return entities.Product{}, fmt.Errorf("product %s: price must not be negative", id)
	}

	available := true
	if e.Available != nil {
		available = *e.Available
	}

	return entities.Product{
		ProductID:   id,
		Name:        strings.TrimSpace(e.Name),
		Description: e.Description,
		Category:    e.Category,
		Price:       price,
		ImageURL:    e.ImageURL,
		Available:   available,
	}, nil
}
