package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/domain/entities"
	"storefront/internal/domain/repositories"

	"github.com/shopspring/decimal"
)

const (
	CredentialKey = "auth_token"
	CartKey       = "cart-storage"

	stateVersion = 1
)

var errUnreadableState = errors.New("unreadable persisted state")

type credentialRecord struct {
	Version int    `json:"version"`
	Token   string `json:"token"`
}

type cartRecord struct {
	Version int              `json:"version"`
	Lines   []cartLineRecord `json:"lines"`
}

type cartLineRecord struct {
	ProductID   string          `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url,omitempty"`
	Available   bool            `json:"available"`
	Quantity    int             `json:"quantity"`
}

func saveCredential(ctx context.Context, store repositories.StateStore, raw string) error {
	data, err := json.Marshal(credentialRecord{Version: stateVersion, Token: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	return store.Save(ctx, CredentialKey, data)
}

// loadCredential returns ErrStateNotFound when nothing is stored and
// errUnreadableState for a blob of another version or shape.
func loadCredential(ctx context.Context, store repositories.StateStore) (string, error) {
	data, err := store.Load(ctx, CredentialKey)
	if err != nil {
		return "", err
	}

	var rec credentialRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("%w: %v", errUnreadableState, err)
	}
	if rec.Version != stateVersion || rec.Token == "" {
		return "", fmt.Errorf("%w: credential version %d", errUnreadableState, rec.Version)
	}
	return rec.Token, nil
}

func saveCart(ctx context.Context, store repositories.StateStore, lines []entities.CartLine) error {
	rec := cartRecord{Version: stateVersion, Lines: make([]cartLineRecord, len(lines))}
	for i, line := range lines {
		rec.Lines[i] = cartLineRecord{
			ProductID:   line.Product.ProductID,
			Name:        line.Product.Name,
			Description: line.Product.Description,
			Category:    line.Product.Category,
			Price:       line.Product.Price,
			ImageURL:    line.Product.ImageURL,
			Available:   line.Product.Available,
			Quantity:    line.Quantity,
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	return store.Save(ctx, CartKey, data)
}

func loadCart(ctx context.Context, store repositories.StateStore) ([]entities.CartLine, error) {
	data, err := store.Load(ctx, CartKey)
	if err != nil {
		return nil, err
	}

	var rec cartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", errUnreadableState, err)
	}
	if rec.Version != stateVersion {
		return nil, fmt.Errorf("%w: cart version %d", errUnreadableState, rec.Version)
	}

	lines := make([]entities.CartLine, 0, len(rec.Lines))
	for _, l := range rec.Lines {
		lines = append(lines, entities.CartLine{
			Product: entities.Product{
				ProductID:   l.ProductID,
				Name:        l.Name,
				Description: l.Description,
				Category:    l.Category,
				Price:       l.Price,
				ImageURL:    l.ImageURL,
				Available:   l.Available,
			},
			Quantity: l.Quantity,
		})
	}
	return lines, nil
}
