package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrComboNotFound is returned when a combo does not exist
var ErrComboNotFound = shared.NewDomainError(shared.CodeNotFound, "Combo not found")

// ComboItem references one product bundled into a combo
type ComboItem struct {
	ItemID      *uuid.UUID      `json:"itemId,omitempty"`
	ProductCode string          `json:"productID,omitempty"`
	Name        string          `json:"name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// Combo bundles several products into one sellable unit with its own price and SKU.
// Combos are never mirrored to storefront platforms.
type Combo struct {
	shared.OwnedEntity
	Name        string
	SKU         string
	Description string
	Price       decimal.Decimal
	Weight      decimal.Decimal
	Image       string
	Items       []ComboItem
}

// ComboChanges carries the mutable combo fields; nil means "not sent"
type ComboChanges struct {
	Name        *string
	SKU         *string
	Description *string
	Price       *decimal.Decimal
	Weight      *decimal.Decimal
}

// NewCombo creates a combo
func NewCombo(ownerID uuid.UUID, name string, price decimal.Decimal, items []ComboItem) (*Combo, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("userId, name and price are required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("userId, name and price are required")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("price cannot be negative")
	}

	normalized := make([]ComboItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			item.Quantity = 1
		}
		normalized = append(normalized, item)
	}

	return &Combo{
		OwnedEntity: shared.NewOwnedEntity(ownerID),
		Name:        strings.TrimSpace(name),
		Price:       price,
		Weight:      decimal.Zero,
		Items:       normalized,
	}, nil
}

// ApplyChanges applies present fields
func (c *Combo) ApplyChanges(changes ComboChanges) error {
	if changes.Name != nil && strings.TrimSpace(*changes.Name) == "" {
		return shared.NewValidationError("combo name cannot be empty")
	}
	if changes.Price != nil && changes.Price.IsNegative() {
		return shared.NewValidationError("price cannot be negative")
	}

	if changes.Name != nil {
		c.Name = strings.TrimSpace(*changes.Name)
	}
	if changes.SKU != nil {
		c.SKU = *changes.SKU
	}
	if changes.Description != nil {
		c.Description = *changes.Description
	}
	if changes.Price != nil {
		c.Price = *changes.Price
	}
	if changes.Weight != nil {
		c.Weight = *changes.Weight
	}
	c.Touch()
	return nil
}

// ComboRepository persists combos
type ComboRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Combo, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Combo, error)
	Save(ctx context.Context, combo *Combo) error
	Delete(ctx context.Context, id uuid.UUID) error
}
