package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ComboItemRequest is one bundled product of a combo request
type ComboItemRequest struct {
	ItemID      string           `json:"itemId"`
	ProductCode string           `json:"productID"`
	Name        string           `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    int              `json:"quantity"`
}

// CreateComboRequest represents a request to create a combo
type CreateComboRequest struct {
	OwnerID     string             `json:"userId"`
	Name        string             `json:"name"`
	SKU         string             `json:"sku"`
	Description string             `json:"description"`
	Price       *decimal.Decimal   `json:"price"`
	Weight      *decimal.Decimal   `json:"weight"`
	Image       string             `json:"image"`
	Items       []ComboItemRequest `json:"items"`
}

func (r *CreateComboRequest) validate() (uuid.UUID, error) {
	if strings.TrimSpace(r.OwnerID) == "" || strings.TrimSpace(r.Name) == "" || r.Price == nil {
		return uuid.Nil, shared.NewValidationError("userId, name and price are required")
	}
	ownerID, err := uuid.Parse(strings.TrimSpace(r.OwnerID))
	if err != nil {
		return uuid.Nil, shared.NewValidationError("Invalid userId")
	}
	return ownerID, nil
}

func (r *CreateComboRequest) items() ([]catalog.ComboItem, error) {
	items := make([]catalog.ComboItem, 0, len(r.Items))
	for _, in := range r.Items {
		item := catalog.ComboItem{
			ProductCode: in.ProductCode,
			Name:        in.Name,
			Price:       decimal.Zero,
			Quantity:    in.Quantity,
		}
		if in.Price != nil {
			item.Price = *in.Price
		}
		if id := strings.TrimSpace(in.ItemID); id != "" {
			parsed, err := uuid.Parse(id)
			if err != nil {
				return nil, shared.NewValidationError("Invalid itemId %q in combo items", id)
			}
			item.ItemID = &parsed
		}
		items = append(items, item)
	}
	return items, nil
}

// UpdateComboRequest represents a request to update a combo; nil fields are left unchanged
type UpdateComboRequest struct {
	Name        *string          `json:"name"`
	SKU         *string          `json:"sku"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Weight      *decimal.Decimal `json:"weight"`
}

func (r UpdateComboRequest) changes() catalog.ComboChanges {
	return catalog.ComboChanges{
		Name:        r.Name,
		SKU:         r.SKU,
		Description: r.Description,
		Price:       r.Price,
		Weight:      r.Weight,
	}
}

// ComboItemResponse is one bundled product in API responses
type ComboItemResponse struct {
	ItemID      *uuid.UUID `json:"itemId,omitempty"`
	ProductCode string     `json:"productID,omitempty"`
	Name        string     `json:"name,omitempty"`
	Price       float64    `json:"price"`
	Quantity    int        `json:"quantity"`
}

// ComboResponse represents a combo in API responses
type ComboResponse struct {
	ID          uuid.UUID           `json:"_id"`
	OwnerID     uuid.UUID           `json:"userId"`
	Name        string              `json:"name"`
	SKU         string              `json:"sku,omitempty"`
	Description string              `json:"description,omitempty"`
	Price       float64             `json:"price"`
	Weight      float64             `json:"weight"`
	Image       string              `json:"image,omitempty"`
	Items       []ComboItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ToComboResponse converts a domain combo to its response form
func ToComboResponse(c *catalog.Combo) *ComboResponse {
	items := make([]ComboItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, ComboItemResponse{
			ItemID:      item.ItemID,
			ProductCode: item.ProductCode,
			Name:        item.Name,
			Price:       item.Price.InexactFloat64(),
			Quantity:    item.Quantity,
		})
	}
	return &ComboResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		Name:        c.Name,
		SKU:         c.SKU,
		Description: c.Description,
		Price:       c.Price.InexactFloat64(),
		Weight:      c.Weight.InexactFloat64(),
		Image:       c.Image,
		Items:       items,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToComboResponses converts a list of domain combos
func ToComboResponses(combos []*catalog.Combo) []*ComboResponse {
	out := make([]*ComboResponse, 0, len(combos))
	for _, c := range combos {
		out = append(out, ToComboResponse(c))
	}
	return out
}
