package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Product is the locally persisted, canonical record of a seller's product.
// It is the single source of truth for whether a product exists; storefront
// mirrors on Shopify or BigCommerce are referenced through the foreign IDs.
type Product struct {
	shared.OwnedEntity
	ProductCode          string
	ExternalName         string
	Quantity             int
	Price                decimal.Decimal
	Category             string
	Channel              string
	ShopifyProductID     *string
	BigCommerceProductID *string
}

// ProductChanges carries the mutable fields of an update request; nil means "not sent"
type ProductChanges struct {
	ExternalName *string
	Quantity     *int
	Price        *decimal.Decimal
	Category     *string
	Channel      *string
}

// IsEmpty reports whether no field is set
func (c ProductChanges) IsEmpty() bool {
	return c.ExternalName == nil && c.Quantity == nil && c.Price == nil && c.Category == nil && c.Channel == nil
}

// TouchesMirror reports whether the change affects fields mirrored to storefronts
func (c ProductChanges) TouchesMirror() bool {
	return c.ExternalName != nil || c.Price != nil || c.Quantity != nil
}

// NewProduct creates a new local product
func NewProduct(ownerID uuid.UUID, code, name string, quantity int, price decimal.Decimal) (*Product, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewValidationError("owner ID is required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("product ID cannot be empty")
	}
	if err := validateExternalName(name); err != nil {
		return nil, err
	}
	if err := validateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := validatePrice(price); err != nil {
		return nil, err
	}

	return &Product{
		OwnedEntity:  shared.NewOwnedEntity(ownerID),
		ProductCode:  code,
		ExternalName: strings.TrimSpace(name),
		Quantity:     quantity,
		Price:        price,
	}, nil
}

// ApplyChanges applies every present field. Validation happens before any field is written.
func (p *Product) ApplyChanges(changes ProductChanges) error {
	if changes.ExternalName != nil {
		if err := validateExternalName(*changes.ExternalName); err != nil {
			return err
		}
	}
	if changes.Quantity != nil {
		if err := validateQuantity(*changes.Quantity); err != nil {
			return err
		}
	}
	if changes.Price != nil {
		if err := validatePrice(*changes.Price); err != nil {
			return err
		}
	}

	if changes.ExternalName != nil {
		p.ExternalName = strings.TrimSpace(*changes.ExternalName)
	}
	if changes.Quantity != nil {
		p.Quantity = *changes.Quantity
	}
	if changes.Price != nil {
		p.Price = *changes.Price
	}
	if changes.Category != nil {
		p.Category = *changes.Category
	}
	if changes.Channel != nil {
		p.Channel = *changes.Channel
	}
	p.Touch()
	return nil
}

// LinkShopifyProduct records the Shopify mirror ID
func (p *Product) LinkShopifyProduct(remoteID string) {
	p.ShopifyProductID = linkID(remoteID)
	p.Touch()
}

// LinkBigCommerceProduct records the BigCommerce mirror ID
func (p *Product) LinkBigCommerceProduct(remoteID string) {
	p.BigCommerceProductID = linkID(remoteID)
	p.Touch()
}

// ShopifyID returns the Shopify mirror ID, or "" when not linked
func (p *Product) ShopifyID() string {
	return deref(p.ShopifyProductID)
}

// BigCommerceID returns the BigCommerce mirror ID, or "" when not linked
func (p *Product) BigCommerceID() string {
	return deref(p.BigCommerceProductID)
}

func linkID(remoteID string) *string {
	remoteID = strings.TrimSpace(remoteID)
	if remoteID == "" {
		return nil
	}
	return &remoteID
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func validateExternalName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("variant name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewValidationError("variant name cannot exceed 255 characters")
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewValidationError("quantity cannot be negative")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("price cannot be negative")
	}
	return nil
}
