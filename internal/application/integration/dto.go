package integration

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invsync/backend/internal/domain/catalog"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// CreateProductRequest is the input of SyncService.CreateProduct.
// Quantity and Price are pointers so that a zero value still counts as present.
type CreateProductRequest struct {
	OwnerID     string
	ProductCode string
	VariantName string
	ItemName    string
	Quantity    *int
	Price       *decimal.Decimal
	Category    string
	Channel     string

	SKU              string
	ItemType         string
	Brand            string
	Manufacturer     string
	Weight           string
	UPC              string
	EAN              string
	ISBN             string
	MPN              string
	SalesDescription string
	CostPrice        string
	SalesTax         string
	PurchaseTax      string

	Sizes  []integration.OptionEntry
	Colors []integration.OptionEntry
	Images integration.ImageSet
}

// validate checks presence of the required fields and parses the owner
func (r *CreateProductRequest) validate() (uuid.UUID, error) {
	if strings.TrimSpace(r.OwnerID) == "" ||
		strings.TrimSpace(r.ProductCode) == "" ||
		strings.TrimSpace(r.VariantName) == "" ||
		r.Quantity == nil ||
		r.Price == nil {
		return uuid.Nil, shared.NewValidationError("All required fields are missing.")
	}
	ownerID, err := shared.ParseOwnerID(strings.TrimSpace(r.OwnerID))
	if err != nil {
		return uuid.Nil, err
	}
	return ownerID, nil
}

// title is the remote product title: item name, else variant name
func (r *CreateProductRequest) title() string {
	if name := strings.TrimSpace(r.ItemName); name != "" {
		return name
	}
	return strings.TrimSpace(r.VariantName)
}

// listing converts the request into the platform-neutral listing
func (r *CreateProductRequest) listing() *integration.Listing {
	return &integration.Listing{
		ProductCode:      strings.TrimSpace(r.ProductCode),
		Title:            r.title(),
		SKU:              r.SKU,
		ItemType:         r.ItemType,
		Brand:            r.Brand,
		Manufacturer:     r.Manufacturer,
		Weight:           r.Weight,
		UPC:              r.UPC,
		EAN:              r.EAN,
		ISBN:             r.ISBN,
		MPN:              r.MPN,
		SalesDescription: r.SalesDescription,
		CostPrice:        r.CostPrice,
		SalesTax:         r.SalesTax,
		PurchaseTax:      r.PurchaseTax,
		Price:            *r.Price,
		Quantity:         *r.Quantity,
		Sizes:            r.Sizes,
		Colors:           r.Colors,
		Images:           r.Images,
	}
}

// UpdateProductRequest is the input of SyncService.UpdateProduct.
// The product is located by ItemID when set, else by ProductCode.
type UpdateProductRequest struct {
	ItemID      string
	ProductCode string
	// ActingOwner is the authenticated seller; uuid.Nil when authentication is off
	ActingOwner uuid.UUID
	VariantName *string
	Quantity    *int
	Price       *decimal.Decimal
	Category    *string
	Channel     *string
}

func (r *UpdateProductRequest) changes() catalog.ProductChanges {
	changes := catalog.ProductChanges{
		Quantity: r.Quantity,
		Price:    r.Price,
		Category: r.Category,
		Channel:  r.Channel,
	}
	// an empty name means "not sent"
	if r.VariantName != nil && strings.TrimSpace(*r.VariantName) != "" {
		changes.ExternalName = r.VariantName
	}
	return changes
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// ProductResponse is the local product as returned to clients
type ProductResponse struct {
	ID                   uuid.UUID `json:"_id"`
	OwnerID              uuid.UUID `json:"userId"`
	ProductCode          string    `json:"productID"`
	VariantName          string    `json:"variantName"`
	Quantity             int       `json:"quantity"`
	Price                float64   `json:"price"`
	Category             string    `json:"category,omitempty"`
	Channel              string    `json:"channel,omitempty"`
	ShopifyProductID     *string   `json:"shopifyProductId"`
	BigCommerceProductID *string   `json:"bigcommerceProductId"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// ToProductResponse converts a domain product to its response form
func ToProductResponse(p *catalog.Product) *ProductResponse {
	return &ProductResponse{
		ID:                   p.ID,
		OwnerID:              p.OwnerID,
		ProductCode:          p.ProductCode,
		VariantName:          p.ExternalName,
		Quantity:             p.Quantity,
		Price:                p.Price.InexactFloat64(),
		Category:             p.Category,
		Channel:              p.Channel,
		ShopifyProductID:     p.ShopifyProductID,
		BigCommerceProductID: p.BigCommerceProductID,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

// ToProductResponses converts a list of domain products
func ToProductResponses(products []*catalog.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, ToProductResponse(p))
	}
	return out
}

// StageReport is the result of one remote stage of a platform pipeline
type StageReport struct {
	Stage   integration.Stage
	Err     error
	Skipped bool
}

// PlatformOutcome is what happened on one platform during an operation.
// Mirror is nil when the platform failed or was skipped.
type PlatformOutcome struct {
	Platform integration.PlatformCode
	Mirror   *integration.RemoteProduct
	Err      error
	Skipped  bool
	Stages   []StageReport
}

// Failed reports whether any stage on this platform failed
func (o PlatformOutcome) Failed() bool {
	if o.Err != nil {
		return true
	}
	for _, s := range o.Stages {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Outcomes is the per-platform result list of an operation, in platform order
type Outcomes []PlatformOutcome

// For returns the outcome of one platform
func (outs Outcomes) For(platform integration.PlatformCode) (PlatformOutcome, bool) {
	for _, o := range outs {
		if o.Platform == platform {
			return o, true
		}
	}
	return PlatformOutcome{}, false
}

// Mirror returns the remote product created or updated on platform, or nil
func (outs Outcomes) Mirror(platform integration.PlatformCode) *integration.RemoteProduct {
	o, ok := outs.For(platform)
	if !ok {
		return nil
	}
	return o.Mirror
}

// CreateProductResult is the output of SyncService.CreateProduct
type CreateProductResult struct {
	Product  *ProductResponse
	Outcomes Outcomes
}

// UpdateProductResult is the output of SyncService.UpdateProduct
type UpdateProductResult struct {
	Product  *ProductResponse
	Outcomes Outcomes
}
