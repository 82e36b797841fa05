package handler

import (
	appintegration "github.com/invsync/backend/internal/application/integration"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/invsync/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// storefrontUpdateBody is a platform-specific pass-through update body
type storefrontUpdateBody interface {
	toUpdateRequest() (appintegration.StorefrontUpdateRequest, error)
}

// ShopifyUpdateRequest is the body of PUT /api/all-products/shopify
type ShopifyUpdateRequest struct {
	ShopifyID   dto.FlexNumber `json:"shopifyId"`
	Title       *string        `json:"title"`
	Price       dto.FlexNumber `json:"price"`
	Quantity    dto.FlexNumber `json:"quantity"`
	Status      *string        `json:"status" binding:"omitempty,oneof=active draft archived"`
	Vendor      *string        `json:"vendor"`
	ProductType *string        `json:"productType"`
	Tags        *string        `json:"tags"`
}

func (r *ShopifyUpdateRequest) toUpdateRequest() (appintegration.StorefrontUpdateRequest, error) {
	price, quantity, err := parsePriceAndQuantity(r.Price, r.Quantity)
	if err != nil {
		return appintegration.StorefrontUpdateRequest{}, err
	}
	return appintegration.StorefrontUpdateRequest{
		RemoteID:    r.ShopifyID.String(),
		Title:       r.Title,
		Price:       price,
		Quantity:    quantity,
		Status:      r.Status,
		Vendor:      r.Vendor,
		ProductType: r.ProductType,
		Tags:        r.Tags,
	}, nil
}

// BigCommerceUpdateRequest is the body of PUT /api/bigcommerce
type BigCommerceUpdateRequest struct {
	BigCommerceID dto.FlexNumber `json:"bigcommerceId"`
	Name          *string        `json:"name"`
	Price         dto.FlexNumber `json:"price"`
	Quantity      dto.FlexNumber `json:"quantity"`
	Status        *string        `json:"status"`
	BrandID       dto.FlexNumber `json:"brandId"`
	Type          *string        `json:"type" binding:"omitempty,oneof=physical digital"`
	SKU           *string        `json:"sku"`
	Weight        dto.FlexNumber `json:"weight"`
}

func (r *BigCommerceUpdateRequest) toUpdateRequest() (appintegration.StorefrontUpdateRequest, error) {
	price, quantity, err := parsePriceAndQuantity(r.Price, r.Quantity)
	if err != nil {
		return appintegration.StorefrontUpdateRequest{}, err
	}
	brandID, err := r.BrandID.Int()
	if err != nil {
		return appintegration.StorefrontUpdateRequest{}, shared.NewValidationError("Invalid brandId: %v", err)
	}
	weight, err := r.Weight.Decimal()
	if err != nil {
		return appintegration.StorefrontUpdateRequest{}, shared.NewValidationError("Invalid weight: %v", err)
	}

	req := appintegration.StorefrontUpdateRequest{
		RemoteID:    r.BigCommerceID.String(),
		Title:       r.Name,
		Price:       price,
		Quantity:    quantity,
		Status:      r.Status,
		ProductType: r.Type,
		SKU:         r.SKU,
		BrandID:     brandID,
	}
	if weight != nil {
		w := weight.InexactFloat64()
		req.Weight = &w
	}
	return req, nil
}

func parsePriceAndQuantity(price, quantity dto.FlexNumber) (*decimal.Decimal, *int, error) {
	p, err := price.Decimal()
	if err != nil {
		return nil, nil, shared.NewValidationError("Invalid price: %v", err)
	}
	if p != nil && p.IsNegative() {
		return nil, nil, shared.NewValidationError("Price must not be negative")
	}
	q, err := quantity.Int()
	if err != nil {
		return nil, nil, shared.NewValidationError("Invalid quantity: %v", err)
	}
	if q != nil && *q < 0 {
		return nil, nil, shared.NewValidationError("Quantity must not be negative")
	}
	return p, q, nil
}
