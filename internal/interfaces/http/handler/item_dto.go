package handler

import (
	"strings"

	appintegration "github.com/invsync/backend/internal/application/integration"
	"github.com/invsync/backend/internal/domain/integration"
	"github.com/invsync/backend/internal/domain/shared"
	"github.com/invsync/backend/internal/interfaces/http/dto"
)

// ImageFile is the file part of an uploaded image
type ImageFile struct {
	Name    string `json:"name"`
	Preview string `json:"preview"`
}

// ImageRequest is one image as sent by the item form
type ImageRequest struct {
	Preview string     `json:"preview"`
	File    *ImageFile `json:"file"`
}

func (r *ImageRequest) payload() *integration.ImagePayload {
	if r == nil {
		return nil
	}
	p := &integration.ImagePayload{Preview: r.Preview}
	if r.File != nil {
		p.FileName = r.File.Name
		p.FilePreview = r.File.Preview
	}
	return p
}

// ImagesRequest groups the images of an item
type ImagesRequest struct {
	Main  *ImageRequest   `json:"main"`
	Size  []*ImageRequest `json:"size"`
	Color []*ImageRequest `json:"color"`
}

func (r *ImagesRequest) imageSet() integration.ImageSet {
	if r == nil {
		return integration.ImageSet{}
	}
	set := integration.ImageSet{Main: r.Main.payload()}
	for _, img := range r.Size {
		if p := img.payload(); p != nil {
			set.Size = append(set.Size, p)
		}
	}
	for _, img := range r.Color {
		if p := img.payload(); p != nil {
			set.Color = append(set.Color, p)
		}
	}
	return set
}

// SizeVariantRequest is one entry of the size table
type SizeVariantRequest struct {
	Size     string         `json:"size"`
	Quantity dto.FlexNumber `json:"quantity"`
	UPC      string         `json:"upc"`
	EAN      string         `json:"ean"`
	ISBN     string         `json:"isbn"`
	MPN      string         `json:"mpn"`
}

// ColorVariantRequest is one entry of the color table
type ColorVariantRequest struct {
	Color    string         `json:"color"`
	Quantity dto.FlexNumber `json:"quantity"`
	UPC      string         `json:"upc"`
	EAN      string         `json:"ean"`
	ISBN     string         `json:"isbn"`
	MPN      string         `json:"mpn"`
}

// AddItemRequest is the body of POST /api/add-item
type AddItemRequest struct {
	UserID      string         `json:"userId"`
	ProductID   string         `json:"productID" binding:"max=100"`
	VariantName string         `json:"variantName" binding:"max=255"`
	ItemName    string         `json:"itemName" binding:"max=255"`
	Quantity    dto.FlexNumber `json:"quantity"`
	Price       dto.FlexNumber `json:"price"`
	Category    string         `json:"category"`
	Channel     string         `json:"channel"`

	ItemType         string         `json:"itemType"`
	SKU              string         `json:"sku"`
	UPC              string         `json:"upc"`
	EAN              string         `json:"ean"`
	ISBN             string         `json:"isbn"`
	MPN              string         `json:"mpn"`
	Brand            string         `json:"brand"`
	Manufacturer     string         `json:"manufacturer"`
	Weight           dto.FlexNumber `json:"weight"`
	SalesDescription string         `json:"salesDescription"`
	SalesTax         dto.FlexNumber `json:"salesTax"`
	CostPrice        dto.FlexNumber `json:"costPrice"`
	PurchaseTax      dto.FlexNumber `json:"purchaseTax"`

	SizeVariants  []SizeVariantRequest  `json:"sizeVariants"`
	ColorVariants []ColorVariantRequest `json:"colorVariants"`
	Images        *ImagesRequest        `json:"images"`
}

// toCreateRequest converts the wire body. Quantity and price must parse when present;
// option quantities are lenient and count as 0 when unparsable.
func (r *AddItemRequest) toCreateRequest() (*appintegration.CreateProductRequest, error) {
	quantity, err := r.Quantity.Int()
	if err != nil {
		return nil, shared.NewValidationError("Invalid quantity: %v", err)
	}
	price, err := r.Price.Decimal()
	if err != nil {
		return nil, shared.NewValidationError("Invalid price: %v", err)
	}

	req := &appintegration.CreateProductRequest{
		OwnerID:          r.UserID,
		ProductCode:      r.ProductID,
		VariantName:      r.VariantName,
		ItemName:         r.ItemName,
		Quantity:         quantity,
		Price:            price,
		Category:         r.Category,
		Channel:          r.Channel,
		SKU:              r.SKU,
		ItemType:         r.ItemType,
		Brand:            r.Brand,
		Manufacturer:     r.Manufacturer,
		Weight:           r.Weight.String(),
		UPC:              r.UPC,
		EAN:              r.EAN,
		ISBN:             r.ISBN,
		MPN:              r.MPN,
		SalesDescription: r.SalesDescription,
		CostPrice:        r.CostPrice.String(),
		SalesTax:         r.SalesTax.String(),
		PurchaseTax:      r.PurchaseTax.String(),
		Images:           r.Images.imageSet(),
	}
	for _, s := range r.SizeVariants {
		if strings.TrimSpace(s.Size) == "" {
			continue
		}
		req.Sizes = append(req.Sizes, integration.OptionEntry{
			Value:    strings.TrimSpace(s.Size),
			Quantity: s.Quantity.IntOrZero(),
			UPC:      s.UPC,
			EAN:      s.EAN,
			ISBN:     s.ISBN,
			MPN:      s.MPN,
		})
	}
	for _, c := range r.ColorVariants {
		if strings.TrimSpace(c.Color) == "" {
			continue
		}
		req.Colors = append(req.Colors, integration.OptionEntry{
			Value:    strings.TrimSpace(c.Color),
			Quantity: c.Quantity.IntOrZero(),
			UPC:      c.UPC,
			EAN:      c.EAN,
			ISBN:     c.ISBN,
			MPN:      c.MPN,
		})
	}
	return req, nil
}

// UpdateItemRequest is the body of PUT /api/update-item
type UpdateItemRequest struct {
	ItemID      string         `json:"itemId"`
	ProductID   string         `json:"productID"`
	VariantName *string        `json:"variantName" binding:"omitempty,max=255"`
	Quantity    dto.FlexNumber `json:"quantity"`
	Price       dto.FlexNumber `json:"price"`
	Category    *string        `json:"category"`
	Channel     *string        `json:"channel"`
}

func (r *UpdateItemRequest) toUpdateRequest() (*appintegration.UpdateProductRequest, error) {
	quantity, err := r.Quantity.Int()
	if err != nil {
		return nil, shared.NewValidationError("Invalid quantity: %v", err)
	}
	price, err := r.Price.Decimal()
	if err != nil {
		return nil, shared.NewValidationError("Invalid price: %v", err)
	}
	return &appintegration.UpdateProductRequest{
		ItemID:      strings.TrimSpace(r.ItemID),
		ProductCode: strings.TrimSpace(r.ProductID),
		VariantName: r.VariantName,
		Quantity:    quantity,
		Price:       price,
		Category:    r.Category,
		Channel:     r.Channel,
	}, nil
}
