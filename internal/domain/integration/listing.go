package integration

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Default listing values used when the seller leaves a field empty
const (
	DefaultBrandTag    = "zakapo"
	DefaultVendor      = "zakapo"
	DefaultStoreName   = "Zakapo"
	DefaultProductType = "items"
	DefaultDescription = "<p>Product details available</p>"
)

// OptionEntry is one size or color entry of a listing
type OptionEntry struct {
	Value    string
	Quantity int
	UPC      string
	EAN      string
	ISBN     string
	MPN      string
}

// Barcode returns the first non-empty identifier of the entry
func (e OptionEntry) Barcode() string {
	return FirstIdentifier(e.UPC, e.EAN, e.ISBN, e.MPN)
}

// Listing is the platform-neutral description of a product as submitted by the seller.
// Adapters translate it into their own wire shape.
type Listing struct {
	ProductCode      string
	Title            string
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
	Price            decimal.Decimal
	Quantity         int
	Sizes            []OptionEntry
	Colors           []OptionEntry
	Images           ImageSet
}

// Branding holds the store-wide defaults applied to listings
type Branding struct {
	Tag       string
	Vendor    string
	StoreName string
}

// DefaultBranding returns the built-in branding
func DefaultBranding() Branding {
	return Branding{Tag: DefaultBrandTag, Vendor: DefaultVendor, StoreName: DefaultStoreName}
}

// WithDefaults fills empty fields from DefaultBranding
func (b Branding) WithDefaults() Branding {
	d := DefaultBranding()
	if b.Tag == "" {
		b.Tag = d.Tag
	}
	if b.Vendor == "" {
		b.Vendor = d.Vendor
	}
	if b.StoreName == "" {
		b.StoreName = d.StoreName
	}
	return b
}

// BaseSKU returns the listing SKU, falling back to the product code
func (l *Listing) BaseSKU() string {
	if l.SKU != "" {
		return l.SKU
	}
	return l.ProductCode
}

// Barcode returns the first non-empty product-level identifier
func (l *Listing) Barcode() string {
	return FirstIdentifier(l.UPC, l.EAN, l.ISBN, l.MPN)
}

// ProductType returns the item type, defaulting to "items"
func (l *Listing) ProductType() string {
	if l.ItemType != "" {
		return l.ItemType
	}
	return DefaultProductType
}

// Vendor returns brand, then manufacturer, then the default vendor
func (l *Listing) Vendor(b Branding) string {
	switch {
	case l.Brand != "":
		return l.Brand
	case l.Manufacturer != "":
		return l.Manufacturer
	default:
		return b.WithDefaults().Vendor
	}
}

// WeightValue parses the weight, returning 0 when it is empty or not a number
func (l *Listing) WeightValue() float64 {
	w, err := strconv.ParseFloat(strings.TrimSpace(l.Weight), 64)
	if err != nil {
		return 0
	}
	return w
}

// Description renders the HTML product description
func (l *Listing) Description() string {
	var sb strings.Builder
	sb.WriteString(l.SalesDescription)

	labelled := []struct{ label, value string }{
		{"Type", l.ItemType},
		{"Brand", l.Brand},
		{"Manufacturer", l.Manufacturer},
		{"Weight", l.Weight},
	}
	for _, f := range labelled {
		if f.value != "" {
			fmt.Fprintf(&sb, "<p><strong>%s:</strong> %s</p>", f.label, f.value)
		}
	}

	ids := make([]string, 0, 4)
	for _, f := range []struct{ label, value string }{
		{"UPC", l.UPC}, {"EAN", l.EAN}, {"ISBN", l.ISBN}, {"MPN", l.MPN},
	} {
		if f.value != "" {
			ids = append(ids, f.label+": "+f.value)
		}
	}
	if len(ids) > 0 {
		fmt.Fprintf(&sb, "<p><strong>Identifiers:</strong> %s</p>", strings.Join(ids, ", "))
	}

	if sb.Len() == 0 {
		return DefaultDescription
	}
	return sb.String()
}

// Tags returns the brand tag followed by type, brand and manufacturer when present
func (l *Listing) Tags(b Branding) []string {
	tags := []string{b.WithDefaults().Tag}
	for _, v := range []string{l.ItemType, l.Brand, l.Manufacturer} {
		if v != "" {
			tags = append(tags, v)
		}
	}
	return tags
}

// TagString joins Tags with ", "
func (l *Listing) TagString(b Branding) string {
	return strings.Join(l.Tags(b), ", ")
}

// MetaDescription returns the sales description or a generated shop line
func (l *Listing) MetaDescription(b Branding) string {
	if l.SalesDescription != "" {
		return l.SalesDescription
	}
	from := l.Brand
	if from == "" {
		from = l.Manufacturer
	}
	if from == "" {
		from = b.WithDefaults().StoreName
	}
	return fmt.Sprintf("Shop %s from %s", l.Title, from)
}

var (
	handleSpaces  = regexp.MustCompile(`\s+`)
	handleInvalid = regexp.MustCompile(`[^a-z0-9-]`)
)

// Handle derives a URL handle: lowercase, whitespace runs to "-", other characters dropped
func Handle(title string) string {
	h := strings.ToLower(title)
	h = handleSpaces.ReplaceAllString(h, "-")
	return handleInvalid.ReplaceAllString(h, "")
}

// FirstIdentifier returns the first non-empty value in UPC, EAN, ISBN, MPN order
func FirstIdentifier(upc, ean, isbn, mpn string) string {
	for _, v := range []string{upc, ean, isbn, mpn} {
		if v != "" {
			return v
		}
	}
	return ""
}
