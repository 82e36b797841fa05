package integration

// ---------------------------------------------------------------------------
// Variant expansion
// ---------------------------------------------------------------------------

// OptionAxis names the option a variant was expanded from
type OptionAxis string

const (
	AxisSize  OptionAxis = "Size"
	AxisColor OptionAxis = "Color"
	// AxisNone marks the single default variant
	AxisNone OptionAxis = ""
)

// DefaultOptionValue fills an option that the seller did not provide
const DefaultOptionValue = "Default"

// Variant is one sellable variant derived from a listing
type Variant struct {
	Axis     OptionAxis
	Option1  string
	Option2  string
	SKU      string
	Quantity int
	Barcode  string
}

// Label returns the value of the axis the variant was expanded from
func (v Variant) Label() string {
	if v.Axis == AxisColor {
		return v.Option2
	}
	return v.Option1
}

// OptionVariants expands the listing into option-based variants.
//
// Size wins: when at least one size entry has a value and a non-zero quantity, one
// variant is produced per such entry and color entries only contribute the second option
// value. Color entries are expanded only when no size variant was produced.
// The result is empty when neither axis yields a variant.
func OptionVariants(l *Listing) []Variant {
	base := l.BaseSKU()

	var variants []Variant
	for _, s := range l.Sizes {
		if s.Value == "" || s.Quantity == 0 {
			continue
		}
		option2 := DefaultOptionValue
		if len(l.Colors) > 0 && l.Colors[0].Value != "" {
			option2 = l.Colors[0].Value
		}
		variants = append(variants, Variant{
			Axis:     AxisSize,
			Option1:  s.Value,
			Option2:  option2,
			SKU:      base + "-" + s.Value,
			Quantity: s.Quantity,
			Barcode:  s.Barcode(),
		})
	}
	if len(variants) > 0 {
		return variants
	}

	for _, c := range l.Colors {
		if c.Value == "" || c.Quantity == 0 {
			continue
		}
		variants = append(variants, Variant{
			Axis:     AxisColor,
			Option1:  DefaultOptionValue,
			Option2:  c.Value,
			SKU:      base + "-" + c.Value,
			Quantity: c.Quantity,
			Barcode:  c.Barcode(),
		})
	}
	return variants
}

// ExpandVariants returns OptionVariants, or a single default variant carrying the product
// quantity when no option-based variant exists. The result is never empty.
func ExpandVariants(l *Listing) []Variant {
	if variants := OptionVariants(l); len(variants) > 0 {
		return variants
	}
	return []Variant{{
		Axis:     AxisNone,
		Option1:  DefaultOptionValue,
		SKU:      l.BaseSKU(),
		Quantity: l.Quantity,
		Barcode:  l.Barcode(),
	}}
}

// ProductOption is a named option with its values
type ProductOption struct {
	Name   string
	Values []string
}

// ProductOptions lists Size and Color options for every axis with at least one value
func ProductOptions(l *Listing) []ProductOption {
	var options []ProductOption
	if values := optionValues(l.Sizes); len(values) > 0 {
		options = append(options, ProductOption{Name: string(AxisSize), Values: values})
	}
	if values := optionValues(l.Colors); len(values) > 0 {
		options = append(options, ProductOption{Name: string(AxisColor), Values: values})
	}
	return options
}

func optionValues(entries []OptionEntry) []string {
	var values []string
	for _, e := range entries {
		if e.Value != "" {
			values = append(values, e.Value)
		}
	}
	return values
}

// ---------------------------------------------------------------------------
// Custom attributes
// ---------------------------------------------------------------------------

// Attribute is a free-form key/value stored alongside the product on the platform
type Attribute struct {
	Key   string
	Value string
}

// CustomAttributes returns the identifier, weight, cost and tax fields that are set
func CustomAttributes(l *Listing) []Attribute {
	candidates := []Attribute{
		{"upc", l.UPC},
		{"ean", l.EAN},
		{"isbn", l.ISBN},
		{"mpn", l.MPN},
		{"weight", l.Weight},
		{"cost_price", l.CostPrice},
		{"sales_tax", l.SalesTax},
		{"purchase_tax", l.PurchaseTax},
	}
	attrs := make([]Attribute, 0, len(candidates))
	for _, a := range candidates {
		if a.Value != "" {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// ---------------------------------------------------------------------------
// Inventory mapping
// ---------------------------------------------------------------------------

// CreationInventoryLevels maps the variants of a freshly created remote product to the
// quantities requested in the listing. Remote variants are matched by SKU; a product with
// a single remote variant and no option variants takes the listing quantity.
// Variants without an inventory item ID are skipped.
func CreationInventoryLevels(l *Listing, remote *RemoteProduct) []InventoryLevel {
	if remote == nil || len(remote.Variants) == 0 {
		return nil
	}

	requested := OptionVariants(l)
	if len(requested) == 0 {
		first := remote.Variants[0]
		if first.InventoryItemID == "" {
			return nil
		}
		return []InventoryLevel{{
			ProductID:       remote.ID,
			VariantID:       first.ID,
			InventoryItemID: first.InventoryItemID,
			Available:       l.Quantity,
		}}
	}

	bySKU := make(map[string]int, len(requested))
	for _, v := range requested {
		bySKU[v.SKU] = v.Quantity
	}
	levels := make([]InventoryLevel, 0, len(remote.Variants))
	for _, rv := range remote.Variants {
		qty, ok := bySKU[rv.SKU]
		if !ok || rv.InventoryItemID == "" {
			continue
		}
		levels = append(levels, InventoryLevel{
			ProductID:       remote.ID,
			VariantID:       rv.ID,
			InventoryItemID: rv.InventoryItemID,
			Available:       qty,
		})
	}
	return levels
}

// QuantityLevel targets the first variant of a remote product with a new quantity
func QuantityLevel(remote *RemoteProduct, quantity int) (InventoryLevel, error) {
	first, ok := remote.FirstVariant()
	if !ok {
		return InventoryLevel{}, ErrRemoteProductNoVariant
	}
	return InventoryLevel{
		ProductID:       remote.ID,
		VariantID:       first.ID,
		InventoryItemID: first.InventoryItemID,
		Available:       quantity,
	}, nil
}
