package catalog

// ProductKind is the WooCommerce product variant.
type ProductKind string

const (
	KindSimple    ProductKind = "simple"
	KindVariable  ProductKind = "variable"
	KindExternal  ProductKind = "external"
	KindGrouped   ProductKind = "grouped"
	KindVariation ProductKind = "variation"
	KindUnknown   ProductKind = "unknown"
)

// KindFromTypename maps a GraphQL __typename to a ProductKind.
func KindFromTypename(typename string) ProductKind {
	switch typename {
	case "SimpleProduct":
		return KindSimple
	case "VariableProduct":
		return KindVariable
	case "ExternalProduct":
		return KindExternal
	case "GroupProduct":
		return KindGrouped
	case "SimpleProductVariation", "ProductVariation":
		return KindVariation
	default:
		return KindUnknown
	}
}

// Commerce holds the pricing and inventory fields only simple products carry.
// Prices are formatted strings exactly as the backend renders them.
type Commerce struct {
	Price            string `json:"price,omitempty" yaml:"price,omitempty"`
	RawPrice         string `json:"raw_price,omitempty" yaml:"raw_price,omitempty"`
	RegularPrice     string `json:"regular_price,omitempty" yaml:"regular_price,omitempty"`
	SalePrice        string `json:"sale_price,omitempty" yaml:"sale_price,omitempty"`
	OnSale           bool   `json:"on_sale" yaml:"on_sale"`
	StockStatus      string `json:"stock_status,omitempty" yaml:"stock_status,omitempty"`
	StockQuantity    *int   `json:"stock_quantity,omitempty" yaml:"stock_quantity,omitempty"`
	SoldIndividually bool   `json:"sold_individually,omitempty" yaml:"sold_individually,omitempty"`
	Purchasable      bool   `json:"purchasable" yaml:"purchasable"`
	Virtual          bool   `json:"virtual,omitempty" yaml:"virtual,omitempty"`
	Downloadable     bool   `json:"downloadable,omitempty" yaml:"downloadable,omitempty"`
	ReviewCount      int    `json:"review_count,omitempty" yaml:"review_count,omitempty"`
	Weight           string `json:"weight,omitempty" yaml:"weight,omitempty"`
	Length           string `json:"length,omitempty" yaml:"length,omitempty"`
	Width            string `json:"width,omitempty" yaml:"width,omitempty"`
	Height           string `json:"height,omitempty" yaml:"height,omitempty"`
}

// InStock reports whether the backend lists the product as available.
func (c *Commerce) InStock() bool {
	if c == nil {
		return false
	}
	return c.StockStatus == "IN_STOCK" || c.StockStatus == "ON_BACKORDER"
}

// Product is a WooCommerce product of any variant. DatabaseID is the
// numeric ID cart mutations take; ID is the opaque GraphQL node ID.
type Product struct {
	ID               string      `json:"id" yaml:"id"`
	DatabaseID       int64       `json:"database_id,omitempty" yaml:"database_id,omitempty"`
	Kind             ProductKind `json:"kind" yaml:"kind"`
	Slug             string      `json:"slug,omitempty" yaml:"slug,omitempty"`
	Name             string      `json:"name,omitempty" yaml:"name,omitempty"`
	SKU              string      `json:"sku,omitempty" yaml:"sku,omitempty"`
	Status           string      `json:"status,omitempty" yaml:"status,omitempty"`
	Description      string      `json:"description,omitempty" yaml:"description,omitempty"`
	ShortDescription string      `json:"short_description,omitempty" yaml:"short_description,omitempty"`
	DateOnSaleFrom   string      `json:"date_on_sale_from,omitempty" yaml:"date_on_sale_from,omitempty"`
	DateOnSaleTo     string      `json:"date_on_sale_to,omitempty" yaml:"date_on_sale_to,omitempty"`
	Image            *Image      `json:"image,omitempty" yaml:"image,omitempty"`
	Gallery          []Image     `json:"gallery,omitempty" yaml:"gallery,omitempty"`
	Commerce         *Commerce   `json:"commerce,omitempty" yaml:"commerce,omitempty"`
}

// Key identifies the product within a list.
func (p Product) Key() string { return keyOf(p.Slug, p.ID) }
