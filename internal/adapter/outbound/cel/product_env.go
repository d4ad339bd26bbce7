package cel

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/alexwatever/wept/internal/domain/catalog"
)

// NewProductEnvironment creates a CEL environment for filtering products.
//
// Variables:
//   - name, slug, sku, kind, status, stock_status: string
//   - price_text, regular_price, sale_price: the backend's formatted prices
//   - price: numeric price parsed from the raw price, 0 when unknown
//   - has_price, on_sale, in_stock, purchasable: bool
//   - stock_quantity: int, -1 when the backend does not track stock
//   - database_id: int
//
// Functions: glob(pattern, s) and the ext.Strings library
// (e.g. name.lowerAscii().contains("mug")).
func NewProductEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		ext.Strings(),

		cel.Variable("name", cel.StringType),
		cel.Variable("slug", cel.StringType),
		cel.Variable("sku", cel.StringType),
		cel.Variable("kind", cel.StringType),
		cel.Variable("status", cel.StringType),
		cel.Variable("database_id", cel.IntType),

		cel.Variable("price", cel.DoubleType),
		cel.Variable("has_price", cel.BoolType),
		cel.Variable("price_text", cel.StringType),
		cel.Variable("regular_price", cel.StringType),
		cel.Variable("sale_price", cel.StringType),
		cel.Variable("on_sale", cel.BoolType),
		cel.Variable("purchasable", cel.BoolType),

		cel.Variable("stock_status", cel.StringType),
		cel.Variable("stock_quantity", cel.IntType),
		cel.Variable("in_stock", cel.BoolType),

		// glob: shell-style match, e.g. glob("mug-*", slug)
		cel.Function("glob",
			cel.Overload("glob_string_string",
				[]*cel.Type{cel.StringType, cel.StringType},
				cel.BoolType,
				cel.BinaryBinding(func(pattern, name ref.Val) ref.Val {
					p := pattern.Value().(string)
					n := name.Value().(string)
					matched, _ := filepath.Match(p, n)
					return types.Bool(matched)
				}),
			),
		),
	)
}

// BuildProductActivation creates the CEL activation for p. Variant products
// carry no commerce fields; those variables get their zero values.
func BuildProductActivation(p catalog.Product) map[string]any {
	c := p.Commerce
	if c == nil {
		c = &catalog.Commerce{}
	}
	price, hasPrice := ParsePrice(c.RawPrice)
	if !hasPrice {
		price, hasPrice = ParsePrice(c.Price)
	}
	qty := int64(-1)
	if c.StockQuantity != nil {
		qty = int64(*c.StockQuantity)
	}

	return map[string]any{
		"name":        p.Name,
		"slug":        p.Slug,
		"sku":         p.SKU,
		"kind":        string(p.Kind),
		"status":      p.Status,
		"database_id": p.DatabaseID,

		"price":         price,
		"has_price":     hasPrice,
		"price_text":    c.Price,
		"regular_price": c.RegularPrice,
		"sale_price":    c.SalePrice,
		"on_sale":       c.OnSale,
		"purchasable":   c.Purchasable,

		"stock_status":   c.StockStatus,
		"stock_quantity": qty,
		"in_stock":       p.Commerce.InStock(),
	}
}

// ParsePrice extracts the first amount from a backend price string such as
// "10", "$1,299.00" or "10, 20" (a variable product's range). Thousands
// separators and currency symbols are dropped.
func ParsePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if i := strings.Index(s, ", "); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexAny(s, "-–"); i > 0 {
		s = s[:i]
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
