package cel

import (
	"context"
	"strings"
	"testing"

	"github.com/alexwatever/wept/internal/domain/catalog"
)

func intPtr(n int) *int { return &n }

var (
	mug = catalog.Product{
		ID: "p1", DatabaseID: 11, Kind: catalog.KindSimple, Slug: "mug-blue", Name: "Blue Mug", SKU: "MUG-1",
		Commerce: &catalog.Commerce{
			Price: "$10.00", RawPrice: "10", RegularPrice: "$12.00", SalePrice: "$10.00",
			OnSale: true, StockStatus: "IN_STOCK", StockQuantity: intPtr(4), Purchasable: true,
		},
	}
	lamp = catalog.Product{
		ID: "p2", DatabaseID: 12, Kind: catalog.KindSimple, Slug: "lamp", Name: "Desk Lamp",
		Commerce: &catalog.Commerce{Price: "$1,299.00", StockStatus: "OUT_OF_STOCK"},
	}
	tee = catalog.Product{ID: "p3", DatabaseID: 13, Kind: catalog.KindVariable, Slug: "tee", Name: "Tee"}
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator() error: %v", err)
	}
	if eval == nil {
		t.Fatal("NewEvaluator() returned nil")
	}
}

func TestCompile_InvalidExpression(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator() error: %v", err)
	}

	if _, err := eval.Compile(`this is not valid CEL !!!`); err == nil {
		t.Fatal("Compile() expected error for invalid expression, got nil")
	}
	if _, err := eval.Compile(`unknown_var == 1`); err == nil {
		t.Fatal("Compile() expected error for undeclared variable, got nil")
	}
	if _, err := eval.Compile(`name`); err == nil {
		t.Fatal("Compile() expected error for non-bool expression, got nil")
	}
}

func TestEvaluate_Variables(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator() error: %v", err)
	}

	tests := []struct {
		expr    string
		product catalog.Product
		want    bool
	}{
		{`price < 20.0`, mug, true},
		{`price > 1000.0`, lamp, true},
		{`has_price`, tee, false},
		{`on_sale && in_stock`, mug, true},
		{`in_stock`, lamp, false},
		{`stock_quantity >= 4`, mug, true},
		{`stock_quantity == -1`, lamp, true},
		{`kind == "variable"`, tee, true},
		{`database_id == 11`, mug, true},
		{`sku.startsWith("MUG")`, mug, true},
		{`name.lowerAscii().contains("lamp")`, lamp, true},
		{`glob("mug-*", slug)`, mug, true},
		{`glob("mug-*", slug)`, tee, false},
		{`regular_price == "$12.00" && sale_price == "$10.00"`, mug, true},
		{`purchasable`, tee, false},
	}
	for _, tt := range tests {
		t.Run(tt.expr+"/"+tt.product.Slug, func(t *testing.T) {
			prg, err := eval.Compile(tt.expr)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", tt.expr, err)
			}
			got, err := eval.Evaluate(context.Background(), prg, tt.product)
			if err != nil {
				t.Fatalf("Evaluate() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("%s on %s = %v, want %v", tt.expr, tt.product.Slug, got, tt.want)
			}
		})
	}
}

func TestValidateExpression_Limits(t *testing.T) {
	eval, err := NewEvaluator()
	if err != nil {
		t.Fatalf("NewEvaluator() error: %v", err)
	}

	tests := []struct {
		name    string
		expr    string
		wantErr string
	}{
		{"empty", "", "empty"},
		{"too long", `name == "` + strings.Repeat("a", maxExpressionLength) + `"`, "too long"},
		{"too deep", strings.Repeat("(", maxNestingDepth+1) + "true" + strings.Repeat(")", maxNestingDepth+1), "nesting too deep"},
		{"invalid", "name ==", "invalid CEL expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateExpression(tt.expr)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateExpression() error = %v, want %q", err, tt.wantErr)
			}
		})
	}

	if err := eval.ValidateExpression(`price < 5.0`); err != nil {
		t.Errorf("ValidateExpression(valid) error: %v", err)
	}
}

func TestProductFilter_Filter(t *testing.T) {
	f, err := NewProductFilter(`in_stock || kind != "simple"`)
	if err != nil {
		t.Fatalf("NewProductFilter() error: %v", err)
	}
	if f.String() != `in_stock || kind != "simple"` {
		t.Errorf("String() = %q", f.String())
	}

	got, err := f.Filter(context.Background(), []catalog.Product{mug, lamp, tee})
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}
	if len(got) != 2 || got[0].Slug != "mug-blue" || got[1].Slug != "tee" {
		t.Errorf("Filter() = %v, want mug-blue, tee", got)
	}
}

func TestNewProductFilter_RejectsInvalid(t *testing.T) {
	if _, err := NewProductFilter(`price <`); err == nil {
		t.Fatal("NewProductFilter() expected error")
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"10", 10, true},
		{"$1,299.00", 1299, true},
		{"10, 20", 10, true},
		{"$5.00 - $9.00", 5, true},
		{"", 0, false},
		{"free", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParsePrice(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
