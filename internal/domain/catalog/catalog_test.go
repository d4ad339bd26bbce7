package catalog

import (
	"testing"

	"github.com/alexwatever/wept/internal/domain/pagination"
)

func TestKey_PrefersSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"post with slug", Post{ID: "cG9zdDox", Slug: "hello"}.Key(), "hello"},
		{"post without slug", Post{ID: "cG9zdDox"}.Key(), "cG9zdDox"},
		{"page", Page{ID: "p", Slug: "about"}.Key(), "about"},
		{"product", Product{ID: "x", Slug: "hoodie"}.Key(), "hoodie"},
		{"product without slug", Product{ID: "x"}.Key(), "x"},
		{"category", ProductCategory{ID: "c", Slug: "clothing"}.Key(), "clothing"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: Key() = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestKindFromTypename(t *testing.T) {
	t.Parallel()

	tests := map[string]ProductKind{
		"SimpleProduct":          KindSimple,
		"VariableProduct":        KindVariable,
		"ExternalProduct":        KindExternal,
		"GroupProduct":           KindGrouped,
		"SimpleProductVariation": KindVariation,
		"":                       KindUnknown,
		"SubscriptionProduct":    KindUnknown,
	}
	for typename, want := range tests {
		if got := KindFromTypename(typename); got != want {
			t.Errorf("KindFromTypename(%q) = %q, want %q", typename, got, want)
		}
	}
}

func TestCommerce_InStock(t *testing.T) {
	t.Parallel()

	var nilCommerce *Commerce
	if nilCommerce.InStock() {
		t.Error("nil commerce should not be in stock")
	}
	if !(&Commerce{StockStatus: "IN_STOCK"}).InStock() {
		t.Error("IN_STOCK should be in stock")
	}
	if (&Commerce{StockStatus: "OUT_OF_STOCK"}).InStock() {
		t.Error("OUT_OF_STOCK should not be in stock")
	}
}

func TestMenu_Tree(t *testing.T) {
	t.Parallel()

	m := Menu{Name: "primary", Items: []MenuItem{
		{ID: "1", Label: "Shop"},
		{ID: "2", Label: "Hoodies", ParentID: "1"},
		{ID: "3", Label: "About"},
	}}
	if got := len(m.TopLevel()); got != 2 {
		t.Errorf("TopLevel() len = %d, want 2", got)
	}
	children := m.Children("1")
	if len(children) != 1 || children[0].Label != "Hoodies" {
		t.Errorf("Children(1) = %+v", children)
	}
}

func TestProductCategory_WithoutProducts(t *testing.T) {
	t.Parallel()

	c := ProductCategory{Slug: "c", Products: &pagination.Collection[Product]{Items: []Product{{ID: "p"}}}}
	if c.WithoutProducts().Products != nil {
		t.Error("WithoutProducts should clear products")
	}
	if c.Products == nil {
		t.Error("WithoutProducts should not modify the receiver")
	}
}
