package service

import (
	"context"
	"strings"

	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// searchResultSize is the number of results a product search returns.
const searchResultSize = 20

// ProductController fetches products of every variant.
type ProductController struct {
	controller
}

// NewProductController creates a ProductController over exec.
func NewProductController(exec outbound.QueryExecutor, opts ...ControllerOption) *ProductController {
	return &ProductController{controller: newController(exec, opts)}
}

// GetBySlug returns the product with the given slug.
func (c *ProductController) GetBySlug(ctx context.Context, slug string) (catalog.Product, error) {
	var data struct {
		Product *wireProduct `json:"product"`
	}
	if err := c.query(ctx, productBySlugQuery, map[string]any{"slug": slug}, &data, "product", "slug="+slug); err != nil {
		return catalog.Product{}, err
	}
	if data.Product == nil {
		return catalog.Product{}, notFound("product", "product slug="+slug)
	}
	return normalizeProduct(*data.Product), nil
}

// GetList returns one page of products.
func (c *ProductController) GetList(ctx context.Context, pageSize int, after string) (pagination.Collection[catalog.Product], error) {
	var data struct {
		Products *connection[wireProduct] `json:"products"`
	}
	if err := c.query(ctx, productListQuery, c.listVars(pageSize, after), &data, "products", "after="+after); err != nil {
		return pagination.Collection[catalog.Product]{}, err
	}
	if data.Products == nil {
		return pagination.Collection[catalog.Product]{}, notFound("products", "products list is null")
	}
	return mapConnection(*data.Products, normalizeProduct), nil
}

// SearchProducts returns products matching term. The result is a single
// page without page info and cannot be paged further.
func (c *ProductController) SearchProducts(ctx context.Context, term string) (pagination.Collection[catalog.Product], error) {
	term = strings.TrimSpace(term)
	vars := map[string]any{"search": term, "first": searchResultSize}

	var data struct {
		Products *connection[wireProduct] `json:"products"`
	}
	if err := c.query(ctx, productSearchQuery, vars, &data, "search results", "search="+term); err != nil {
		return pagination.Collection[catalog.Product]{}, err
	}
	if data.Products == nil {
		return pagination.Collection[catalog.Product]{}, notFound("search results", "search="+term)
	}
	result := mapConnection(*data.Products, normalizeProduct)
	result.PageInfo = nil
	return result, nil
}

var _ inbound.ProductReader = (*ProductController)(nil)
