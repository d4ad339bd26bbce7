package service

import (
	"context"
	"fmt"

	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// CategoryController fetches product categories.
type CategoryController struct {
	controller
}

// NewCategoryController creates a CategoryController over exec.
func NewCategoryController(exec outbound.QueryExecutor, opts ...ControllerOption) *CategoryController {
	return &CategoryController{controller: newController(exec, opts)}
}

// GetBySlug returns the category's scalar fields.
func (c *CategoryController) GetBySlug(ctx context.Context, slug string) (catalog.ProductCategory, error) {
	cat, err := c.fetch(ctx, categoryBySlugQuery, slug, map[string]any{"slug": slug})
	if err != nil {
		return catalog.ProductCategory{}, err
	}
	return cat.WithoutProducts(), nil
}

// GetWithProducts returns the category together with one page of its
// products. firstProducts <= 0 uses the default page size.
func (c *CategoryController) GetWithProducts(ctx context.Context, slug string, firstProducts int, afterProducts string) (catalog.ProductCategory, error) {
	vars := c.listVars(firstProducts, afterProducts)
	vars["slug"] = slug
	cat, err := c.fetch(ctx, categoryWithProductsQuery, slug, vars)
	if err != nil {
		return catalog.ProductCategory{}, err
	}
	if cat.Products == nil {
		cat.Products = &pagination.Collection[catalog.Product]{Items: []catalog.Product{}}
	}
	return cat, nil
}

func (c *CategoryController) fetch(ctx context.Context, op outbound.Operation, slug string, vars map[string]any) (catalog.ProductCategory, error) {
	var data struct {
		ProductCategory *wireCategory `json:"productCategory"`
	}
	detail := fmt.Sprintf("slug=%s after=%v", slug, vars["after"])
	if err := c.query(ctx, op, vars, &data, "category", detail); err != nil {
		return catalog.ProductCategory{}, err
	}
	if data.ProductCategory == nil {
		return catalog.ProductCategory{}, notFound("category", "category slug="+slug)
	}
	return mapCategory(*data.ProductCategory), nil
}

// GetList returns one page of categories.
func (c *CategoryController) GetList(ctx context.Context, pageSize int, after string) (pagination.Collection[catalog.ProductCategory], error) {
	var data struct {
		ProductCategories *connection[wireCategory] `json:"productCategories"`
	}
	if err := c.query(ctx, categoryListQuery, c.listVars(pageSize, after), &data, "categories", "after="+after); err != nil {
		return pagination.Collection[catalog.ProductCategory]{}, err
	}
	if data.ProductCategories == nil {
		return pagination.Collection[catalog.ProductCategory]{}, notFound("categories", "categories list is null")
	}
	return mapConnection(*data.ProductCategories, mapCategory), nil
}

var _ inbound.CategoryReader = (*CategoryController)(nil)
