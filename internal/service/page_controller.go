package service

import (
	"context"

	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// PageController fetches static pages.
type PageController struct {
	controller
}

// NewPageController creates a PageController over exec.
func NewPageController(exec outbound.QueryExecutor, opts ...ControllerOption) *PageController {
	return &PageController{controller: newController(exec, opts)}
}

// GetBySlug returns the page whose URI is slug.
func (c *PageController) GetBySlug(ctx context.Context, slug string) (catalog.Page, error) {
	var data struct {
		Page *wirePage `json:"page"`
	}
	if err := c.query(ctx, pageBySlugQuery, map[string]any{"slug": slug}, &data, "page", "slug="+slug); err != nil {
		return catalog.Page{}, err
	}
	if data.Page == nil {
		return catalog.Page{}, notFound("page", "page slug="+slug)
	}
	return mapPage(*data.Page), nil
}

// GetList returns one page of pages.
func (c *PageController) GetList(ctx context.Context, pageSize int, after string) (pagination.Collection[catalog.Page], error) {
	var data struct {
		Pages *connection[wirePage] `json:"pages"`
	}
	if err := c.query(ctx, pageListQuery, c.listVars(pageSize, after), &data, "pages", "after="+after); err != nil {
		return pagination.Collection[catalog.Page]{}, err
	}
	if data.Pages == nil {
		return pagination.Collection[catalog.Page]{}, notFound("pages", "pages list is null")
	}
	return mapConnection(*data.Pages, mapPage), nil
}

var _ inbound.PageReader = (*PageController)(nil)
