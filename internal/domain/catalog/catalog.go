// Package catalog contains the storefront content types: posts, pages,
// products, product categories, menus and site settings.
package catalog

import "github.com/alexwatever/wept/internal/domain/pagination"

// keyOf returns slug when set, otherwise id.
func keyOf(slug, id string) string {
	if slug != "" {
		return slug
	}
	return id
}

// Image is a media attachment.
type Image struct {
	ID        string `json:"id" yaml:"id"`
	SourceURL string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	AltText   string `json:"alt_text,omitempty" yaml:"alt_text,omitempty"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Post is a blog post.
type Post struct {
	ID      string `json:"id" yaml:"id"`
	Slug    string `json:"slug,omitempty" yaml:"slug,omitempty"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Key identifies the post within a list.
func (p Post) Key() string { return keyOf(p.Slug, p.ID) }

// Page is a static WordPress page.
type Page struct {
	ID      string `json:"id" yaml:"id"`
	Slug    string `json:"slug,omitempty" yaml:"slug,omitempty"`
	URI     string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Title   string `json:"title,omitempty" yaml:"title,omitempty"`
	Date    string `json:"date,omitempty" yaml:"date,omitempty"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

// Key identifies the page within a list.
func (p Page) Key() string { return keyOf(p.Slug, p.ID) }

// ProductCategory groups products. Products is only populated by the
// category-with-products query.
type ProductCategory struct {
	ID          string                          `json:"id" yaml:"id"`
	DatabaseID  int64                           `json:"database_id,omitempty" yaml:"database_id,omitempty"`
	Slug        string                          `json:"slug,omitempty" yaml:"slug,omitempty"`
	Name        string                          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string                          `json:"description,omitempty" yaml:"description,omitempty"`
	Count       int                             `json:"count,omitempty" yaml:"count,omitempty"`
	Image       *Image                          `json:"image,omitempty" yaml:"image,omitempty"`
	Products    *pagination.Collection[Product] `json:"products,omitempty" yaml:"products,omitempty"`
}

// Key identifies the category within a list.
func (c ProductCategory) Key() string { return keyOf(c.Slug, c.ID) }

// WithoutProducts returns the category's scalar fields only.
func (c ProductCategory) WithoutProducts() ProductCategory {
	c.Products = nil
	return c
}
