// Package inbound defines the controller-facing interfaces the storefront
// exposes. Inbound adapters (CLI, local HTTP API) call these interfaces.
package inbound

import (
	"context"

	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
)

// EntityReader is the capability shared by every content family: fetch one
// entity by slug, or one page of a list.
type EntityReader[T any] interface {
	// GetBySlug returns the entity, or a NotFound error when the backend
	// has none.
	GetBySlug(ctx context.Context, slug string) (T, error)

	// GetList returns one page. pageSize <= 0 uses the default page size;
	// an empty after requests the first page.
	GetList(ctx context.Context, pageSize int, after string) (pagination.Collection[T], error)
}

// PostReader reads blog posts.
type PostReader interface {
	EntityReader[catalog.Post]
}

// PageReader reads static pages.
type PageReader interface {
	EntityReader[catalog.Page]
}

// ProductReader reads products.
type ProductReader interface {
	EntityReader[catalog.Product]

	// SearchProducts returns one unpaged page of matches.
	SearchProducts(ctx context.Context, term string) (pagination.Collection[catalog.Product], error)
}

// CategoryReader reads product categories.
type CategoryReader interface {
	EntityReader[catalog.ProductCategory]

	// GetWithProducts returns the category with one page of its products.
	GetWithProducts(ctx context.Context, slug string, firstProducts int, afterProducts string) (catalog.ProductCategory, error)
}

// MenuReader reads navigation menus.
type MenuReader interface {
	GetMenu(ctx context.Context, name string) (catalog.Menu, error)
}

// SettingsReader reads site settings.
type SettingsReader interface {
	GetGeneralSettings(ctx context.Context) (catalog.Settings, error)
}

// CartManager mutates the server cart and keeps the local projection in
// step with it. Every method returns the projection after the operation.
type CartManager interface {
	Cart() cart.Cart
	Refresh(ctx context.Context) (cart.Cart, error)
	Add(ctx context.Context, productDatabaseID int64, quantity int) (cart.Cart, error)
	Update(ctx context.Context, key string, quantity int) (cart.Cart, error)
	Remove(ctx context.Context, key string) (cart.Cart, error)
	Status() cart.Status
}
