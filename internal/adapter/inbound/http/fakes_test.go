package http

import (
	"context"
	"errors"
	"sync"

	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
)

// fakeReader serves a fixed list and records list arguments.
type fakeReader[T any] struct {
	mu        sync.Mutex
	items     []T
	slugOf    func(T) string
	err       error
	lastFirst int
	lastAfter string
	lastSlug  string
}

func (f *fakeReader[T]) GetBySlug(_ context.Context, slug string) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastSlug = slug
	var zero T
	if f.err != nil {
		return zero, f.err
	}
	for _, it := range f.items {
		if f.slugOf(it) == slug {
			return it, nil
		}
	}
	return zero, apperror.New(apperror.KindNotFound, "Not found", "slug "+slug, nil)
}

func (f *fakeReader[T]) GetList(_ context.Context, first int, after string) (pagination.Collection[T], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFirst, f.lastAfter = first, after
	if f.err != nil {
		return pagination.Collection[T]{}, f.err
	}
	items := append([]T(nil), f.items...)
	return pagination.Collection[T]{
		Items:    items,
		PageInfo: &pagination.PageInfo{EndCursor: "next", HasNextPage: true},
	}, nil
}

type fakeProducts struct {
	fakeReader[catalog.Product]
	lastTerm string
}

func (f *fakeProducts) SearchProducts(_ context.Context, term string) (pagination.Collection[catalog.Product], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTerm = term
	return pagination.Collection[catalog.Product]{Items: append([]catalog.Product(nil), f.items...)}, nil
}

type fakeCategories struct {
	fakeReader[catalog.ProductCategory]
	productsFirst int
	productsAfter string
}

func (f *fakeCategories) GetWithProducts(ctx context.Context, slug string, first int, after string) (catalog.ProductCategory, error) {
	cat, err := f.GetBySlug(ctx, slug)
	if err != nil {
		return cat, err
	}
	f.mu.Lock()
	f.productsFirst, f.productsAfter = first, after
	f.mu.Unlock()
	cat.Products = &pagination.Collection[catalog.Product]{Items: []catalog.Product{{ID: "p1", Slug: "mug"}}}
	return cat, nil
}

type fakeSite struct{}

func (fakeSite) GetMenu(_ context.Context, name string) (catalog.Menu, error) {
	return catalog.Menu{Name: name, Items: []catalog.MenuItem{{ID: "m1", Label: "Home", Path: "/"}}}, nil
}

func (fakeSite) GetGeneralSettings(context.Context) (catalog.Settings, error) {
	return catalog.Settings{Title: "Test Shop", URL: "https://shop.example.com"}, nil
}

// fakeCart is an in-memory CartManager.
type fakeCart struct {
	mu    sync.Mutex
	cart  cart.Cart
	err   error
	calls []string
	// interleave runs after an action has produced its result, standing in
	// for another action that lands before the response is written.
	interleave func(*cart.Cart)
}

// settle returns the current cart, then applies interleave.
func (f *fakeCart) settle() cart.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.cart.Clone()
	if f.interleave != nil {
		f.interleave(&f.cart)
	}
	return out
}

func (f *fakeCart) Cart() cart.Cart {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cart.Clone()
}

func (f *fakeCart) Status() cart.Status { return cart.StatusIdle }

func (f *fakeCart) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeCart) Refresh(context.Context) (cart.Cart, error) {
	if err := f.record("refresh"); err != nil {
		return f.Cart(), err
	}
	return f.Cart(), nil
}

func (f *fakeCart) Add(_ context.Context, id int64, qty int) (cart.Cart, error) {
	if err := f.record("add"); err != nil {
		return f.Cart(), err
	}
	f.mu.Lock()
	f.cart.Items = append(f.cart.Items, cart.Item{Key: "line-1", Product: cart.ProductRef{DatabaseID: id}, Quantity: qty})
	f.mu.Unlock()
	return f.settle(), nil
}

func (f *fakeCart) Update(_ context.Context, key string, qty int) (cart.Cart, error) {
	if err := f.record("update"); err != nil {
		return f.Cart(), err
	}
	f.mu.Lock()
	for i := range f.cart.Items {
		if f.cart.Items[i].Key == key {
			f.cart.Items[i].Quantity = qty
		}
	}
	f.mu.Unlock()
	return f.settle(), nil
}

func (f *fakeCart) Remove(_ context.Context, key string) (cart.Cart, error) {
	if err := f.record("remove"); err != nil {
		return f.Cart(), err
	}
	f.mu.Lock()
	kept := f.cart.Items[:0]
	for _, it := range f.cart.Items {
		if it.Key != key {
			kept = append(kept, it)
		}
	}
	f.cart.Items = kept
	f.mu.Unlock()
	return f.Cart(), nil
}

func (f *fakeCart) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

var _ inbound.CartManager = (*fakeCart)(nil)

// fixture bundles the fakes behind one Storefront.
type fixture struct {
	posts      *fakeReader[catalog.Post]
	pages      *fakeReader[catalog.Page]
	products   *fakeProducts
	categories *fakeCategories
	cart       *fakeCart
}

func newFixture() fixture {
	price := func(p string) *catalog.Commerce { return &catalog.Commerce{Price: p, Purchasable: true} }
	return fixture{
		posts: &fakeReader[catalog.Post]{
			items:  []catalog.Post{{ID: "1", Slug: "hello", Title: "Hello"}, {ID: "2", Slug: "world", Title: "World"}},
			slugOf: func(p catalog.Post) string { return p.Slug },
		},
		pages: &fakeReader[catalog.Page]{
			items:  []catalog.Page{{ID: "10", Slug: "team", URI: "about/team", Title: "Team"}},
			slugOf: func(p catalog.Page) string { return p.URI },
		},
		products: &fakeProducts{fakeReader: fakeReader[catalog.Product]{
			items: []catalog.Product{
				{ID: "p1", Slug: "mug", Name: "Mug", Kind: catalog.KindSimple, Commerce: price("$5.00")},
				{ID: "p2", Slug: "teapot", Name: "Teapot", Kind: catalog.KindSimple, Commerce: price("$20.00")},
			},
			slugOf: func(p catalog.Product) string { return p.Slug },
		}},
		categories: &fakeCategories{fakeReader: fakeReader[catalog.ProductCategory]{
			items:  []catalog.ProductCategory{{ID: "c1", Slug: "kitchen", Name: "Kitchen"}},
			slugOf: func(c catalog.ProductCategory) string { return c.Slug },
		}},
		cart: &fakeCart{cart: cart.Cart{Items: []cart.Item{}}},
	}
}

func (f fixture) storefront() Storefront {
	return Storefront{
		Posts:      f.posts,
		Pages:      f.pages,
		Products:   f.products,
		Categories: f.categories,
		Menus:      fakeSite{},
		Settings:   fakeSite{},
		Cart:       f.cart,
	}
}

var errBackend = apperror.New(apperror.KindAPI, "Failed to load", "HTTP 503", errors.New("service unavailable"))
