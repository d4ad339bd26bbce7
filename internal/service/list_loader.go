package service

import (
	"context"
	"sync"

	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
)

// ListFetcher fetches one page of a list.
type ListFetcher[T any] func(ctx context.Context, pageSize int, after string) (pagination.Collection[T], error)

// ListLoader backs a "load more" view: it fetches successive pages and
// merges them into one running list.
type ListLoader[T any] struct {
	fetch    ListFetcher[T]
	pageSize int
	acc      *pagination.Accumulator[T]
	trail    cursorTrail
}

// NewListLoader creates a loader over fetch. identity keys items for the
// repeated-page check.
func NewListLoader[T any](fetch ListFetcher[T], pageSize int, identity func(T) string) *ListLoader[T] {
	return &ListLoader[T]{
		fetch:    fetch,
		pageSize: pageSize,
		acc:      pagination.NewAccumulator(identity),
	}
}

// NewEntityListLoader creates a loader over an entity reader, keyed by the
// entity's Key method.
func NewEntityListLoader[T interface{ Key() string }](r inbound.EntityReader[T], pageSize int) *ListLoader[T] {
	return NewListLoader[T](r.GetList, pageSize, func(v T) string { return v.Key() })
}

// Load fetches the page after the given cursor and merges it. An empty
// cursor reloads from the first page.
func (l *ListLoader[T]) Load(ctx context.Context, after string) error {
	page, err := l.fetch(ctx, l.pageSize, after)
	if err != nil {
		return err
	}
	l.acc.Merge(page, after)
	l.trail.record(after)
	return nil
}

// LoadFirst (re)loads the first page.
func (l *ListLoader[T]) LoadFirst(ctx context.Context) error {
	return l.Load(ctx, "")
}

// LoadMore loads the next page if there is one. It reports whether a page
// was requested. A next cursor that was already requested ends the list.
func (l *ListLoader[T]) LoadMore(ctx context.Context) (bool, error) {
	if !l.acc.Loaded() {
		return true, l.LoadFirst(ctx)
	}
	cursor, ok := l.acc.NextCursor()
	if !ok || !l.trail.fresh(cursor) {
		return false, nil
	}
	return true, l.Load(ctx, cursor)
}

// LoadAll loads pages until the list is exhausted or maxPages pages have
// been requested. maxPages <= 0 means no limit.
func (l *ListLoader[T]) LoadAll(ctx context.Context, maxPages int) error {
	return loadAll(ctx, maxPages, l.LoadMore)
}

// Items returns a copy of the accumulated list.
func (l *ListLoader[T]) Items() []T { return l.acc.Items() }

// Snapshot returns the accumulated list with the latest page info.
func (l *ListLoader[T]) Snapshot() pagination.Collection[T] { return l.acc.Snapshot() }

// HasMore reports whether another page can be loaded.
func (l *ListLoader[T]) HasMore() bool {
	cursor, ok := l.acc.NextCursor()
	return ok && l.trail.fresh(cursor)
}

func loadAll(ctx context.Context, maxPages int, loadMore func(context.Context) (bool, error)) error {
	for n := 0; maxPages <= 0 || n < maxPages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := loadMore(ctx)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// cursorTrail remembers the cursors requested since the first page. A
// backend that hands out an already used cursor has nothing new to give.
type cursorTrail struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (t *cursorTrail) record(after string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if after == "" || t.seen == nil {
		t.seen = make(map[string]bool)
	}
	if after != "" {
		t.seen[after] = true
	}
}

func (t *cursorTrail) fresh(cursor string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.seen[cursor]
}

// CategoryProductsLoader backs a category page: the category's own fields
// are captured from the first page only, while its products accumulate
// across pages like any other list.
type CategoryProductsLoader struct {
	reader   inbound.CategoryReader
	slug     string
	pageSize int

	mu       sync.RWMutex
	category *catalog.ProductCategory
	products *pagination.Accumulator[catalog.Product]
	trail    cursorTrail
}

// NewCategoryProductsLoader creates a loader for the category with slug.
func NewCategoryProductsLoader(reader inbound.CategoryReader, slug string, pageSize int) *CategoryProductsLoader {
	return &CategoryProductsLoader{
		reader:   reader,
		slug:     slug,
		pageSize: pageSize,
		products: pagination.NewAccumulator(catalog.Product.Key),
	}
}

// Load fetches the product page after the given cursor.
func (l *CategoryProductsLoader) Load(ctx context.Context, after string) error {
	cat, err := l.reader.GetWithProducts(ctx, l.slug, l.pageSize, after)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if after == "" || l.category == nil {
		scalars := cat.WithoutProducts()
		l.category = &scalars
	}
	l.mu.Unlock()

	page := pagination.Collection[catalog.Product]{}
	if cat.Products != nil {
		page = *cat.Products
	}
	l.products.Merge(page, after)
	l.trail.record(after)
	return nil
}

// LoadFirst (re)loads the category and its first product page.
func (l *CategoryProductsLoader) LoadFirst(ctx context.Context) error {
	return l.Load(ctx, "")
}

// LoadMore loads the next product page if there is one.
func (l *CategoryProductsLoader) LoadMore(ctx context.Context) (bool, error) {
	if !l.products.Loaded() {
		return true, l.LoadFirst(ctx)
	}
	cursor, ok := l.products.NextCursor()
	if !ok || !l.trail.fresh(cursor) {
		return false, nil
	}
	return true, l.Load(ctx, cursor)
}

// LoadAll loads the category and then product pages until they run out or
// maxPages pages have been requested. maxPages <= 0 means no limit.
func (l *CategoryProductsLoader) LoadAll(ctx context.Context, maxPages int) error {
	return loadAll(ctx, maxPages, l.LoadMore)
}

// Category returns the category with every product loaded so far.
// ok is false before the first successful load.
func (l *CategoryProductsLoader) Category() (catalog.ProductCategory, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.category == nil {
		return catalog.ProductCategory{}, false
	}
	c := *l.category
	products := l.products.Snapshot()
	c.Products = &products
	return c, true
}

// HasMore reports whether another product page can be loaded.
func (l *CategoryProductsLoader) HasMore() bool {
	cursor, ok := l.products.NextCursor()
	return ok && l.trail.fresh(cursor)
}
