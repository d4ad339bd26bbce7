package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexwatever/wept/internal/domain/catalog"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
)

// pagedPosts serves fixed pages keyed by the cursor they are requested with.
type pagedPosts struct {
	pages map[string]pagination.Collection[catalog.Post]
	calls []string
	err   error
}

func (p *pagedPosts) GetBySlug(context.Context, string) (catalog.Post, error) {
	return catalog.Post{}, errors.New("not used")
}

func (p *pagedPosts) GetList(_ context.Context, _ int, after string) (pagination.Collection[catalog.Post], error) {
	p.calls = append(p.calls, after)
	if p.err != nil {
		return pagination.Collection[catalog.Post]{}, p.err
	}
	return p.pages[after], nil
}

var _ inbound.PostReader = (*pagedPosts)(nil)

func posts(slugs ...string) []catalog.Post {
	out := make([]catalog.Post, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, catalog.Post{ID: "id-" + s, Slug: s})
	}
	return out
}

func slugsOf(items []catalog.Post) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Slug)
	}
	return out
}

func threePages() *pagedPosts {
	return &pagedPosts{pages: map[string]pagination.Collection[catalog.Post]{
		"":   {Items: posts("a", "b"), PageInfo: &pagination.PageInfo{EndCursor: "c1", HasNextPage: true}},
		"c1": {Items: posts("c", "d"), PageInfo: &pagination.PageInfo{EndCursor: "c2", HasNextPage: true}},
		"c2": {Items: posts("e"), PageInfo: &pagination.PageInfo{EndCursor: "c3", HasNextPage: false}},
	}}
}

func TestListLoader_LoadMore(t *testing.T) {
	t.Parallel()

	src := threePages()
	l := NewEntityListLoader[catalog.Post](src, 2)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		more, err := l.LoadMore(ctx)
		if err != nil || !more {
			t.Fatalf("LoadMore() #%d = %v, %v", i, more, err)
		}
	}
	if got := slugsOf(l.Items()); len(got) != 5 || got[0] != "a" || got[4] != "e" {
		t.Errorf("Items() = %v, want a..e", got)
	}
	if l.HasMore() {
		t.Error("HasMore() = true after last page")
	}

	more, err := l.LoadMore(ctx)
	if err != nil || more {
		t.Errorf("LoadMore() past the end = %v, %v, want false, nil", more, err)
	}
	if len(src.calls) != 3 {
		t.Errorf("backend calls = %v, want 3", src.calls)
	}
}

func TestListLoader_LoadAll(t *testing.T) {
	t.Parallel()

	l := NewEntityListLoader[catalog.Post](threePages(), 2)
	if err := l.LoadAll(context.Background(), 0); err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	snap := l.Snapshot()
	if snap.Len() != 5 {
		t.Errorf("Len() = %d, want 5", snap.Len())
	}
	if snap.PageInfo == nil || snap.PageInfo.EndCursor != "c3" {
		t.Errorf("PageInfo = %+v, want latest page's", snap.PageInfo)
	}
}

func TestListLoader_LoadAllHonoursMaxPages(t *testing.T) {
	t.Parallel()

	src := threePages()
	l := NewEntityListLoader[catalog.Post](src, 2)
	if err := l.LoadAll(context.Background(), 2); err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(src.calls) != 2 || !l.HasMore() {
		t.Errorf("calls = %v, HasMore = %v", src.calls, l.HasMore())
	}
}

func TestListLoader_RepeatedPageDiscarded(t *testing.T) {
	t.Parallel()

	src := threePages()
	// The backend answers c1 with the first page again.
	src.pages["c1"] = pagination.Collection[catalog.Post]{
		Items:    posts("a", "b"),
		PageInfo: &pagination.PageInfo{EndCursor: "c2", HasNextPage: true},
	}
	l := NewEntityListLoader[catalog.Post](src, 2)
	ctx := context.Background()

	if err := l.LoadFirst(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := l.LoadMore(ctx); err != nil {
		t.Fatal(err)
	}
	if got := slugsOf(l.Items()); len(got) != 2 {
		t.Errorf("Items() = %v, want repeated page dropped", got)
	}
	if cur, _ := pagination.NextCursor(l.Snapshot().PageInfo); cur != "c2" {
		t.Errorf("cursor = %q, want c2 (page info still advances)", cur)
	}
}

func TestListLoader_LoadFirstReplaces(t *testing.T) {
	t.Parallel()

	l := NewEntityListLoader[catalog.Post](threePages(), 2)
	ctx := context.Background()
	_ = l.LoadAll(ctx, 0)

	if err := l.LoadFirst(ctx); err != nil {
		t.Fatal(err)
	}
	if got := slugsOf(l.Items()); len(got) != 2 || got[0] != "a" {
		t.Errorf("Items() = %v, want first page only", got)
	}
}

func TestListLoader_ErrorKeepsList(t *testing.T) {
	t.Parallel()

	src := threePages()
	l := NewEntityListLoader[catalog.Post](src, 2)
	ctx := context.Background()
	_ = l.LoadFirst(ctx)

	src.err = errors.New("backend down")
	if _, err := l.LoadMore(ctx); err == nil {
		t.Fatal("LoadMore() should fail")
	}
	if got := slugsOf(l.Items()); len(got) != 2 {
		t.Errorf("Items() = %v after failed load, want unchanged", got)
	}
}

func TestListLoader_LoadAllStopsOnRepeatedCursor(t *testing.T) {
	t.Parallel()

	calls := 0
	fetch := func(context.Context, int, string) (pagination.Collection[catalog.Post], error) {
		calls++
		return pagination.Collection[catalog.Post]{
			Items:    posts("a", "b"),
			PageInfo: &pagination.PageInfo{EndCursor: "c1", HasNextPage: true},
		}, nil
	}
	l := NewListLoader[catalog.Post](fetch, 2, catalog.Post.Key)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.LoadAll(ctx, 0); err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if calls != 2 {
		t.Errorf("fetch calls = %d, want 2", calls)
	}
	if got := slugsOf(l.Items()); len(got) != 2 {
		t.Errorf("Items() = %v, want [a b]", got)
	}
	if l.HasMore() {
		t.Error("HasMore() = true with an exhausted cursor")
	}
}

func TestListLoader_LoadFirstForgetsCursors(t *testing.T) {
	t.Parallel()

	src := threePages()
	l := NewEntityListLoader[catalog.Post](src, 2)
	ctx := context.Background()
	if err := l.LoadAll(ctx, 0); err != nil {
		t.Fatal(err)
	}

	src.calls = nil
	if err := l.LoadFirst(ctx); err != nil {
		t.Fatal(err)
	}
	if err := l.LoadAll(ctx, 0); err != nil {
		t.Fatal(err)
	}
	if len(src.calls) != 3 || len(l.Items()) != 5 {
		t.Errorf("calls = %v, items = %v, want a full second pass", src.calls, slugsOf(l.Items()))
	}
}

type pagedCategory struct {
	calls int
	stuck bool
}

func (p *pagedCategory) GetBySlug(context.Context, string) (catalog.ProductCategory, error) {
	return catalog.ProductCategory{}, errors.New("not used")
}

func (p *pagedCategory) GetList(context.Context, int, string) (pagination.Collection[catalog.ProductCategory], error) {
	return pagination.Collection[catalog.ProductCategory]{}, errors.New("not used")
}

func (p *pagedCategory) GetWithProducts(_ context.Context, slug string, _ int, after string) (catalog.ProductCategory, error) {
	p.calls++
	cat := catalog.ProductCategory{ID: "cat-1", Slug: slug, Name: "Kitchen"}
	if p.stuck {
		cat.Products = &pagination.Collection[catalog.Product]{
			Items:    []catalog.Product{{ID: "p1", Slug: "mug"}},
			PageInfo: &pagination.PageInfo{EndCursor: "k1", HasNextPage: true},
		}
		return cat, nil
	}
	switch after {
	case "":
		cat.Products = &pagination.Collection[catalog.Product]{
			Items:    []catalog.Product{{ID: "p1", Slug: "mug"}},
			PageInfo: &pagination.PageInfo{EndCursor: "k1", HasNextPage: true},
		}
	case "k1":
		// A renamed category on a later page must not overwrite the first one.
		cat.Name = "Renamed"
		cat.Products = &pagination.Collection[catalog.Product]{
			Items:    []catalog.Product{{ID: "p2", Slug: "bowl"}},
			PageInfo: &pagination.PageInfo{EndCursor: "k2", HasNextPage: false},
		}
	}
	return cat, nil
}

var _ inbound.CategoryReader = (*pagedCategory)(nil)

func TestCategoryProductsLoader(t *testing.T) {
	t.Parallel()

	src := &pagedCategory{}
	l := NewCategoryProductsLoader(src, "kitchen", 1)
	ctx := context.Background()

	if _, ok := l.Category(); ok {
		t.Fatal("Category() ok before first load")
	}
	for l.HasMore() || src.calls == 0 {
		if _, err := l.LoadMore(ctx); err != nil {
			t.Fatalf("LoadMore() error: %v", err)
		}
	}

	cat, ok := l.Category()
	if !ok {
		t.Fatal("Category() not ok after loads")
	}
	if cat.Name != "Kitchen" {
		t.Errorf("Name = %q, want first page's scalars", cat.Name)
	}
	if cat.Products == nil || cat.Products.Len() != 2 {
		t.Fatalf("Products = %+v, want 2 accumulated", cat.Products)
	}
	if cat.Products.Items[1].Slug != "bowl" {
		t.Errorf("Products = %+v", cat.Products.Items)
	}
	if src.calls != 2 {
		t.Errorf("calls = %d, want 2", src.calls)
	}
}

func TestCategoryProductsLoader_LoadAll(t *testing.T) {
	t.Parallel()

	t.Run("every page", func(t *testing.T) {
		src := &pagedCategory{}
		l := NewCategoryProductsLoader(src, "kitchen", 1)
		if err := l.LoadAll(context.Background(), 0); err != nil {
			t.Fatal(err)
		}
		cat, _ := l.Category()
		if src.calls != 2 || cat.Products.Len() != 2 {
			t.Errorf("calls = %d, products = %+v", src.calls, cat.Products)
		}
	})

	t.Run("page cap", func(t *testing.T) {
		src := &pagedCategory{}
		l := NewCategoryProductsLoader(src, "kitchen", 1)
		if err := l.LoadAll(context.Background(), 1); err != nil {
			t.Fatal(err)
		}
		if src.calls != 1 || !l.HasMore() {
			t.Errorf("calls = %d, HasMore = %v", src.calls, l.HasMore())
		}
	})

	t.Run("repeated cursor", func(t *testing.T) {
		src := &pagedCategory{stuck: true}
		l := NewCategoryProductsLoader(src, "kitchen", 1)
		if err := l.LoadAll(context.Background(), 0); err != nil {
			t.Fatal(err)
		}
		if src.calls != 2 || l.HasMore() {
			t.Errorf("calls = %d, HasMore = %v, want 2 calls and no more pages", src.calls, l.HasMore())
		}
	})

	t.Run("canceled", func(t *testing.T) {
		src := &pagedCategory{}
		l := NewCategoryProductsLoader(src, "kitchen", 1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := l.LoadAll(ctx, 0); !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
		if src.calls != 0 {
			t.Errorf("calls = %d, want 0", src.calls)
		}
	})
}
