package service

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alexwatever/wept/internal/adapter/outbound/memory"
	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/port/outbound"
)

type cartFixture struct {
	shop    *fakeShop
	store   *memory.KVStore
	state   *StateStore
	ctrl    *CartController
	service *CartService
}

func newCartFixture(t *testing.T, shop *fakeShop) cartFixture {
	t.Helper()
	srv := shop.serve(t)
	state := NewStateStore(srv.URL, "graphql")
	store := memory.NewKVStore()
	ctrl := NewCartController(context.Background(), newShopClient(srv), store, nil)
	return cartFixture{
		shop:    shop,
		store:   store,
		state:   state,
		ctrl:    ctrl,
		service: NewCartService(ctrl, state, store, nil),
	}
}

func (f cartFixture) mirror(t *testing.T) (cart.Cart, bool) {
	t.Helper()
	raw, ok, err := f.store.Get(context.Background(), outbound.KeyCart)
	if err != nil {
		t.Fatalf("read mirror: %v", err)
	}
	if !ok {
		return cart.Cart{}, false
	}
	var c cart.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("decode mirror: %v", err)
	}
	return c, true
}

func TestCartService_AddRefetchesServerCart(t *testing.T) {
	t.Parallel()

	shop := newFakeShop()
	shop.stalePayload = true
	f := newCartFixture(t, shop)
	ctx := context.Background()

	got, err := f.service.Add(ctx, 42, 2)
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if got.Total != "$10.00" || got.Quantity() != 2 {
		t.Errorf("Add() = total %q quantity %d, want the refetched $10.00 / 2", got.Total, got.Quantity())
	}

	reqs := shop.requestLog()
	if len(reqs) != 2 || reqs[0].op != "AddToCart" || reqs[1].op != "Cart" {
		t.Fatalf("requests = %+v, want AddToCart then Cart", reqs)
	}
	if reqs[0].session != "" {
		t.Errorf("AddToCart session = %q, want none", reqs[0].session)
	}
	if reqs[1].session != "Session tok-1" {
		t.Errorf("Cart session = %q, want the token issued by the mutation", reqs[1].session)
	}

	server, err := f.ctrl.GetCart(ctx)
	if err != nil || server == nil {
		t.Fatalf("GetCart() = %v, %v", server, err)
	}
	if !reflect.DeepEqual(got, *server) {
		t.Errorf("Add() = %+v, want server cart %+v", got, *server)
	}
	if st := f.state.Cart(); st.Total != "$10.00" || !reflect.DeepEqual(st, *server) {
		t.Errorf("state cart = %+v, want server cart", st)
	}
	mirrored, ok := f.mirror(t)
	if !ok || mirrored.Total != "$10.00" || !reflect.DeepEqual(mirrored, *server) {
		t.Errorf("mirror = %+v (ok=%v), want server cart", mirrored, ok)
	}
	if f.service.Status() != cart.StatusIdle {
		t.Errorf("Status() = %v after completion, want idle", f.service.Status())
	}
	if v := f.state.Snapshot().CartVersion; v != 1 {
		t.Errorf("CartVersion = %d, want 1", v)
	}
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t, newFakeShop())
	ctx := context.Background()

	if _, err := f.service.Add(ctx, 1, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := f.service.Add(ctx, 2, 1); err != nil {
		t.Fatal(err)
	}

	got, err := f.service.Update(ctx, "line-1", 4)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.Quantity() != 5 || got.Total != "$25.00" {
		t.Errorf("after update: quantity=%d total=%q, want 5 / $25.00", got.Quantity(), got.Total)
	}

	got, err = f.service.Remove(ctx, "line-1")
	if err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Key != "line-2" {
		t.Errorf("after remove: %+v", got.Items)
	}
	if mirrored, _ := f.mirror(t); !reflect.DeepEqual(mirrored, got) {
		t.Errorf("mirror = %+v, want %+v", mirrored, got)
	}
}

func TestCartService_FailedMutationKeepsProjection(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t, newFakeShop())
	ctx := context.Background()

	before, err := f.service.Add(ctx, 9, 1)
	if err != nil {
		t.Fatal(err)
	}
	version := f.state.Snapshot().CartVersion
	writes := f.store.Writes()

	f.shop.setFail("AddToCart", http.StatusBadGateway)
	got, err := f.service.Add(ctx, 10, 1)
	if apperror.Classify(err) != apperror.KindAPI {
		t.Fatalf("Add() error = %v, want API kind", err)
	}
	if !reflect.DeepEqual(got, before) || !reflect.DeepEqual(f.state.Cart(), before) {
		t.Errorf("projection changed after failure: %+v", f.state.Cart())
	}
	if f.state.Snapshot().CartVersion != version {
		t.Error("CartVersion changed after failure")
	}
	// The token is re-persisted, the mirror is not rewritten.
	if mirrored, _ := f.mirror(t); !reflect.DeepEqual(mirrored, before) {
		t.Errorf("mirror = %+v, want unchanged", mirrored)
	}
	if f.store.Writes() > writes+1 {
		t.Errorf("store writes = %d, want at most %d", f.store.Writes(), writes+1)
	}
}

func TestCartService_FailedRefetchKeepsProjection(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t, newFakeShop())
	ctx := context.Background()

	before, err := f.service.Add(ctx, 9, 1)
	if err != nil {
		t.Fatal(err)
	}

	f.shop.setFail("Cart", http.StatusServiceUnavailable)
	if _, err := f.service.Add(ctx, 9, 1); err == nil {
		t.Fatal("Add() should fail when the refetch fails")
	}
	if !reflect.DeepEqual(f.state.Cart(), before) {
		t.Errorf("state = %+v, want %+v", f.state.Cart(), before)
	}
}

func TestCartService_NullServerCartKeepsProjection(t *testing.T) {
	t.Parallel()

	shop := newFakeShop()
	f := newCartFixture(t, shop)
	ctx := context.Background()

	before, err := f.service.Add(ctx, 9, 2)
	if err != nil {
		t.Fatal(err)
	}

	shop.mu.Lock()
	shop.nullCart = true
	shop.mu.Unlock()

	got, err := f.service.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if !reflect.DeepEqual(got, before) {
		t.Errorf("Refresh() = %+v, want previous projection", got)
	}
}

func TestCartService_SerializesActions(t *testing.T) {
	t.Parallel()

	shop := newFakeShop()
	shop.delay = 5 * time.Millisecond
	f := newCartFixture(t, shop)
	ctx := context.Background()

	// Obtain the session first so every concurrent action shares one cart.
	if _, err := f.service.Add(ctx, 1, 1); err != nil {
		t.Fatal(err)
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.service.Add(ctx, 1, 1); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Add() error: %v", err)
	}

	if got := f.state.Cart().Quantity(); got != workers+1 {
		t.Errorf("Quantity() = %d, want %d", got, workers+1)
	}
	if m := shop.maxFlight.Load(); m != 1 {
		t.Errorf("max concurrent backend requests = %d, want 1", m)
	}
	server, _ := f.ctrl.GetCart(ctx)
	if !reflect.DeepEqual(f.state.Cart(), *server) {
		t.Errorf("state = %+v, server = %+v", f.state.Cart(), *server)
	}
}

func TestCartService_Restore(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t, newFakeShop())
	ctx := context.Background()

	saved := cart.Cart{
		Items:    []cart.Item{{Key: "line-5", Product: cart.ProductRef{ID: "prod-5", DatabaseID: 5}, Quantity: 2, Total: "$10.00"}},
		Subtotal: "$10.00",
		Total:    "$10.00",
	}
	data, _ := json.Marshal(saved)
	_ = f.store.Set(ctx, outbound.KeyCart, string(data))

	if err := f.service.Restore(ctx); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if !reflect.DeepEqual(f.service.Cart(), saved) {
		t.Errorf("Cart() = %+v, want %+v", f.service.Cart(), saved)
	}
	if f.shop.requestCount() != 0 {
		t.Error("Restore must not contact the backend")
	}
}

func TestCartService_RestoreCorruptMirror(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t, newFakeShop())
	ctx := context.Background()
	_ = f.store.Set(ctx, outbound.KeyCart, "{not json")

	if err := f.service.Restore(ctx); err != nil {
		t.Fatalf("Restore() error = %v, want corrupt mirror ignored", err)
	}
	if !f.service.Cart().IsEmpty() {
		t.Errorf("Cart() = %+v, want empty", f.service.Cart())
	}
	if f.state.Snapshot().CartVersion != 0 {
		t.Error("corrupt mirror must not be applied")
	}
}

func TestCartService_RestoreWithoutMirror(t *testing.T) {
	t.Parallel()

	f := newCartFixture(t, newFakeShop())
	if err := f.service.Restore(context.Background()); err != nil {
		t.Fatalf("Restore() error: %v", err)
	}
	if f.state.Snapshot().CartVersion != 0 {
		t.Error("missing mirror must leave state untouched")
	}
}

func TestCartService_ResetStartsNewSession(t *testing.T) {
	t.Parallel()

	shop := newFakeShop()
	f := newCartFixture(t, shop)
	ctx := context.Background()

	if _, err := f.service.Add(ctx, 3, 1); err != nil {
		t.Fatal(err)
	}
	if err := f.service.Reset(ctx); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	if !f.service.Cart().IsEmpty() {
		t.Errorf("Cart() = %+v after reset, want empty", f.service.Cart())
	}
	if _, ok := f.mirror(t); ok {
		t.Error("mirror still present after reset")
	}
	if _, ok, _ := f.store.Get(ctx, outbound.KeySessionToken); ok {
		t.Error("session token still persisted after reset")
	}

	got, err := f.service.Add(ctx, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 1 || got.Items[0].Product.DatabaseID != 4 {
		t.Errorf("cart after reset = %+v, want only the new line", got.Items)
	}
	if last := shop.lastRequest(); last.session != "Session tok-2" {
		t.Errorf("session = %q, want a newly issued token", last.session)
	}
}
