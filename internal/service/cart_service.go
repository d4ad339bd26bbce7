package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/port/inbound"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// CartService runs cart actions end to end: mutate, refetch the server
// cart, then overwrite the state store projection and the durable mirror.
//
// Actions are serialized. A mutation and the refetch that follows it form
// one critical section, so the projection always reflects the last
// completed mutation.
type CartService struct {
	mu         sync.Mutex
	controller *CartController
	state      *StateStore
	store      outbound.KVStore
	logger     *slog.Logger
	status     atomic.Int32
}

// NewCartService creates a CartService. It is the only writer of the
// cart held by state.
func NewCartService(controller *CartController, state *StateStore, store outbound.KVStore, logger *slog.Logger) *CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CartService{
		controller: controller,
		state:      state,
		store:      store,
		logger:     logger,
	}
}

// Cart returns the current projection.
func (s *CartService) Cart() cart.Cart {
	return s.state.Cart()
}

// Status reports what the service is doing right now.
func (s *CartService) Status() cart.Status {
	return cart.Status(s.status.Load())
}

func (s *CartService) setStatus(st cart.Status) {
	s.status.Store(int32(st))
}

// Restore loads the durable mirror into the state store. It is meant for
// startup, before the first refetch. A missing mirror leaves the state
// untouched; a corrupt one is discarded.
func (s *CartService) Restore(ctx context.Context) error {
	raw, ok, err := s.store.Get(ctx, outbound.KeyCart)
	if err != nil {
		return fmt.Errorf("read cart mirror: %w", err)
	}
	if !ok || raw == "" {
		return nil
	}
	var c cart.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		s.logger.Warn("discarding unreadable cart mirror", "error", err)
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.setCart(c)
	s.logger.Debug("cart restored from mirror", "items", len(c.Items))
	return nil
}

// Reset starts a fresh cart session: the token and the mirror are dropped
// and the projection is emptied. The server-side cart is left to expire.
func (s *CartService) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.controller.ResetSession(ctx); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, outbound.KeyCart); err != nil {
		return fmt.Errorf("delete cart mirror: %w", err)
	}
	s.state.setCart(cart.Cart{})
	loggerFromContext(ctx, s.logger).Info("cart session reset")
	return nil
}

// Refresh refetches the server cart and updates the projection.
func (s *CartService) Refresh(ctx context.Context) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setStatus(cart.StatusRefetching)
	defer s.setStatus(cart.StatusIdle)
	return s.sync(ctx)
}

// Add adds quantity units of a product.
func (s *CartService) Add(ctx context.Context, productDatabaseID int64, quantity int) (cart.Cart, error) {
	return s.run(ctx, "add", func(ctx context.Context) error {
		_, err := s.controller.AddToCart(ctx, productDatabaseID, quantity)
		return err
	})
}

// Update sets a line's quantity.
func (s *CartService) Update(ctx context.Context, key string, quantity int) (cart.Cart, error) {
	return s.run(ctx, "update", func(ctx context.Context) error {
		_, err := s.controller.UpdateItemQuantity(ctx, key, quantity)
		return err
	})
}

// Remove removes a line.
func (s *CartService) Remove(ctx context.Context, key string) (cart.Cart, error) {
	return s.run(ctx, "remove", func(ctx context.Context) error {
		_, err := s.controller.RemoveItem(ctx, key)
		return err
	})
}

// run executes mutate and, if it succeeds, refetches the cart. On failure
// the projection is left as it was and the error is returned.
func (s *CartService) run(ctx context.Context, action string, mutate func(context.Context) error) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setStatus(cart.StatusMutating)
	defer s.setStatus(cart.StatusIdle)

	if err := mutate(ctx); err != nil {
		loggerFromContext(ctx, s.logger).Debug("cart mutation failed", "action", action, "kind", apperror.Classify(err))
		return s.state.Cart(), err
	}

	s.setStatus(cart.StatusRefetching)
	return s.sync(ctx)
}

// sync refetches the server cart and writes it to the state store and the
// durable mirror. Must be called with s.mu held.
func (s *CartService) sync(ctx context.Context) (cart.Cart, error) {
	snapshot, err := s.controller.GetCart(ctx)
	if err != nil {
		return s.state.Cart(), err
	}
	if snapshot == nil {
		// No cart on the server side: keep what we have.
		return s.state.Cart(), nil
	}

	s.state.setCart(*snapshot)

	data, err := json.Marshal(snapshot)
	if err != nil {
		return s.state.Cart(), fmt.Errorf("encode cart mirror: %w", err)
	}
	if err := s.store.Set(context.WithoutCancel(ctx), outbound.KeyCart, string(data)); err != nil {
		loggerFromContext(ctx, s.logger).Error("failed to persist cart mirror", "error", err)
	}
	return s.state.Cart(), nil
}

var _ inbound.CartManager = (*CartService)(nil)
