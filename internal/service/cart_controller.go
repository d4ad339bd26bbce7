package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alexwatever/wept/internal/adapter/outbound/graphql"
	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// CartController talks to the backend cart and owns the session token.
//
// Every mutation response is checked for the session header before its
// body is decoded. A token found there is persisted under
// outbound.KeySessionToken and attached to all later requests made by this
// controller.
type CartController struct {
	mu     sync.Mutex
	client graphql.Client
	store  outbound.KVStore
	logger *slog.Logger
}

// NewCartController creates a controller using client and store. A token
// persisted by an earlier run is loaded so the server cart is resumed.
func NewCartController(ctx context.Context, client graphql.Client, store outbound.KVStore, logger *slog.Logger) *CartController {
	if logger == nil {
		logger = slog.Default()
	}
	c := &CartController{
		client: client,
		store:  store,
		logger: logger,
	}

	token, ok, err := store.Get(ctx, outbound.KeySessionToken)
	switch {
	case err != nil:
		logger.Warn("failed to read persisted session token", "error", err)
	case ok && token != "":
		c.client.SetSessionToken(token)
		logger.Debug("resumed cart session")
	}
	return c
}

// SessionToken returns the token currently attached to requests.
func (c *CartController) SessionToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.SessionToken()
}

// currentClient returns a copy of the client carrying the current token.
func (c *CartController) currentClient() graphql.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// GetCart fetches the server cart. It returns nil when the backend
// reports no cart.
func (c *CartController) GetCart(ctx context.Context) (*cart.Cart, error) {
	var data struct {
		Cart *wireCart `json:"cart"`
	}
	if err := c.currentClient().ExecuteQuery(ctx, cartQuery, nil, &data); err != nil {
		return nil, apperror.Wrap(err, "Failed to load your cart", fmt.Sprintf("%s: %v", cartQuery.Name, err))
	}
	if data.Cart == nil {
		return nil, nil
	}
	snapshot := mapCart(*data.Cart)
	return &snapshot, nil
}

// AddToCart adds quantity units of the product with the given database ID.
func (c *CartController) AddToCart(ctx context.Context, productDatabaseID int64, quantity int) (*cart.Cart, error) {
	if productDatabaseID <= 0 || quantity <= 0 {
		return nil, apperror.New(apperror.KindUnknown, "Invalid cart request",
			fmt.Sprintf("addToCart product=%d quantity=%d", productDatabaseID, quantity), nil)
	}
	return c.mutate(ctx, addToCartMutation, "addToCart", map[string]any{
		"productId": productDatabaseID,
		"quantity":  quantity,
	})
}

// UpdateItemQuantity sets the quantity of the line with the given key.
// A quantity of zero removes the line.
func (c *CartController) UpdateItemQuantity(ctx context.Context, key string, quantity int) (*cart.Cart, error) {
	if key == "" || quantity < 0 {
		return nil, apperror.New(apperror.KindUnknown, "Invalid cart request",
			fmt.Sprintf("updateItemQuantities key=%q quantity=%d", key, quantity), nil)
	}
	return c.mutate(ctx, updateItemQuantitiesMutation, "updateItemQuantities", map[string]any{
		"key":      key,
		"quantity": quantity,
	})
}

// RemoveItem removes the line with the given key.
func (c *CartController) RemoveItem(ctx context.Context, key string) (*cart.Cart, error) {
	if key == "" {
		return nil, apperror.New(apperror.KindUnknown, "Invalid cart request", "removeItemsFromCart without key", nil)
	}
	return c.mutate(ctx, removeItemsMutation, "removeItemsFromCart", map[string]any{
		"key": key,
	})
}

// mutate runs a cart mutation. The session header is captured first, even
// when the response reports an error. The returned cart is the mutation's
// own payload, nil when absent.
func (c *CartController) mutate(ctx context.Context, op outbound.Operation, field string, vars map[string]any) (*cart.Cart, error) {
	client := c.currentClient()
	raw, err := client.ExecuteMutation(ctx, op, vars)
	if raw != nil {
		c.captureSession(ctx, raw.SessionToken(client.SessionHeader()))
	}
	if err != nil {
		return nil, apperror.Wrap(err, "Failed to update your cart", fmt.Sprintf("%s: %v", op.Name, err))
	}

	var data map[string]*struct {
		Cart *wireCart `json:"cart"`
	}
	if _, err := raw.Decode(op.Name, &data); err != nil {
		return nil, apperror.Wrap(err, "Failed to update your cart", fmt.Sprintf("%s: %v", op.Name, err))
	}

	payload := data[field]
	if payload == nil || payload.Cart == nil {
		return nil, nil
	}
	snapshot := mapCart(*payload.Cart)
	return &snapshot, nil
}

// captureSession persists token and attaches it to later requests. An
// empty token leaves everything unchanged.
func (c *CartController) captureSession(ctx context.Context, token string) {
	if token == "" {
		return
	}

	c.mu.Lock()
	changed := c.client.SessionToken() != token
	c.client.SetSessionToken(token)
	c.mu.Unlock()

	// The server has already bound the cart to this token; a caller
	// canceling now must not lose it.
	if err := c.store.Set(context.WithoutCancel(ctx), outbound.KeySessionToken, token); err != nil {
		c.logger.Error("failed to persist session token", "error", err)
		return
	}
	if changed {
		c.logger.Info("cart session token updated")
	}
}

// ResetSession forgets the session token, locally and in the store.
func (c *CartController) ResetSession(ctx context.Context) error {
	c.mu.Lock()
	c.client.SetSessionToken("")
	c.mu.Unlock()
	if err := c.store.Delete(ctx, outbound.KeySessionToken); err != nil {
		return fmt.Errorf("delete session token: %w", err)
	}
	return nil
}
