package outbound

import "context"

// Durable keys shared by the storefront components.
const (
	// KeySessionToken holds the raw session token issued by the backend.
	KeySessionToken = "woocommerce-session"
	// KeyCart holds the JSON mirror of the last server cart snapshot.
	KeyCart = "cart"
)

// KVStore is a durable string key/value store, the equivalent of a
// browser's local storage. Implementations must be safe for concurrent use.
type KVStore interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store.
	Close() error
}
