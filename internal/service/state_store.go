package service

import (
	"strings"
	"sync"
	"time"

	"github.com/alexwatever/wept/internal/config"
	"github.com/alexwatever/wept/internal/domain/cart"
)

// StateSnapshot is a point-in-time copy of the process-wide state.
type StateSnapshot struct {
	BackendHost string    `json:"backend_host" yaml:"backend_host"`
	BackendPath string    `json:"backend_path" yaml:"backend_path"`
	Cart        cart.Cart `json:"cart" yaml:"cart"`
	// CartVersion increases on every cart write.
	CartVersion   uint64    `json:"cart_version" yaml:"cart_version"`
	CartUpdatedAt time.Time `json:"cart_updated_at,omitempty" yaml:"cart_updated_at,omitempty"`
}

// StateStore holds the process-wide backend location and cart projection.
// Readers get copies. The cart has a single writer, CartService.
type StateStore struct {
	mu            sync.RWMutex
	backendHost   string
	backendPath   string
	cart          cart.Cart
	cartVersion   uint64
	cartUpdatedAt time.Time
}

// NewStateStore creates a store pointing at host and path. Empty values
// fall back to the built-in defaults.
func NewStateStore(host, path string) *StateStore {
	s := &StateStore{cart: cart.Cart{Items: []cart.Item{}}}
	s.Configure(host, path)
	return s
}

var defaultState = sync.OnceValue(func() *StateStore {
	return NewStateStore(config.FallbackBackendHost, config.FallbackBackendPath)
})

// DefaultState returns the lazily created process-wide store.
func DefaultState() *StateStore {
	return defaultState()
}

// Configure changes the backend location. Transports observe the change
// on their next call.
func (s *StateStore) Configure(host, path string) {
	if host == "" {
		host = config.FallbackBackendHost
	}
	if path == "" {
		path = config.FallbackBackendPath
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backendHost = host
	s.backendPath = path
}

// BackendHost returns the configured host.
func (s *StateStore) BackendHost() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backendHost
}

// BackendPath returns the configured path.
func (s *StateStore) BackendPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backendPath
}

// Endpoint returns "{host}/{path}". It implements outbound.EndpointSource.
func (s *StateStore) Endpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return JoinEndpoint(s.backendHost, s.backendPath)
}

// Cart returns a copy of the cart projection.
func (s *StateStore) Cart() cart.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

// Snapshot returns a copy of the whole state.
func (s *StateStore) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StateSnapshot{
		BackendHost:   s.backendHost,
		BackendPath:   s.backendPath,
		Cart:          s.cart.Clone(),
		CartVersion:   s.cartVersion,
		CartUpdatedAt: s.cartUpdatedAt,
	}
}

// setCart replaces the cart projection wholesale.
func (s *StateStore) setCart(c cart.Cart) {
	c = c.Clone()
	if c.Items == nil {
		c.Items = []cart.Item{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = c
	s.cartVersion++
	s.cartUpdatedAt = time.Now().UTC()
}

// JoinEndpoint joins host and path with exactly one slash.
func JoinEndpoint(host, path string) string {
	host = strings.TrimRight(host, "/")
	path = strings.TrimLeft(path, "/")
	if path == "" {
		return host
	}
	return host + "/" + path
}
