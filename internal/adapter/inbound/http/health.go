package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"time"

	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/port/outbound"
)

// storeProbeTimeout bounds the KV store reachability check.
const storeProbeTimeout = 2 * time.Second

// HealthResponse is the JSON response from the /healthz endpoint.
type HealthResponse struct {
	Status  string            `json:"status"`            // "healthy" or "unhealthy"
	Checks  map[string]string `json:"checks"`            // Component check results
	Version string            `json:"version,omitempty"` // Optional version info
}

// CartStatusSource reports the cart lifecycle state.
type CartStatusSource interface {
	Status() cart.Status
}

// HealthChecker verifies component health.
type HealthChecker struct {
	endpoints outbound.EndpointSource
	store     outbound.KVStore
	cart      CartStatusSource
	version   string
}

// NewHealthChecker creates a HealthChecker with optional components.
// Pass nil for components that aren't available.
func NewHealthChecker(
	endpoints outbound.EndpointSource,
	store outbound.KVStore,
	cartStatus CartStatusSource,
	version string,
) *HealthChecker {
	return &HealthChecker{
		endpoints: endpoints,
		store:     store,
		cart:      cartStatus,
		version:   version,
	}
}

// Check performs health checks on all components. The backend itself is
// not contacted; only the configured endpoint is validated.
func (h *HealthChecker) Check(ctx context.Context) HealthResponse {
	checks := make(map[string]string)
	healthy := true

	if h.endpoints != nil {
		endpoint := h.endpoints.Endpoint()
		if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
			checks["backend"] = fmt.Sprintf("invalid endpoint %q", endpoint)
			healthy = false
		} else {
			checks["backend"] = "ok: " + endpoint
		}
	} else {
		checks["backend"] = "not configured"
	}

	if h.store != nil {
		probeCtx, cancel := context.WithTimeout(ctx, storeProbeTimeout)
		_, _, err := h.store.Get(probeCtx, outbound.KeySessionToken)
		cancel()
		if err != nil {
			checks["store"] = "unreachable: " + err.Error()
			healthy = false
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "not configured"
	}

	if h.cart != nil {
		checks["cart"] = h.cart.Status().String()
	} else {
		checks["cart"] = "not configured"
	}

	checks["goroutines"] = fmt.Sprintf("%d", runtime.NumGoroutine())

	status := "healthy"
	if !healthy {
		status = "unhealthy"
	}

	return HealthResponse{
		Status:  status,
		Checks:  checks,
		Version: h.version,
	}
}

// Handler returns an HTTP handler for the health endpoint.
func (h *HealthChecker) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		health := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if health.Status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable) // 503
		} else {
			w.WriteHeader(http.StatusOK) // 200
		}

		_ = json.NewEncoder(w).Encode(health)
	})
}
