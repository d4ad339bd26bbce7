// Package outbound defines the outbound port interfaces for reaching the
// GraphQL backend and the durable local store.
package outbound

import "context"

// Operation is a named GraphQL document.
type Operation struct {
	// Name is the operation name, used for logs, metrics and cache keys.
	Name string
	// Query is the full GraphQL document.
	Query string
}

// QueryExecutor runs read-only GraphQL queries.
// Adapters implement this over HTTP, optionally with caching in front.
type QueryExecutor interface {
	// ExecuteQuery runs op with vars and decodes the response's data
	// object into out. A response carrying GraphQL errors, or no data,
	// fails without touching out.
	ExecuteQuery(ctx context.Context, op Operation, vars map[string]any, out any) error
}

// EndpointSource supplies the backend URL. It is consulted on every call,
// so configuration changes apply without rebuilding clients.
type EndpointSource interface {
	Endpoint() string
}
