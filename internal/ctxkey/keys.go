// Package ctxkey defines context key types shared by packages that cannot
// import each other.
package ctxkey

// LoggerKey is the context key type for the request-scoped logger.
// The HTTP middleware stores it; services read it when logging.
type LoggerKey struct{}
