package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/alexwatever/wept/internal/ctxkey"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags each request with an ID, taken from X-Request-ID
// or generated, and echoes it back. The request logger carries it as
// request_id; services pick that logger up through ctxkey.LoggerKey.
func RequestIDMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger.With("request_id", id))))
		})
	}
}

func withLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxkey.LoggerKey{}, logger)
}

// LoggerFromContext returns the request logger, or slog.Default outside a
// request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.LoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// OriginGuard rejects browser requests whose Origin is not in allowed, so a
// page on another site cannot drive the local cart. Requests without an
// Origin header pass. An empty allowlist rejects every cross-origin call.
func OriginGuard(allowed []string) mux.MiddlewareFunc {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" && !set[origin] {
				LoggerFromContext(r.Context()).Warn("origin rejected", "origin", origin)
				writeJSON(w, http.StatusForbidden, errorBody{Error: errorDetail{
					Kind:    "forbidden",
					Message: "origin not allowed",
				}})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RealIPMiddleware adds client_ip to the request logger. Run it after
// RequestIDMiddleware.
func RealIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := LoggerFromContext(r.Context()).With("client_ip", clientIP(r))
		next.ServeHTTP(w, r.WithContext(withLogger(r.Context(), logger)))
	})
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// connection's remote host.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
