// Package http provides the local JSON API for wept.
//
// The API exposes the storefront controllers to local tools and front ends.
// It serves a single browsing session: the cart session token is the one
// held by the process's durable store, like a browser profile.
//
// # Endpoints
//
//	GET    /api/posts                   ?first=&after=
//	GET    /api/posts/{slug}
//	GET    /api/pages                   ?first=&after=
//	GET    /api/pages/{slug}
//	GET    /api/products                ?first=&after=&where=<CEL>
//	GET    /api/products/search         ?q=
//	GET    /api/products/{slug}
//	GET    /api/categories              ?first=&after=
//	GET    /api/categories/{slug}       ?products=&after=
//	GET    /api/menus/{name}
//	GET    /api/settings
//	GET    /api/cart                    ?refresh=true
//	POST   /api/cart/items              {"product_id": 11, "quantity": 1}
//	PATCH  /api/cart/items/{key}        {"quantity": 2}
//	DELETE /api/cart/items/{key}
//	GET    /healthz
//	GET    /metrics
//
// # Errors
//
// Failures are returned as {"error": {"kind", "message", "id"}}. NotFound
// maps to 404, API, GraphQL and Parse failures to 502, anything else to
// 500. Malformed parameters get 400 and a disallowed Origin gets 403 with
// kind "forbidden".
//
// # Middleware Chain
//
// Requests pass through, outermost first: MetricsMiddleware, RequestID,
// RealIP, OriginGuard, then the route handler.
package http
