package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/alexwatever/wept/internal/adapter/outbound/cel"
	"github.com/alexwatever/wept/internal/domain/apperror"
	"github.com/alexwatever/wept/internal/domain/cart"
	"github.com/alexwatever/wept/internal/domain/pagination"
	"github.com/alexwatever/wept/internal/port/inbound"
)

// maxRequestBodySize is the maximum allowed request body size (64 KB).
const maxRequestBodySize = 64 << 10

// Handlers serves the storefront API.
type Handlers struct {
	posts      inbound.PostReader
	pages      inbound.PageReader
	products   inbound.ProductReader
	categories inbound.CategoryReader
	menus      inbound.MenuReader
	settings   inbound.SettingsReader
	cart       inbound.CartManager
	metrics    *Metrics
}

// Storefront bundles the controllers the API serves.
type Storefront struct {
	Posts      inbound.PostReader
	Pages      inbound.PageReader
	Products   inbound.ProductReader
	Categories inbound.CategoryReader
	Menus      inbound.MenuReader
	Settings   inbound.SettingsReader
	Cart       inbound.CartManager
}

// NewHandlers creates the API handlers. metrics may be nil.
func NewHandlers(sf Storefront, metrics *Metrics) *Handlers {
	return &Handlers{
		posts:      sf.Posts,
		pages:      sf.Pages,
		products:   sf.Products,
		categories: sf.Categories,
		menus:      sf.Menus,
		settings:   sf.Settings,
		cart:       sf.Cart,
		metrics:    metrics,
	}
}

// RegisterRoutes registers the /api routes on r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/posts", h.listPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts/{slug}", h.getPost).Methods(http.MethodGet)
	api.HandleFunc("/pages", h.listPages).Methods(http.MethodGet)
	api.HandleFunc("/pages/{slug:.+}", h.getPage).Methods(http.MethodGet)

	// search is registered before {slug} so it is not captured as a slug.
	api.HandleFunc("/products/search", h.searchProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{slug}", h.getProduct).Methods(http.MethodGet)

	api.HandleFunc("/categories", h.listCategories).Methods(http.MethodGet)
	api.HandleFunc("/categories/{slug}", h.getCategory).Methods(http.MethodGet)

	api.HandleFunc("/menus/{name}", h.getMenu).Methods(http.MethodGet)
	api.HandleFunc("/settings", h.getSettings).Methods(http.MethodGet)

	api.HandleFunc("/cart", h.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart/items", h.addCartItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{key}", h.updateCartItem).Methods(http.MethodPatch)
	api.HandleFunc("/cart/items/{key}", h.removeCartItem).Methods(http.MethodDelete)
}

// --- request / response shapes ---

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

type addItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type updateItemReq struct {
	Quantity *int `json:"quantity"`
}

type cartResponse struct {
	Cart   cart.Cart `json:"cart"`
	Status string    `json:"status"`
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{Kind: "bad_request", Message: msg}})
}

// statusForKind maps an error kind to an HTTP status.
func statusForKind(k apperror.Kind) int {
	switch k {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindAPI, apperror.KindGraphQL, apperror.KindParse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err with its public message only. Internal details
// stay in the log, where the error ID leads.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.Wrap(err, "Something went wrong", fmt.Sprintf("%s %s: %v", r.Method, r.URL.Path, err))
	LoggerFromContext(r.Context()).Debug("request failed",
		"error_id", appErr.ID.String(),
		"kind", appErr.Kind.String(),
	)
	writeJSON(w, statusForKind(appErr.Kind), errorBody{Error: errorDetail{
		Kind:    appErr.Kind.String(),
		Message: appErr.PublicMessage,
		ID:      appErr.ID.String(),
	}})
}

// pageParams reads ?first= and ?after=.
func pageParams(r *http.Request) (first int, after string, err error) {
	q := r.URL.Query()
	if v := q.Get("first"); v != "" {
		first, err = strconv.Atoi(v)
		if err != nil || first < 1 || first > pagination.MaxPageSize {
			return 0, "", fmt.Errorf("first must be between 1 and %d", pagination.MaxPageSize)
		}
	}
	return first, q.Get("after"), nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer func() { _ = r.Body.Close() }()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxBytesErr):
			return errors.New("request body too large")
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		default:
			return errors.New("invalid json")
		}
	}
	return nil
}

// --- content ---

func (h *Handlers) listPosts(w http.ResponseWriter, r *http.Request) {
	first, after, err := pageParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	page, err := h.posts.GetList(r.Context(), first, after)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) getPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handlers) listPages(w http.ResponseWriter, r *http.Request) {
	first, after, err := pageParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	page, err := h.pages.GetList(r.Context(), first, after)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// getPage accepts nested URIs such as /api/pages/about/team.
func (h *Handlers) getPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.pages.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// --- catalog ---

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	first, after, err := pageParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var filter *cel.ProductFilter
	if where := r.URL.Query().Get("where"); where != "" {
		filter, err = cel.NewProductFilter(where)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}

	page, err := h.products.GetList(r.Context(), first, after)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// The filter narrows the fetched page; page info still describes the
	// unfiltered page so clients can keep paging.
	if filter != nil {
		page.Items, err = filter.Filter(r.Context(), page.Items)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) searchProducts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		writeBadRequest(w, "q is required")
		return
	}
	res, err := h.products.SearchProducts(r.Context(), term)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	first, after, err := pageParams(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	page, err := h.categories.GetList(r.Context(), first, after)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// getCategory returns the category alone, or with one page of products
// when ?products=N is given.
func (h *Handlers) getCategory(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]
	q := r.URL.Query()

	raw := q.Get("products")
	if raw == "" {
		cat, err := h.categories.GetBySlug(r.Context(), slug)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, cat)
		return
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > pagination.MaxPageSize {
		writeBadRequest(w, fmt.Sprintf("products must be between 1 and %d", pagination.MaxPageSize))
		return
	}
	cat, err := h.categories.GetWithProducts(r.Context(), slug, n, q.Get("after"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cat)
}

// --- site ---

func (h *Handlers) getMenu(w http.ResponseWriter, r *http.Request) {
	menu, err := h.menus.GetMenu(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, menu)
}

func (h *Handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.GetGeneralSettings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// --- cart ---

// writeCart answers with c, the cart returned by the action itself.
func (h *Handlers) writeCart(w http.ResponseWriter, code int, c cart.Cart) {
	h.metrics.cartItems(c.Quantity())
	writeJSON(w, code, cartResponse{Cart: c, Status: h.cart.Status().String()})
}

func (h *Handlers) getCart(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") != "true" {
		h.writeCart(w, http.StatusOK, h.cart.Cart())
		return
	}
	c, err := h.cart.Refresh(r.Context())
	h.metrics.cartAction("refresh", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, http.StatusOK, c)
}

func (h *Handlers) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.ProductID <= 0 {
		writeBadRequest(w, "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		writeBadRequest(w, "quantity must be positive")
		return
	}

	c, err := h.cart.Add(r.Context(), req.ProductID, req.Quantity)
	h.metrics.cartAction("add", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, http.StatusCreated, c)
}

func (h *Handlers) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemReq
	if err := decodeBody(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		writeBadRequest(w, "quantity must be >= 0")
		return
	}

	c, err := h.cart.Update(r.Context(), mux.Vars(r)["key"], *req.Quantity)
	h.metrics.cartAction("update", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, http.StatusOK, c)
}

func (h *Handlers) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.cart.Remove(r.Context(), mux.Vars(r)["key"])
	h.metrics.cartAction("remove", err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeCart(w, http.StatusOK, c)
}
