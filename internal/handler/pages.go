package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/catalog"
	"github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/order"
	"github.com/kiwari-pos/cafeteria/internal/service"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/rs/zerolog"
)

// OrderServicer defines the service methods needed by page and API handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	Menu(ctx context.Context) ([]catalog.MenuItem, error)
	PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (order.Order, error)
	ListOrders(ctx context.Context, profileID uuid.UUID) ([]order.Order, error)
	GetOrder(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error)
	AdvanceStatus(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error)
}

// PageHandler serves the menu and orders pages.
type PageHandler struct {
	svc         OrderServicer
	views       *view.Renderer
	authEnabled bool
}

// NewPageHandler creates a new PageHandler. authEnabled shows the sign-in
// controls in the page header.
func NewPageHandler(svc OrderServicer, views *view.Renderer, authEnabled bool) *PageHandler {
	return &PageHandler{svc: svc, views: views, authEnabled: authEnabled}
}

// RegisterRoutes registers page endpoints on the given Chi router.
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Menu)
	r.Post("/orders", h.PlaceOrder)
	r.Get("/orders", h.Orders)
	r.Post("/orders/{id}/advance", h.Advance)
}

func (h *PageHandler) header(ctx context.Context) view.Header {
	hdr := view.Header{AuthEnabled: h.authEnabled}
	if sess, ok := middleware.SessionFromContext(ctx); ok {
		hdr.LoggedIn = true
		hdr.Email = sess.Email()
	}
	return hdr
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, data any) {
	if err := h.views.Render(w, status, page, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("page", page).Msg("render page")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}

// orderIDParam returns the {id} segment decoded. Chi matches on the raw path
// when the URL carries escapes such as %2F, and then leaves params escaped.
func orderIDParam(r *http.Request) string {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id
	}
	if decoded, err := url.PathUnescape(id); err == nil {
		return decoded
	}
	return id
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
