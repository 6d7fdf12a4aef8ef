package handler

import (
	"net/http"

	"github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/rs/zerolog"
)

const msgOrdersUnavailable = "Failed to load your orders. Please try again."

// Orders handles GET /orders. The page is always a full render of the store.
func (h *PageHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := h.svc.ListOrders(ctx, middleware.ProfileFromContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list orders")
		page := view.BuildOrdersPage(nil)
		page.Header = h.header(ctx)
		page.Alert = msgOrdersUnavailable
		h.render(w, r, http.StatusInternalServerError, view.PageOrders, page)
		return
	}

	page := view.BuildOrdersPage(orders)
	page.Header = h.header(ctx)
	h.render(w, r, http.StatusOK, view.PageOrders, page)
}

// Advance handles POST /orders/{id}/advance. An unknown id changes nothing.
func (h *PageHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := orderIDParam(r)

	if _, _, err := h.svc.AdvanceStatus(ctx, middleware.ProfileFromContext(ctx), id); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("order_id", id).Msg("advance order status")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	redirect(w, r, "/orders")
}
