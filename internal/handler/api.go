package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/order"
	"github.com/kiwari-pos/cafeteria/internal/service"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// APIHandler exposes the page operations as JSON.
type APIHandler struct {
	svc OrderServicer
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(svc OrderServicer) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterRoutes registers JSON endpoints on the given Chi router.
// Expected to be mounted at /api.
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)
	r.Get("/orders", h.ListOrders)
	r.Post("/orders", h.CreateOrder)
	r.Get("/orders/{id}", h.GetOrder)
	r.Post("/orders/{id}/advance", h.Advance)
}

// --- Request types ---

type createOrderRequest struct {
	Items []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	ItemID string `json:"itemId"`
	Qty    int    `json:"qty"`
}

// Menu handles GET /api/menu.
func (h *APIHandler) Menu(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Menu(r.Context())
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("load menu")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": view.MsgMenuPlaceholder})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListOrders handles GET /api/orders.
func (h *APIHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orders, err := h.svc.ListOrders(ctx, middleware.ProfileFromContext(ctx))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("list orders")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if orders == nil {
		orders = []order.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder handles GET /api/orders/{id}.
func (h *APIHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, ok, err := h.svc.GetOrder(ctx, middleware.ProfileFromContext(ctx), orderIDParam(r))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("get order")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// CreateOrder handles POST /api/orders.
func (h *APIHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	quantities := make(map[string]int, len(req.Items))
	for _, it := range req.Items {
		quantities[it.ItemID] += it.Qty
	}

	o, err := h.svc.PlaceOrder(ctx, service.PlaceOrderRequest{
		ProfileID:  middleware.ProfileFromContext(ctx),
		Quantities: quantities,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptySelection):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": view.MsgEmptySelection})
		case errors.Is(err, service.ErrUnknownItem):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, service.ErrTransport):
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": view.MsgOrderFailed})
		default:
			zerolog.Ctx(ctx).Error().Err(err).Msg("create order")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, o)
}

// Advance handles POST /api/orders/{id}/advance.
func (h *APIHandler) Advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, ok, err := h.svc.AdvanceStatus(ctx, middleware.ProfileFromContext(ctx), orderIDParam(r))
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("advance order status")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode JSON response")
	}
}
