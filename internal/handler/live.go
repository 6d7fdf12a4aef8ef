package handler

import (
	"net/http"

	"github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/ws"
)

// LiveHandler upgrades orders pages to the live-refresh socket.
type LiveHandler struct {
	hub *ws.Hub
}

// NewLiveHandler creates a new LiveHandler.
func NewLiveHandler(hub *ws.Hub) *LiveHandler {
	return &LiveHandler{hub: hub}
}

// ServeHTTP handles GET /ws/orders. The page joins its profile's room.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws.ServeWS(h.hub, middleware.ProfileFromContext(r.Context()), w, r)
}
