package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/service"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/rs/zerolog"
)

// Menu handles GET /. After a submission the redirect carries either
// ?placed=<id> or ?error=<code>.
func (h *PageHandler) Menu(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := h.svc.Menu(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("load menu")
	}

	page := view.BuildMenuPage(items, err)
	page.Header = h.header(ctx)

	q := r.URL.Query()
	if id := q.Get("placed"); id != "" {
		page.Notice = view.PlacedNotice(id)
	}
	if msg := view.ErrorMessage(q.Get("error")); msg != "" && page.Alert == "" {
		page.Alert = msg
	}

	h.render(w, r, http.StatusOK, view.PageMenu, page)
}

// PlaceOrder handles POST /orders from the menu form. Every outcome redirects
// back to the menu, so a reload never resubmits.
func (h *PageHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/?error="+view.ErrCodeEmpty)
		return
	}

	o, err := h.svc.PlaceOrder(ctx, service.PlaceOrderRequest{
		ProfileID:  middleware.ProfileFromContext(ctx),
		Quantities: quantitiesFromForm(r.PostForm),
	})
	if err != nil {
		code := submitErrorCode(err)
		if code == view.ErrCodeStorage {
			zerolog.Ctx(ctx).Error().Err(err).Msg("place order")
		}
		redirect(w, r, "/?error="+code)
		return
	}

	redirect(w, r, "/?placed="+url.QueryEscape(o.ID))
}

// quantitiesFromForm reads qty.<id> fields. Blank or non-numeric values count
// as zero.
func quantitiesFromForm(form url.Values) map[string]int {
	out := make(map[string]int)
	for key, vals := range form {
		id, ok := strings.CutPrefix(key, view.QuantityPrefix)
		if !ok || id == "" || len(vals) == 0 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(vals[0]))
		if err != nil {
			continue
		}
		out[id] += n
	}
	return out
}

func submitErrorCode(err error) string {
	switch {
	case errors.Is(err, service.ErrEmptySelection):
		return view.ErrCodeEmpty
	case errors.Is(err, service.ErrUnknownItem):
		return view.ErrCodeUnknown
	case errors.Is(err, service.ErrTransport):
		return view.ErrCodeTransport
	default:
		return view.ErrCodeStorage
	}
}
