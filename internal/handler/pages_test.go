package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/auth"
	"github.com/kiwari-pos/cafeteria/internal/catalog"
	"github.com/kiwari-pos/cafeteria/internal/handler"
	"github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/order"
	"github.com/kiwari-pos/cafeteria/internal/service"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/shopspring/decimal"
)

// --- Mock OrderServicer ---

type mockOrderService struct {
	menuFn          func(ctx context.Context) ([]catalog.MenuItem, error)
	placeOrderFn    func(ctx context.Context, req service.PlaceOrderRequest) (order.Order, error)
	listOrdersFn    func(ctx context.Context, profileID uuid.UUID) ([]order.Order, error)
	getOrderFn      func(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error)
	advanceStatusFn func(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error)
}

func (m *mockOrderService) Menu(ctx context.Context) ([]catalog.MenuItem, error) {
	if m.menuFn != nil {
		return m.menuFn(ctx)
	}
	return []catalog.MenuItem{}, nil
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, req service.PlaceOrderRequest) (order.Order, error) {
	return m.placeOrderFn(ctx, req)
}

func (m *mockOrderService) ListOrders(ctx context.Context, profileID uuid.UUID) ([]order.Order, error) {
	if m.listOrdersFn != nil {
		return m.listOrdersFn(ctx, profileID)
	}
	return nil, nil
}

func (m *mockOrderService) GetOrder(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error) {
	if m.getOrderFn != nil {
		return m.getOrderFn(ctx, profileID, id)
	}
	return order.Order{}, false, nil
}

func (m *mockOrderService) AdvanceStatus(ctx context.Context, profileID uuid.UUID, id string) (order.Order, bool, error) {
	if m.advanceStatusFn != nil {
		return m.advanceStatusFn(ctx, profileID, id)
	}
	return order.Order{}, false, nil
}

// --- Test helpers ---

var testProfile = uuid.MustParse("7d444840-9dc0-11d1-b245-5ffdce74fad2")

func withProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(middleware.WithProfile(r.Context(), testProfile)))
	})
}

func mustViews(t *testing.T) *view.Renderer {
	t.Helper()
	v, err := view.New()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	return v
}

func setupPageRouter(t *testing.T, svc *mockOrderService) *chi.Mux {
	t.Helper()
	h := handler.NewPageHandler(svc, mustViews(t), false)
	r := chi.NewRouter()
	r.Use(withProfile)
	h.RegisterRoutes(r)
	return r
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func get(router http.Handler, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", path, nil))
	return rr
}

func latteMenu() []catalog.MenuItem {
	return []catalog.MenuItem{{ID: "latte", Name: "Latte", Description: "Espresso and milk", Price: decimal.RequireFromString("4.20")}}
}

// =====================
// Menu page
// =====================

func TestMenuPage_RendersItems(t *testing.T) {
	svc := &mockOrderService{menuFn: func(ctx context.Context) ([]catalog.MenuItem, error) {
		return latteMenu(), nil
	}}
	rr := get(setupPageRouter(t, svc), "/")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Latte", "$4.20", `name="qty.latte"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestMenuPage_LoadFailure(t *testing.T) {
	svc := &mockOrderService{menuFn: func(ctx context.Context) ([]catalog.MenuItem, error) {
		return nil, errors.New("HTTP error! status: 503")
	}}
	rr := get(setupPageRouter(t, svc), "/?error=empty")

	body := rr.Body.String()
	if !strings.Contains(body, view.MsgMenuPlaceholder) || !strings.Contains(body, view.MsgMenuAlert) {
		t.Error("expected placeholder and alert")
	}
	if strings.Contains(body, view.MsgEmptySelection) {
		t.Error("menu failure alert should win over the redirect error")
	}
}

func TestMenuPage_Notices(t *testing.T) {
	svc := &mockOrderService{}
	router := setupPageRouter(t, svc)

	if body := get(router, "/?placed=srv-42").Body.String(); !strings.Contains(body, "Order placed! Order ID: srv-42") {
		t.Error("placed notice missing")
	}
	if body := get(router, "/?error=empty").Body.String(); !strings.Contains(body, "Please select at least one item.") {
		t.Error("empty selection alert missing")
	}
	if body := get(router, "/?error=transport").Body.String(); !strings.Contains(body, view.MsgOrderFailed) {
		t.Error("transport alert missing")
	}
}

// =====================
// Place order form
// =====================

func TestPlaceOrderForm_Success(t *testing.T) {
	var captured service.PlaceOrderRequest
	svc := &mockOrderService{placeOrderFn: func(ctx context.Context, req service.PlaceOrderRequest) (order.Order, error) {
		captured = req
		return order.Order{ID: "abc 123"}, nil
	}}

	form := url.Values{}
	form.Set("qty.latte", "3")
	form.Set("qty.wrap", "0")
	form.Set("qty.muffin", "")
	form.Set("qty.bagel", "two")
	form.Set("note", "ignored")
	rr := postForm(setupPageRouter(t, svc), "/orders", form)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/?placed=abc+123" {
		t.Errorf("location: got %q", loc)
	}
	if captured.ProfileID != testProfile {
		t.Errorf("profile: got %v", captured.ProfileID)
	}
	if len(captured.Quantities) != 2 || captured.Quantities["latte"] != 3 || captured.Quantities["wrap"] != 0 {
		t.Errorf("quantities: got %v", captured.Quantities)
	}
}

func TestPlaceOrderForm_ErrorRedirects(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{service.ErrEmptySelection, view.ErrCodeEmpty},
		{fmt.Errorf("%w: %q", service.ErrUnknownItem, "caviar"), view.ErrCodeUnknown},
		{fmt.Errorf("%w: boom", service.ErrTransport), view.ErrCodeTransport},
		{errors.New("disk full"), view.ErrCodeStorage},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			svc := &mockOrderService{placeOrderFn: func(ctx context.Context, req service.PlaceOrderRequest) (order.Order, error) {
				return order.Order{}, tt.err
			}}
			rr := postForm(setupPageRouter(t, svc), "/orders", url.Values{"qty.latte": {"1"}})
			if rr.Code != http.StatusSeeOther {
				t.Fatalf("status: got %d, want 303", rr.Code)
			}
			if loc := rr.Header().Get("Location"); loc != "/?error="+tt.code {
				t.Errorf("location: got %q", loc)
			}
		})
	}
}

// =====================
// Header
// =====================

func TestHeader_ShowsSignedInEmail(t *testing.T) {
	h := handler.NewPageHandler(&mockOrderService{}, mustViews(t), true)
	r := chi.NewRouter()
	r.Use(withProfile)
	r.Use(middleware.Session(&fixedSession{sess: auth.Session{IDToken: idTokenFor("ana@example.com")}}))
	h.RegisterRoutes(r)

	body := get(r, "/").Body.String()
	if !strings.Contains(body, "Logged in as ana@example.com") {
		t.Error("expected signed-in header with email")
	}
}
