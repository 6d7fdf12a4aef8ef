package cafeapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kiwari-pos/cafeteria/internal/cafeapi"
)

func TestMenuSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/prod/menu" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"itemId":"A","name":"Latte","description":"milk","price":4.2,"mealType":"drink"},{"id":"B","name":"Tea","price":"1.5"}]`))
	}))
	defer srv.Close()

	c := cafeapi.NewClient(srv.URL+"/prod/", srv.Client())
	items, err := c.Menu(context.Background())
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "A" || items[1].ID != "B" {
		t.Errorf("ids: %q %q", items[0].ID, items[1].ID)
	}
	if items[0].Price.String() != "4.2" {
		t.Errorf("price: %s", items[0].Price)
	}
}

func TestMenuSkipsUnusableItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"itemId":"A","name":"Latte","price":4.2},{"name":"No id","price":1},{"itemId":"C","name":"Refund","price":-3},{"itemId":"A","name":"Again","price":9}]`))
	}))
	defer srv.Close()

	items, err := cafeapi.NewClient(srv.URL, srv.Client()).Menu(context.Background())
	if err != nil {
		t.Fatalf("menu: %v", err)
	}
	if len(items) != 1 || items[0].ID != "A" || items[0].Name != "Latte" {
		t.Fatalf("expected only the first Latte, got %+v", items)
	}
}

func TestMenuNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := cafeapi.NewClient(srv.URL, srv.Client()).Menu(context.Background())
	var se *cafeapi.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusServiceUnavailable {
		t.Errorf("code: got %d", se.Code)
	}
}

func TestMenuNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := cafeapi.NewClient(url, nil).Menu(context.Background()); err == nil {
		t.Fatal("expected error from closed server")
	}
}

func TestMenuMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"}`))
	}))
	defer srv.Close()

	if _, err := cafeapi.NewClient(srv.URL, srv.Client()).Menu(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCreateOrderSendsLinesAndBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer id-token" {
			t.Errorf("authorization: got %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("content type: got %q", got)
		}

		var body map[string][]map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		items := body["items"]
		if len(items) != 1 || items[0]["itemId"] != "A" || items[0]["qty"] != float64(3) {
			t.Errorf("unexpected items: %v", items)
		}
		if len(items[0]) != 2 {
			t.Errorf("only itemId and qty may be sent, got %v", items[0])
		}

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"OrderId":"srv-123","message":"created"}`))
	}))
	defer srv.Close()

	ctx := cafeapi.WithBearer(context.Background(), "id-token")
	resp, err := cafeapi.NewClient(srv.URL, srv.Client()).CreateOrder(ctx, []cafeapi.OrderLine{{ItemID: "A", Qty: 3}})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if resp.OrderID != "srv-123" {
		t.Errorf("order id: got %q", resp.OrderID)
	}
	if string(resp.Extra["message"]) != `"created"` || len(resp.Extra) != 1 {
		t.Errorf("extra: got %v", resp.Extra)
	}
}

func TestCreateOrderWithoutBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("authorization should be absent, got %q", got)
		}
		w.Write([]byte(`{"OrderId":"x"}`))
	}))
	defer srv.Close()

	ctx := cafeapi.WithBearer(context.Background(), "")
	if _, err := cafeapi.NewClient(srv.URL, srv.Client()).CreateOrder(ctx, []cafeapi.OrderLine{{ItemID: "A", Qty: 1}}); err != nil {
		t.Fatal(err)
	}
}

func TestCreateOrderErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Item sold out"}`, "HTTP error! status: 400: Item sold out"},
		{"error field", `{"error":"bad item"}`, "HTTP error! status: 400: bad item"},
		{"no body", ``, "HTTP error! status: 400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := cafeapi.NewClient(srv.URL, srv.Client()).CreateOrder(context.Background(), []cafeapi.OrderLine{{ItemID: "A", Qty: 1}})
			var se *cafeapi.StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected StatusError, got %v", err)
			}
			if se.Error() != tt.want {
				t.Errorf("message: got %q, want %q", se.Error(), tt.want)
			}
		})
	}
}

func TestCreateOrderMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	_, err := cafeapi.NewClient(srv.URL, srv.Client()).CreateOrder(context.Background(), []cafeapi.OrderLine{{ItemID: "A", Qty: 1}})
	if !errors.Is(err, cafeapi.ErrMissingOrderID) {
		t.Fatalf("expected ErrMissingOrderID, got %v", err)
	}
}
