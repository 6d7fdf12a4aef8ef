// Package cafeapi is the client for the remote cafeteria ordering API.
package cafeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kiwari-pos/cafeteria/internal/catalog"
	"github.com/rs/zerolog"
)

// ErrMissingOrderID is returned when a successful create response carries no
// order identifier.
var ErrMissingOrderID = errors.New("response has no OrderId")

// StatusError is a non-2xx response from the API.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP error! status: %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type bearerKey struct{}

// WithBearer attaches an identity token to ctx; requests made with that
// context carry it as an Authorization header.
func WithBearer(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) string {
	token, _ := ctx.Value(bearerKey{}).(string)
	return token
}

// Client talks to {base}/menu and {base}/orders.
type Client struct {
	base string
	http Doer
}

// NewClient creates a client. A nil doer gets a pooled *http.Client with no
// client-side timeout; requests are bounded by their context only.
func NewClient(base string, doer Doer) *Client {
	if doer == nil {
		doer = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		}
	}
	return &Client{base: strings.TrimRight(base, "/"), http: doer}
}

// Menu fetches GET {base}/menu. Satisfies catalog.Catalog.
func (c *Client) Menu(ctx context.Context) ([]catalog.MenuItem, error) {
	var items []catalog.MenuItem
	if err := c.do(ctx, http.MethodGet, "/menu", nil, &items); err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	return usableItems(ctx, items), nil
}

// usableItems drops items that fail validation or repeat an earlier id, so
// one bad entry does not take the whole menu down.
func usableItems(ctx context.Context, items []catalog.MenuItem) []catalog.MenuItem {
	out := make([]catalog.MenuItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		err := it.Validate()
		if err == nil && seen[it.ID] {
			err = catalog.ErrDuplicateItem
		}
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Int("index", i).Str("item_id", it.ID).Msg("skipping menu item")
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

// OrderLine is the only per-item data the API accepts.
type OrderLine struct {
	ItemID string `json:"itemId"`
	Qty    int    `json:"qty"`
}

type createOrderRequest struct {
	Items []OrderLine `json:"items"`
}

// CreateOrderResponse is the API's reply to POST /orders. Fields other than
// OrderId are kept raw in Extra.
type CreateOrderResponse struct {
	OrderID string
	Extra   map[string]json.RawMessage
}

func (r *CreateOrderResponse) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	r.OrderID, r.Extra = "", nil
	for k, v := range fields {
		if strings.EqualFold(k, "OrderId") {
			if err := json.Unmarshal(v, &r.OrderID); err != nil {
				return fmt.Errorf("OrderId: %w", err)
			}
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[k] = v
	}
	return nil
}

// CreateOrder posts the selection and returns the server-issued id.
func (c *Client) CreateOrder(ctx context.Context, lines []OrderLine) (*CreateOrderResponse, error) {
	var resp CreateOrderResponse
	if err := c.do(ctx, http.MethodPost, "/orders", createOrderRequest{Items: lines}, &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if resp.OrderID == "" {
		return nil, fmt.Errorf("create order: %w", ErrMissingOrderID)
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := bearerFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// errorMessage pulls "message" or "error" out of a JSON error body.
func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
