// Package view turns menu items and stored orders into the server-rendered
// pages of the cafeteria client.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Page names accepted by Render.
const (
	PageMenu     = "menu"
	PageOrders   = "orders"
	PageCallback = "callback"
)

// User-facing messages.
const (
	MsgEmptySelection  = "Please select at least one item."
	MsgOrderFailed     = "Failed to place order. Please try again."
	MsgUnknownItem     = "Some selected items are no longer on the menu. Please review your order."
	MsgSaveFailed      = "Your order was placed but could not be saved. Please try again."
	MsgMenuPlaceholder = "Failed to load menu. Please try again later."
	MsgMenuAlert       = "Failed to load menu. Please check your connection."
	MsgNoMenuItems     = "No menu items available."
	MsgSignInFailed    = "Sign-in failed. Please try again."
)

// Error codes carried in the ?error= query parameter after a redirect.
const (
	ErrCodeEmpty     = "empty"
	ErrCodeUnknown   = "unknown"
	ErrCodeTransport = "transport"
	ErrCodeStorage   = "storage"
	ErrCodeSignIn    = "signin"
)

var errorMessages = map[string]string{
	ErrCodeEmpty:     MsgEmptySelection,
	ErrCodeUnknown:   MsgUnknownItem,
	ErrCodeTransport: MsgOrderFailed,
	ErrCodeStorage:   MsgSaveFailed,
	ErrCodeSignIn:    MsgSignInFailed,
}

// ErrorMessage maps an error code to its message. Unknown codes yield "".
func ErrorMessage(code string) string {
	return errorMessages[code]
}

// PlacedNotice is shown on the menu page after a successful submission.
func PlacedNotice(orderID string) string {
	return "Order placed! Order ID: " + orderID
}

// Header is the sign-in state shown at the top of every page.
type Header struct {
	AuthEnabled bool
	LoggedIn    bool
	Email       string
}

// CallbackPage relays the sign-in redirect fragment back to the server.
type CallbackPage struct {
	Header Header
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageMenu, PageOrders, PageCallback} {
		t, err := template.New("layout.gohtml").ParseFS(templateFS,
			"templates/layout.gohtml",
			"templates/"+page+".gohtml",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render writes page with data. Output is buffered so a template error never
// leaves a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func formatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
