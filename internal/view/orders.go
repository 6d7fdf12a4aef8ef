package view

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kiwari-pos/cafeteria/internal/order"
)

// OrderLine is one line item on an order card.
type OrderLine struct {
	Name     string
	Quantity int
	Price    string
}

// OrderCard is the view of one stored order.
type OrderCard struct {
	ID         string
	ShortID    string
	Status     string
	StatusKey  string
	Lines      []OrderLine
	Total      string
	AdvanceURL string
}

// OrdersPage is the data of the orders page.
type OrdersPage struct {
	Header Header
	Cards  []OrderCard
	Empty  bool
	Alert  string
}

// BuildOrdersPage wraps the cards of orders; no orders shows the empty state.
func BuildOrdersPage(orders []order.Order) OrdersPage {
	cards := BuildOrderCards(orders)
	return OrdersPage{Cards: cards, Empty: len(cards) == 0}
}

// BuildOrderCards produces one card per order, in store order.
func BuildOrderCards(orders []order.Order) []OrderCard {
	cards := make([]OrderCard, 0, len(orders))
	for _, o := range orders {
		status := string(o.Status.Normalize())
		lines := make([]OrderLine, len(o.Items))
		for i, it := range o.Items {
			name := it.Name
			if name == "" {
				name = it.ItemID
			}
			lines[i] = OrderLine{Name: name, Quantity: it.Quantity, Price: formatMoney(it.Subtotal)}
		}
		cards = append(cards, OrderCard{
			ID:         o.ID,
			ShortID:    ShortID(o.ID),
			Status:     status,
			StatusKey:  strings.ToLower(status),
			Lines:      lines,
			Total:      formatMoney(o.Total),
			AdvanceURL: fmt.Sprintf("/orders/%s/advance", url.PathEscape(o.ID)),
		})
	}
	return cards
}

// ShortID is the first 8 characters of id followed by "...", or "N/A".
func ShortID(id string) string {
	if id == "" {
		return "N/A"
	}
	r := []rune(id)
	if len(r) > 8 {
		r = r[:8]
	}
	return string(r) + "..."
}
