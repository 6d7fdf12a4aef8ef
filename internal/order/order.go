package order

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/kiwari-pos/cafeteria/internal/enum"
	"github.com/shopspring/decimal"
)

// Status is one step of the order lifecycle.
type Status string

const (
	StatusPlaced    Status = enum.OrderStatusPlaced
	StatusPreparing Status = enum.OrderStatusPreparing
	StatusReady     Status = enum.OrderStatusReady
	StatusCollected Status = enum.OrderStatusCollected
)

// Lifecycle lists every status in the only order an order may move through.
var Lifecycle = []Status{StatusPlaced, StatusPreparing, StatusReady, StatusCollected}

// Valid reports whether s is part of the lifecycle.
func (s Status) Valid() bool {
	for _, st := range Lifecycle {
		if st == s {
			return true
		}
	}
	return false
}

// Normalize maps an empty or unrecognized status to Placed.
func (s Status) Normalize() Status {
	if s.Valid() {
		return s
	}
	return StatusPlaced
}

// Terminal reports whether s is the last lifecycle step.
func (s Status) Terminal() bool {
	return s == Lifecycle[len(Lifecycle)-1]
}

// Next returns the following status. Collected stays Collected.
func (s Status) Next() Status {
	s = s.Normalize()
	for i, st := range Lifecycle {
		if st == s && i+1 < len(Lifecycle) {
			return Lifecycle[i+1]
		}
	}
	return s
}

// LineItem is one menu item on an order. Name and UnitPrice are copied from
// the menu at submission so old orders do not change when the menu does.
type LineItem struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"price"`
}

// NewLineItem computes the subtotal from the unit price and quantity.
func NewLineItem(itemID, name string, unitPrice decimal.Decimal, quantity int) LineItem {
	return LineItem{
		ItemID:    itemID,
		Name:      name,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Subtotal:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// Order is the persisted record of a submission. The JSON field names match
// what the browser client kept in localStorage.
type Order struct {
	ID        string          `json:"OrderId"`
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"totalPrice"`
	Status    Status          `json:"status"`
	CreatedAt time.Time       `json:"createdAt,omitzero"`

	// Extra holds fields of the ordering API's reply that have no field
	// above. They are stored alongside the known fields.
	Extra map[string]json.RawMessage `json:"-"`
}

// knownFields are the JSON names Order decodes itself.
var knownFields = []string{"OrderId", "items", "totalPrice", "status", "createdAt"}

// orderJSON has Order's fields without its methods.
type orderJSON Order

// MarshalJSON writes the known fields and any extras. Known fields win over
// an extra of the same name.
func (o Order) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(orderJSON(o))
	if err != nil || len(o.Extra) == 0 {
		return base, err
	}
	var known map[string]json.RawMessage
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	fields := make(map[string]json.RawMessage, len(o.Extra)+len(known))
	for k, v := range o.Extra {
		if !isKnownField(k) {
			fields[k] = v
		}
	}
	for k, v := range known {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// UnmarshalJSON reads the known fields and keeps the rest in Extra.
func (o *Order) UnmarshalJSON(data []byte) error {
	var base orderJSON
	if err := json.Unmarshal(data, &base); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	*o = Order(base)
	o.Extra = nil
	for k, v := range all {
		if isKnownField(k) {
			continue
		}
		if o.Extra == nil {
			o.Extra = make(map[string]json.RawMessage)
		}
		o.Extra[k] = v
	}
	return nil
}

// isKnownField matches case-insensitively, as encoding/json does.
func isKnownField(name string) bool {
	for _, f := range knownFields {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

// New builds an order in the initial status with its total computed from the
// line items.
func New(id string, items []LineItem, createdAt time.Time) Order {
	return Order{
		ID:        id,
		Items:     items,
		Total:     Total(items),
		Status:    StatusPlaced,
		CreatedAt: createdAt,
	}
}

// Total sums the line subtotals, rounded to 2 decimal places.
func Total(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Subtotal)
	}
	return sum.Round(2)
}
