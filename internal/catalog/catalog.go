// Package catalog describes what can be ordered. The menu is either fetched
// from the ordering API or read from a fixed list shipped with the server.
package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Errors returned while loading a fixed menu.
var (
	ErrDuplicateItem = errors.New("duplicate menu item id")
	ErrMissingItemID = errors.New("menu item id is required")
	ErrNegativePrice = errors.New("menu item price must not be negative")
)

// MenuItem is one orderable item.
type MenuItem struct {
	ID          string          `json:"itemId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	MealType    string          `json:"mealType"`
}

// UnmarshalJSON accepts either "itemId" or "id" for the identifier.
func (m *MenuItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		ItemID      string          `json:"itemId"`
		ID          string          `json:"id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		MealType    string          `json:"mealType"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = raw.ItemID
	if m.ID == "" {
		m.ID = raw.ID
	}
	m.Name = raw.Name
	m.Description = raw.Description
	m.Price = raw.Price
	m.MealType = raw.MealType
	return nil
}

// Validate reports whether the item can be offered: it needs an id and a
// price that is not negative.
func (m MenuItem) Validate() error {
	if m.ID == "" {
		return ErrMissingItemID
	}
	if m.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// Catalog yields the current menu.
type Catalog interface {
	Menu(ctx context.Context) ([]MenuItem, error)
}

// Index maps item ids to items. Later duplicates are ignored.
func Index(items []MenuItem) map[string]MenuItem {
	idx := make(map[string]MenuItem, len(items))
	for _, it := range items {
		if _, exists := idx[it.ID]; !exists {
			idx[it.ID] = it
		}
	}
	return idx
}

//go:embed menu.yaml
var defaultMenu []byte

// Static serves a fixed menu.
type Static struct {
	items []MenuItem
}

// NewStatic wraps an in-memory list.
func NewStatic(items []MenuItem) *Static {
	return &Static{items: items}
}

func (s *Static) Menu(ctx context.Context) ([]MenuItem, error) {
	out := make([]MenuItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

// yamlItem keeps the price as text so decimals are parsed exactly.
type yamlItem struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	MealType    string `yaml:"mealType"`
}

// ParseYAML reads a menu document of the form `items: [{id, name, ...}]`.
func ParseYAML(data []byte) ([]MenuItem, error) {
	var doc struct {
		Items []yamlItem `yaml:"items"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}

	seen := make(map[string]bool, len(doc.Items))
	items := make([]MenuItem, 0, len(doc.Items))
	for i, it := range doc.Items {
		if it.ID == "" {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrMissingItemID)
		}
		if seen[it.ID] {
			return nil, fmt.Errorf("item[%d] %q: %w", i, it.ID, ErrDuplicateItem)
		}
		seen[it.ID] = true

		price, err := decimal.NewFromString(it.Price)
		if err != nil {
			return nil, fmt.Errorf("item[%d] %q: invalid price %q: %w", i, it.ID, it.Price, err)
		}
		item := MenuItem{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       price,
			MealType:    it.MealType,
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("item[%d] %q: %w", i, it.ID, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadStatic reads the menu from path, or the built-in menu when path is empty.
func LoadStatic(path string) (*Static, error) {
	data := defaultMenu
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read menu file: %w", err)
		}
		data = b
	}
	items, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}
	return NewStatic(items), nil
}
