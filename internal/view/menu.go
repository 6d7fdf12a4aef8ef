package view

import "github.com/kiwari-pos/cafeteria/internal/catalog"

// QuantityPrefix prefixes the form field of each menu item's quantity.
const QuantityPrefix = "qty."

// MenuCard is one orderable item on the menu page.
type MenuCard struct {
	ID          string
	Name        string
	Description string
	Price       string
	InputName   string
}

// MenuPage is the data of the menu page.
type MenuPage struct {
	Header Header
	Cards  []MenuCard
	Empty  bool
	// Placeholder replaces the menu when it could not be loaded.
	Placeholder string
	Alert       string
	Notice      string
}

// BuildMenuPage renders items, or the failure state when loadErr is set.
func BuildMenuPage(items []catalog.MenuItem, loadErr error) MenuPage {
	if loadErr != nil {
		return MenuPage{Placeholder: MsgMenuPlaceholder, Alert: MsgMenuAlert}
	}
	if len(items) == 0 {
		return MenuPage{Empty: true}
	}
	cards := make([]MenuCard, len(items))
	for i, it := range items {
		cards[i] = MenuCard{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       formatMoney(it.Price),
			InputName:   QuantityPrefix + it.ID,
		}
	}
	return MenuPage{Cards: cards}
}
