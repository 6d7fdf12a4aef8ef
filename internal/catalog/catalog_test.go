package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMenuItemUnmarshalIDVariants(t *testing.T) {
	var items []MenuItem
	raw := `[
		{"itemId":"a","name":"A","description":"d","price":4.2,"mealType":"lunch"},
		{"id":"b","name":"B","price":"1.10"}
	]`
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if items[0].ID != "a" || items[1].ID != "b" {
		t.Errorf("ids: got %q, %q", items[0].ID, items[1].ID)
	}
	if !items[0].Price.Equal(decimal.RequireFromString("4.2")) {
		t.Errorf("numeric price: got %s", items[0].Price)
	}
	if !items[1].Price.Equal(decimal.RequireFromString("1.10")) {
		t.Errorf("string price: got %s", items[1].Price)
	}
	if items[0].MealType != "lunch" {
		t.Errorf("meal type: got %q", items[0].MealType)
	}
}

func TestDefaultMenuLoads(t *testing.T) {
	s, err := LoadStatic("")
	if err != nil {
		t.Fatalf("load default menu: %v", err)
	}
	items, err := s.Menu(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) == 0 {
		t.Fatal("default menu is empty")
	}
	idx := Index(items)
	if len(idx) != len(items) {
		t.Errorf("default menu has duplicate ids")
	}
	latte, ok := idx["latte"]
	if !ok {
		t.Fatal("latte missing from default menu")
	}
	if latte.Price.String() != "4.2" {
		t.Errorf("latte price: got %s", latte.Price)
	}
}

func TestLoadStaticFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	doc := "items:\n  - id: A\n    name: Tea\n    price: \"4.20\"\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadStatic(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	items, _ := s.Menu(context.Background())
	if len(items) != 1 || items[0].ID != "A" || items[0].Name != "Tea" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestLoadStaticMissingFile(t *testing.T) {
	if _, err := LoadStatic(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"missing id", "items:\n  - name: x\n    price: \"1\"\n", ErrMissingItemID},
		{"duplicate", "items:\n  - id: a\n    price: \"1\"\n  - id: a\n    price: \"2\"\n", ErrDuplicateItem},
		{"negative", "items:\n  - id: a\n    price: \"-1\"\n", ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := ParseYAML([]byte("items:\n  - id: a\n    price: abc\n")); err == nil {
		t.Error("expected error for non-numeric price")
	}
	if _, err := ParseYAML([]byte("items: [")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestMenuItemValidate(t *testing.T) {
	tests := []struct {
		name string
		item MenuItem
		want error
	}{
		{"ok", MenuItem{ID: "a", Price: decimal.RequireFromString("1.50")}, nil},
		{"free", MenuItem{ID: "a"}, nil},
		{"missing id", MenuItem{Price: decimal.RequireFromString("1")}, ErrMissingItemID},
		{"negative", MenuItem{ID: "a", Price: decimal.RequireFromString("-0.01")}, ErrNegativePrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.item.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestStaticMenuReturnsCopy(t *testing.T) {
	s := NewStatic([]MenuItem{{ID: "a", Name: "A"}})
	items, _ := s.Menu(context.Background())
	items[0].Name = "changed"

	again, _ := s.Menu(context.Background())
	if again[0].Name != "A" {
		t.Fatal("static menu mutated through returned slice")
	}
}

func TestIndexKeepsFirstDuplicate(t *testing.T) {
	idx := Index([]MenuItem{{ID: "a", Name: "first"}, {ID: "a", Name: "second"}})
	if idx["a"].Name != "first" {
		t.Errorf("got %q", idx["a"].Name)
	}
}
