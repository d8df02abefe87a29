package menu

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultMenu(t *testing.T) {
	f := Default()
	if len(f.Items) == 0 {
		t.Fatal("default menu is empty")
	}
	if len(f.Extras) != 3 {
		t.Errorf("expected 3 extras, got %v", f.Extras)
	}

	first := f.Items[0]
	if first.ID != "1" || !first.IsActive {
		t.Errorf("unexpected first item %+v", first)
	}
	if p, ok := first.PriceFor("Regular"); !ok || !p.Equal(dec("795")) {
		t.Errorf("expected Regular 795, got %s", p)
	}
}

func TestDecode(t *testing.T) {
	src := `
extras: ["Oat Milk"]
items:
  - id: "a"
    name: "Chai"
    category: "Tea"
    sizes: ["Regular"]
    prices: {"Regular": 499.5}
  - id: "b"
    name: "Matcha"
    category: "Tea"
    sizes: ["Regular"]
    prices: {"Regular": 650}
    is_active: false
`
	f, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(f.Items) != 2 || f.Extras[0] != "Oat Milk" {
		t.Fatalf("unexpected file %+v", f)
	}
	if !f.Items[0].IsActive || f.Items[1].IsActive {
		t.Error("is_active should default to true and honour false")
	}
	if !f.Items[0].Prices["Regular"].Equal(dec("499.5")) {
		t.Errorf("price: got %s", f.Items[0].Prices["Regular"])
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"duplicate id", `
items:
  - {id: "a", name: "X", category: "Y", sizes: ["R"], prices: {"R": 1}}
  - {id: "a", name: "Z", category: "Y", sizes: ["R"], prices: {"R": 1}}
`, ErrDuplicateID},
		{"invalid item", `
items:
  - {id: "a", name: "X", category: "Y", sizes: ["R"], prices: {}}
`, ErrMissingPrice},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tc.src))
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := Decode(strings.NewReader("items:\n  - {name: \"X\"}\n")); err == nil {
		t.Error("expected error for missing id")
	}
	if _, err := Decode(strings.NewReader("items: [")); err == nil {
		t.Error("expected YAML syntax error")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.yaml")
	src := "items:\n  - {id: \"x\", name: \"X\", category: \"Y\", sizes: [\"R\"], prices: {\"R\": 5}}\n"
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(f.Items) != 1 || f.Items[0].ID != "x" {
		t.Errorf("unexpected file %+v", f)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
