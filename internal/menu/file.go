package menu

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed default_menu.yaml
var defaultMenu []byte

// File is a menu catalog as stored on disk.
type File struct {
	Extras []string
	Items  []MenuItem
}

type yamlFile struct {
	Extras []string   `yaml:"extras"`
	Items  []yamlItem `yaml:"items"`
}

type yamlItem struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Category    string             `yaml:"category"`
	Sizes       []string           `yaml:"sizes"`
	Prices      map[string]float64 `yaml:"prices"`
	Description string             `yaml:"description"`
	ImageURL    string             `yaml:"image_url"`
	IsActive    *bool              `yaml:"is_active"`
}

// Decode parses a YAML menu and validates every item.
func Decode(r io.Reader) (File, error) {
	var raw yamlFile
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return File{}, fmt.Errorf("decode menu yaml: %w", err)
	}

	f := File{Extras: raw.Extras}
	seen := make(map[string]bool, len(raw.Items))
	for i, it := range raw.Items {
		item := MenuItem{
			ID:          it.ID,
			Name:        it.Name,
			Category:    it.Category,
			Sizes:       it.Sizes,
			Prices:      make(map[string]decimal.Decimal, len(it.Prices)),
			Description: it.Description,
			ImageURL:    it.ImageURL,
			IsActive:    it.IsActive == nil || *it.IsActive,
		}
		for k, v := range it.Prices {
			item.Prices[k] = decimal.NewFromFloat(v)
		}
		if item.ID == "" {
			return File{}, fmt.Errorf("items[%d]: id is required", i)
		}
		if seen[item.ID] {
			return File{}, fmt.Errorf("items[%d]: %w: %s", i, ErrDuplicateID, item.ID)
		}
		seen[item.ID] = true
		if err := item.Validate(); err != nil {
			return File{}, fmt.Errorf("items[%d] (%s): %w", i, item.ID, err)
		}
		f.Items = append(f.Items, item)
	}
	return f, nil
}

// LoadFile reads a YAML menu from path.
func LoadFile(path string) (File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("open menu file: %w", err)
	}
	defer fh.Close()
	return Decode(fh)
}

// Default returns the embedded café menu.
func Default() File {
	f, err := Decode(bytes.NewReader(defaultMenu))
	if err != nil {
		panic(fmt.Sprintf("embedded menu is invalid: %v", err))
	}
	return f
}
