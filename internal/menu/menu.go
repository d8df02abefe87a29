package menu

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors returned by MenuItem.Validate and the catalog.
var (
	ErrNameRequired     = errors.New("name is required")
	ErrCategoryRequired = errors.New("category is required")
	ErrSizesRequired    = errors.New("at least one size is required")
	ErrDuplicateSize    = errors.New("duplicate size")
	ErrMissingPrice     = errors.New("every size needs a price")
	ErrUnknownPriceKey  = errors.New("price given for a size that is not offered")
	ErrNegativePrice    = errors.New("price must be >= 0")
	ErrItemNotFound     = errors.New("menu item not found")
	ErrDuplicateID      = errors.New("menu item id already exists")
)

// MenuItem is an orderable product. Prices are keyed by size label and the key
// set always equals Sizes.
type MenuItem struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Category    string                     `json:"category"`
	Sizes       []string                   `json:"sizes"`
	Prices      map[string]decimal.Decimal `json:"prices"`
	Description string                     `json:"description,omitempty"`
	ImageURL    string                     `json:"image_url,omitempty"`
	IsActive    bool                       `json:"is_active"`
}

// Validate checks the required fields and the sizes/prices correspondence.
func (m MenuItem) Validate() error {
	if m.Name == "" {
		return ErrNameRequired
	}
	if m.Category == "" {
		return ErrCategoryRequired
	}
	if len(m.Sizes) == 0 {
		return ErrSizesRequired
	}
	seen := make(map[string]bool, len(m.Sizes))
	for _, s := range m.Sizes {
		if seen[s] {
			return fmt.Errorf("%w: %q", ErrDuplicateSize, s)
		}
		seen[s] = true
		p, ok := m.Prices[s]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingPrice, s)
		}
		if p.IsNegative() {
			return fmt.Errorf("%w: %q", ErrNegativePrice, s)
		}
	}
	for k := range m.Prices {
		if !seen[k] {
			return fmt.Errorf("%w: %q", ErrUnknownPriceKey, k)
		}
	}
	return nil
}

// PriceFor returns the unit price for a size.
func (m MenuItem) PriceFor(size string) (decimal.Decimal, bool) {
	p, ok := m.Prices[size]
	return p, ok
}

// Clone returns a deep copy so callers can hold it past later catalog edits.
func (m MenuItem) Clone() MenuItem {
	c := m
	c.Sizes = append([]string(nil), m.Sizes...)
	c.Prices = make(map[string]decimal.Decimal, len(m.Prices))
	for k, v := range m.Prices {
		c.Prices[k] = v
	}
	return c
}

// Patch is a partial update. Nil fields are left unchanged; Sizes and Prices
// replace the existing values when non-nil.
type Patch struct {
	Name        *string
	Category    *string
	Sizes       []string
	Prices      map[string]decimal.Decimal
	Description *string
	ImageURL    *string
	IsActive    *bool
}

func (p Patch) apply(m MenuItem) MenuItem {
	m = m.Clone()
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Sizes != nil {
		m.Sizes = append([]string(nil), p.Sizes...)
	}
	if p.Prices != nil {
		m.Prices = make(map[string]decimal.Decimal, len(p.Prices))
		for k, v := range p.Prices {
			m.Prices[k] = v
		}
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	if p.IsActive != nil {
		m.IsActive = *p.IsActive
	}
	return m
}
