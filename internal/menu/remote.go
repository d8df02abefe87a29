package menu

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// RemoteStore defines the database methods needed to sync the menu.
// Satisfied by *database.Queries; narrow interface for testability.
type RemoteStore interface {
	ListMenuItems(ctx context.Context) ([]database.MenuItem, error)
	UpsertMenuItem(ctx context.Context, arg database.UpsertMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id string) error
}

// Remote adapts the menu_items table to the catalog's Mirror.
type Remote struct {
	store RemoteStore
}

// NewRemote creates a Remote backed by store.
func NewRemote(store RemoteStore) *Remote {
	return &Remote{store: store}
}

// Load reads every menu_items row. Rows that fail validation are skipped and
// reported in the returned skipped count.
func (r *Remote) Load(ctx context.Context) (items []MenuItem, skipped int, err error) {
	rows, err := r.store.ListMenuItems(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list menu items: %w", err)
	}
	for _, row := range rows {
		item, err := fromRow(row)
		if err != nil || item.Validate() != nil {
			skipped++
			continue
		}
		items = append(items, item)
	}
	return items, skipped, nil
}

// SaveMenuItem upserts the item.
func (r *Remote) SaveMenuItem(ctx context.Context, item MenuItem) error {
	prices, err := json.Marshal(pricesToFloat(item.Prices))
	if err != nil {
		return fmt.Errorf("encode prices: %w", err)
	}
	_, err = r.store.UpsertMenuItem(ctx, database.UpsertMenuItemParams{
		ID:          item.ID,
		Name:        item.Name,
		Category:    item.Category,
		Sizes:       item.Sizes,
		Prices:      prices,
		Description: optionalText(item.Description),
		ImageUrl:    optionalText(item.ImageURL),
		IsActive:    item.IsActive,
	})
	if err != nil {
		return fmt.Errorf("upsert menu item: %w", err)
	}
	return nil
}

// DeleteMenuItem removes the row for id.
func (r *Remote) DeleteMenuItem(ctx context.Context, id string) error {
	if err := r.store.DeleteMenuItem(ctx, id); err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}

func fromRow(row database.MenuItem) (MenuItem, error) {
	var raw map[string]decimal.Decimal
	if err := json.Unmarshal(row.Prices, &raw); err != nil {
		return MenuItem{}, fmt.Errorf("decode prices for %s: %w", row.ID, err)
	}
	item := MenuItem{
		ID:       row.ID,
		Name:     row.Name,
		Category: row.Category,
		Sizes:    row.Sizes,
		Prices:   raw,
		IsActive: row.IsActive,
	}
	if row.Description.Valid {
		item.Description = row.Description.String
	}
	if row.ImageUrl.Valid {
		item.ImageURL = row.ImageUrl.String
	}
	return item, nil
}

// pricesToFloat keeps the jsonb column holding plain numbers rather than the
// quoted strings decimal marshals to.
func pricesToFloat(prices map[string]decimal.Decimal) map[string]float64 {
	out := make(map[string]float64, len(prices))
	for k, v := range prices {
		out[k] = v.InexactFloat64()
	}
	return out
}

func optionalText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
