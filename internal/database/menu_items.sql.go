package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listMenuItems = `-- name: ListMenuItems :many
SELECT id, name, category, sizes, prices, description, image_url, is_active, created_at, updated_at FROM menu_items
ORDER BY created_at, id
`

func (q *Queries) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, listMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		var i MenuItem
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Category,
			&i.Sizes,
			&i.Prices,
			&i.Description,
			&i.ImageUrl,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertMenuItem = `-- name: UpsertMenuItem :one
INSERT INTO menu_items (id, name, category, sizes, prices, description, image_url, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    category = EXCLUDED.category,
    sizes = EXCLUDED.sizes,
    prices = EXCLUDED.prices,
    description = EXCLUDED.description,
    image_url = EXCLUDED.image_url,
    is_active = EXCLUDED.is_active,
    updated_at = now()
RETURNING id, name, category, sizes, prices, description, image_url, is_active, created_at, updated_at
`

type UpsertMenuItemParams struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Sizes       []string    `json:"sizes"`
	Prices      []byte      `json:"prices"`
	Description pgtype.Text `json:"description"`
	ImageUrl    pgtype.Text `json:"image_url"`
	IsActive    bool        `json:"is_active"`
}

func (q *Queries) UpsertMenuItem(ctx context.Context, arg UpsertMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, upsertMenuItem,
		arg.ID,
		arg.Name,
		arg.Category,
		arg.Sizes,
		arg.Prices,
		arg.Description,
		arg.ImageUrl,
		arg.IsActive,
	)
	var i MenuItem
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Category,
		&i.Sizes,
		&i.Prices,
		&i.Description,
		&i.ImageUrl,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteMenuItem = `-- name: DeleteMenuItem :exec
DELETE FROM menu_items
WHERE id = $1
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteMenuItem, id)
	return err
}
