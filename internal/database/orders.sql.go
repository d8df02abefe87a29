package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `-- name: CreateOrder :one
INSERT INTO orders (order_number, staff_id, subtotal, gst_amount, total, payment_method, status)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_number, status, subtotal, gst_amount, total, payment_method, staff_id, created_at, updated_at
`

type CreateOrderParams struct {
	OrderNumber   string         `json:"order_number"`
	StaffID       pgtype.UUID    `json:"staff_id"`
	Subtotal      pgtype.Numeric `json:"subtotal"`
	GstAmount     pgtype.Numeric `json:"gst_amount"`
	Total         pgtype.Numeric `json:"total"`
	PaymentMethod pgtype.Text    `json:"payment_method"`
	Status        string         `json:"status"`
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber,
		arg.StaffID,
		arg.Subtotal,
		arg.GstAmount,
		arg.Total,
		arg.PaymentMethod,
		arg.Status,
	)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OrderNumber,
		&i.Status,
		&i.Subtotal,
		&i.GstAmount,
		&i.Total,
		&i.PaymentMethod,
		&i.StaffID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

type CreateOrderItemsParams struct {
	OrderID      uuid.UUID      `json:"order_id"`
	MenuItemID   string         `json:"menu_item_id"`
	MenuItemName string         `json:"menu_item_name"`
	Size         string         `json:"size"`
	Quantity     int32          `json:"quantity"`
	UnitPrice    pgtype.Numeric `json:"unit_price"`
	TotalPrice   pgtype.Numeric `json:"total_price"`
	Extras       []string       `json:"extras"`
	ExtrasCost   pgtype.Numeric `json:"extras_cost"`
}

// iteratorForCreateOrderItems implements pgx.CopyFromSource.
type iteratorForCreateOrderItems struct {
	rows                 []CreateOrderItemsParams
	skippedFirstNextCall bool
}

func (r *iteratorForCreateOrderItems) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForCreateOrderItems) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].OrderID,
		r.rows[0].MenuItemID,
		r.rows[0].MenuItemName,
		r.rows[0].Size,
		r.rows[0].Quantity,
		r.rows[0].UnitPrice,
		r.rows[0].TotalPrice,
		r.rows[0].Extras,
		r.rows[0].ExtrasCost,
	}, nil
}

func (r iteratorForCreateOrderItems) Err() error {
	return nil
}

func (q *Queries) CreateOrderItems(ctx context.Context, arg []CreateOrderItemsParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"order_items"}, []string{"order_id", "menu_item_id", "menu_item_name", "size", "quantity", "unit_price", "total_price", "extras", "extras_cost"}, &iteratorForCreateOrderItems{rows: arg})
}
