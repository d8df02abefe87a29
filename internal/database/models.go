package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type StaffUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type MenuItem struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Sizes       []string    `json:"sizes"`
	Prices      []byte      `json:"prices"`
	Description pgtype.Text `json:"description"`
	ImageUrl    pgtype.Text `json:"image_url"`
	IsActive    bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type Order struct {
	ID            uuid.UUID      `json:"id"`
	OrderNumber   string         `json:"order_number"`
	Status        string         `json:"status"`
	Subtotal      pgtype.Numeric `json:"subtotal"`
	GstAmount     pgtype.Numeric `json:"gst_amount"`
	Total         pgtype.Numeric `json:"total"`
	PaymentMethod pgtype.Text    `json:"payment_method"`
	StaffID       pgtype.UUID    `json:"staff_id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type OrderItem struct {
	ID           uuid.UUID      `json:"id"`
	OrderID      uuid.UUID      `json:"order_id"`
	MenuItemID   string         `json:"menu_item_id"`
	MenuItemName string         `json:"menu_item_name"`
	Size         string         `json:"size"`
	Quantity     int32          `json:"quantity"`
	UnitPrice    pgtype.Numeric `json:"unit_price"`
	TotalPrice   pgtype.Numeric `json:"total_price"`
	Extras       []string       `json:"extras"`
	ExtrasCost   pgtype.Numeric `json:"extras_cost"`
	CreatedAt    time.Time      `json:"created_at"`
}
