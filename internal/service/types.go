package service

import (
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a table's order. MenuItem is a copy taken when the
// line was created, so later menu edits never reprice it.
type CartItem struct {
	ID          string          `json:"id"`
	MenuItem    menu.MenuItem   `json:"menu_item"`
	Size        string          `json:"size"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Extras      []string        `json:"extras"`
	ExtrasPrice decimal.Decimal `json:"extras_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// CartItemUpdate is a partial edit of a cart line. Nil fields are unchanged.
type CartItemUpdate struct {
	Quantity *int     `json:"quantity"`
	Size     *string  `json:"size"`
	Extras   []string `json:"extras"`
}

// Order is the in-progress or finalized order of one table.
type Order struct {
	OrderNumber   string          `json:"order_number"`
	Items         []CartItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	GSTAmount     decimal.Decimal `json:"gst_amount"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	StaffID       string          `json:"staff_id"`
	TableID       int             `json:"table_id"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	Save          *SaveResult     `json:"save_result,omitempty"`
}

// Table is a seat on the floor. Status is always consistent with Order:
// empty with no order, occupied with a draft, held with a held order.
type Table struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Order       *Order    `json:"order,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// ViewState is the terminal's navigation state. SelectedTable is 0 when no
// table is selected.
type ViewState struct {
	CurrentView      string `json:"current_view"`
	SelectedTable    int    `json:"selected_table"`
	SelectedCategory string `json:"selected_category"`
}

// State is the part of the engine kept across restarts.
type State struct {
	Tables           []Table `json:"tables"`
	SelectedCategory string  `json:"selectedCategory"`
}

// SaveStatus is the outcome of a remote order write.
type SaveStatus string

const (
	SaveStatusSaved             SaveStatus = "saved"
	SaveStatusSavedWithoutStaff SaveStatus = "saved_without_staff"
	SaveStatusLocalOnly         SaveStatus = "local_only"
	SaveStatusFailed            SaveStatus = "failed"
	SaveStatusItemsFailed       SaveStatus = "items_failed"
)

// SaveResult records what happened to a paid order on its way to the remote
// store. A failed save never undoes the payment.
type SaveResult struct {
	Status   SaveStatus `json:"status"`
	RemoteID string     `json:"remote_id,omitempty"`
	Error    string     `json:"error,omitempty"`
}

// Durable reports whether the order row reached the remote store.
func (r SaveResult) Durable() bool {
	switch r.Status {
	case SaveStatusSaved, SaveStatusSavedWithoutStaff, SaveStatusItemsFailed:
		return true
	}
	return false
}

func (o *Order) clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Items = make([]CartItem, len(o.Items))
	for i, it := range o.Items {
		c.Items[i] = it.clone()
	}
	if o.CompletedAt != nil {
		t := *o.CompletedAt
		c.CompletedAt = &t
	}
	if o.Save != nil {
		s := *o.Save
		c.Save = &s
	}
	return &c
}

func (c CartItem) clone() CartItem {
	c.MenuItem = c.MenuItem.Clone()
	c.Extras = append([]string{}, c.Extras...)
	return c
}

func (t Table) clone() Table {
	t.Order = t.Order.clone()
	return t
}
