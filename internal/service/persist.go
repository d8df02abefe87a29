package service

import (
	"context"
	"errors"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/database"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/pricing"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const staffForeignKey = "orders_staff_id_fkey"

// OrderStore defines the DB methods needed to save paid orders.
// Satisfied by *database.Queries.
type OrderStore interface {
	EnsureStaffUser(ctx context.Context, arg database.EnsureStaffUserParams) error
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItems(ctx context.Context, arg []database.CreateOrderItemsParams) (int64, error)
}

// Persister is the best-effort bridge from the engine to the remote store.
// With a nil store it runs in local-only mode.
type Persister struct {
	store   OrderStore
	staff   []database.EnsureStaffUserParams
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// NewPersister creates a Persister. staff lists accounts that must exist
// remotely before orders can reference them.
func NewPersister(store OrderStore, staff []database.EnsureStaffUserParams, timeout time.Duration, logger *zap.SugaredLogger) *Persister {
	return &Persister{store: store, staff: staff, timeout: timeout, logger: logger}
}

// SaveOrder writes the order row and then its item rows. It never returns an
// error: every failure is logged and described in the result.
func (p *Persister) SaveOrder(ctx context.Context, o Order) SaveResult {
	if p.store == nil {
		p.logger.Infow("remote store not configured, order kept locally",
			"order_number", o.OrderNumber,
			"items", len(o.Items),
			"total", pricing.Format(o.Total),
		)
		return SaveResult{Status: SaveStatusLocalOnly}
	}

	// The write outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.ensureStaff(ctx)

	params := orderParams(o)
	status := SaveStatusSaved
	if !params.StaffID.Valid {
		status = SaveStatusSavedWithoutStaff
	}

	row, err := p.store.CreateOrder(ctx, params)
	if err != nil && params.StaffID.Valid && isStaffReferenceError(err) {
		p.logger.Warnw("staff not found remotely, saving order without staff",
			"order_number", o.OrderNumber,
			"staff_id", o.StaffID,
		)
		params.StaffID = pgtype.UUID{}
		status = SaveStatusSavedWithoutStaff
		row, err = p.store.CreateOrder(ctx, params)
	}
	if err != nil {
		p.logger.Errorw("save order failed", append([]any{"order_number", o.OrderNumber}, pgErrorFields(err)...)...)
		return SaveResult{Status: SaveStatusFailed, Error: err.Error()}
	}

	items := itemParams(row.ID, o.Items)
	if len(items) > 0 {
		if _, err := p.store.CreateOrderItems(ctx, items); err != nil {
			p.logger.Errorw("save order items failed", append([]any{
				"order_number", o.OrderNumber,
				"order_id", row.ID,
				"items", len(items),
			}, pgErrorFields(err)...)...)
			return SaveResult{Status: SaveStatusItemsFailed, RemoteID: row.ID.String(), Error: err.Error()}
		}
	}

	p.logger.Infow("order saved", "order_number", o.OrderNumber, "order_id", row.ID, "status", status)
	return SaveResult{Status: status, RemoteID: row.ID.String()}
}

// ensureStaff creates the fixed accounts if they are missing. Failures only
// matter if the order write then trips the staff foreign key.
func (p *Persister) ensureStaff(ctx context.Context) {
	for _, s := range p.staff {
		if err := p.store.EnsureStaffUser(ctx, s); err != nil {
			p.logger.Warnw("ensure staff user failed", "email", s.Email, "error", err)
		}
	}
}

func orderParams(o Order) database.CreateOrderParams {
	staffID := pgtype.UUID{}
	if id, err := uuid.Parse(o.StaffID); err == nil {
		staffID = pgtype.UUID{Bytes: id, Valid: true}
	}
	method := pgtype.Text{}
	if o.PaymentMethod != "" {
		method = pgtype.Text{String: o.PaymentMethod, Valid: true}
	}
	return database.CreateOrderParams{
		OrderNumber:   o.OrderNumber,
		StaffID:       staffID,
		Subtotal:      decimalToNumeric(o.Subtotal),
		GstAmount:     decimalToNumeric(o.GSTAmount),
		Total:         decimalToNumeric(o.Total),
		PaymentMethod: method,
		Status:        o.Status,
	}
}

func itemParams(orderID uuid.UUID, items []CartItem) []database.CreateOrderItemsParams {
	out := make([]database.CreateOrderItemsParams, 0, len(items))
	for _, it := range items {
		out = append(out, database.CreateOrderItemsParams{
			OrderID:      orderID,
			MenuItemID:   it.MenuItem.ID,
			MenuItemName: it.MenuItem.Name,
			Size:         it.Size,
			Quantity:     int32(it.Quantity),
			UnitPrice:    decimalToNumeric(it.UnitPrice),
			TotalPrice:   decimalToNumeric(it.TotalPrice),
			Extras:       append([]string{}, it.Extras...),
			ExtrasCost:   decimalToNumeric(it.ExtrasPrice),
		})
	}
	return out
}

// isStaffReferenceError checks for a foreign key violation (pgconn error code
// 23503) on the order's staff reference.
func isStaffReferenceError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" && pgErr.ConstraintName == staffForeignKey
	}
	return false
}

func pgErrorFields(err error) []any {
	fields := []any{"error", err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		fields = append(fields,
			"code", pgErr.Code,
			"constraint", pgErr.ConstraintName,
			"detail", pgErr.Detail,
			"hint", pgErr.Hint,
		)
	}
	return fields
}

// --- Helpers ---

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
