package enum

// ── State machines (CHECK constrained in DB where persisted) ──

const (
	OrderStatusDraft = "draft"
	OrderStatusHeld  = "held"
	OrderStatusPaid  = "paid"
)

const (
	TableStatusEmpty    = "empty"
	TableStatusOccupied = "occupied"
	TableStatusHeld     = "held"
)

// ── Roles and payment (CHECK constrained in DB) ──

const (
	StaffRoleAdmin   = "admin"
	StaffRoleCashier = "cashier"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// ── UI state (device-local only) ──

const (
	ViewTables = "tables"
	ViewPOS    = "pos"
)

const CategoryAll = "All"

// TableCount is the fixed number of tables on the floor.
const TableCount = 15

// IsValidPaymentMethod reports whether s is an accepted payment method.
func IsValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard:
		return true
	}
	return false
}

// IsValidRole reports whether s is a known staff role.
func IsValidRole(s string) bool {
	switch s {
	case StaffRoleAdmin, StaffRoleCashier:
		return true
	}
	return false
}
