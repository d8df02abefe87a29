package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/enum"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Errors returned by the engine. Not-found errors leave state untouched.
var (
	ErrTableNotFound        = errors.New("table not found")
	ErrNoActiveOrder        = errors.New("table has no active order")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidSize          = errors.New("size is not offered for this item")
	ErrItemUnavailable      = errors.New("menu item is not available")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
	ErrInvalidView          = errors.New("invalid view")
	ErrPaymentInProgress    = errors.New("payment already in progress for this table")
)

// Listener is told about committed changes. Calls happen outside the engine
// lock, so a listener may call back into the engine.
type Listener interface {
	TableUpdated(t Table)
	OrderPaid(o Order)
}

// CategoryListener is an optional Listener extension for changes to the
// selected menu category.
type CategoryListener interface {
	CategoryChanged(category string)
}

// OrderSaver writes a paid order to the remote store. It must not fail the
// payment; problems are reported in the result.
type OrderSaver interface {
	SaveOrder(ctx context.Context, o Order) SaveResult
}

// CompletedLog keeps paid orders on the device for history and reprints.
type CompletedLog interface {
	Append(o Order) error
}

// Engine owns the table → order mapping for one terminal.
type Engine struct {
	mu       sync.Mutex
	tables   []Table
	view     ViewState
	paying   map[int]bool
	lastNum  int64
	saver    OrderSaver
	history  CompletedLog
	watchers []Listener
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewEngine creates an engine with no tables. saver and history may be nil.
func NewEngine(saver OrderSaver, history CompletedLog, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		view:    ViewState{CurrentView: enum.ViewTables, SelectedCategory: enum.CategoryAll},
		paying:  make(map[int]bool),
		saver:   saver,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// AddListener registers l for table and payment events.
func (e *Engine) AddListener(l Listener) {
	e.mu.Lock()
	e.watchers = append(e.watchers, l)
	e.mu.Unlock()
}

// InitializeTables creates the floor's tables if none exist yet. It reports
// whether anything was created.
func (e *Engine) InitializeTables() bool {
	e.mu.Lock()
	if len(e.tables) > 0 {
		e.mu.Unlock()
		return false
	}
	now := e.now()
	e.tables = make([]Table, enum.TableCount)
	for i := range e.tables {
		e.tables[i] = Table{
			ID:          i + 1,
			Name:        fmt.Sprintf("Table %d", i+1),
			Status:      enum.TableStatusEmpty,
			LastUpdated: now,
		}
	}
	events := make([]Table, len(e.tables))
	for i, t := range e.tables {
		events[i] = t.clone()
	}
	e.mu.Unlock()

	for _, t := range events {
		e.notifyTable(t)
	}
	return true
}

// Tables returns a copy of every table.
func (e *Engine) Tables() []Table {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]Table, len(e.tables))
	for i, t := range e.tables {
		out[i] = t.clone()
	}
	return out
}

// Table returns a copy of one table.
func (e *Engine) Table(id int) (Table, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t := e.find(id)
	if t == nil {
		return Table{}, ErrTableNotFound
	}
	return t.clone(), nil
}

// View returns the terminal's navigation state.
func (e *Engine) View() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}

// SelectTable makes id the active table and switches to the POS view.
// Unknown ids change nothing.
func (e *Engine) SelectTable(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.find(id) == nil {
		return ErrTableNotFound
	}
	e.view.SelectedTable = id
	e.view.CurrentView = enum.ViewPOS
	return nil
}

// SetCurrentView switches between the floor plan and the POS screen.
// Returning to the floor plan clears the selected table.
func (e *Engine) SetCurrentView(view string) error {
	if view != enum.ViewTables && view != enum.ViewPOS {
		return ErrInvalidView
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.view.CurrentView = view
	if view == enum.ViewTables {
		e.view.SelectedTable = 0
	}
	return nil
}

// SetSelectedCategory records the menu filter. Empty means "All". Listeners
// that implement CategoryListener are told about the change.
func (e *Engine) SetSelectedCategory(category string) {
	if category == "" {
		category = enum.CategoryAll
	}
	e.mu.Lock()
	e.view.SelectedCategory = category
	e.mu.Unlock()

	for _, l := range e.listeners() {
		if cl, ok := l.(CategoryListener); ok {
			cl.CategoryChanged(category)
		}
	}
}

// NewCartItem builds a cart line from a menu item. The unit price is captured
// now; extras are stored as a sorted set.
func NewCartItem(item menu.MenuItem, size string, quantity int, extras []string) (CartItem, error) {
	if !item.IsActive {
		return CartItem{}, ErrItemUnavailable
	}
	if quantity <= 0 {
		return CartItem{}, ErrInvalidQuantity
	}
	unit, ok := item.PriceFor(size)
	if !ok {
		return CartItem{}, ErrInvalidSize
	}
	set := canonicalExtras(extras)
	extrasPrice := pricing.ExtrasPrice(len(set))
	return CartItem{
		ID:          uuid.NewString(),
		MenuItem:    item.Clone(),
		Size:        size,
		Quantity:    quantity,
		UnitPrice:   unit,
		Extras:      set,
		ExtrasPrice: extrasPrice,
		TotalPrice:  pricing.LineTotal(quantity, unit, extrasPrice),
	}, nil
}

// AddToTableCart adds a line to the table's order, creating a draft order
// for staffID if the table is empty. A line with the same item, size and
// extras is merged by quantity instead of appended.
func (e *Engine) AddToTableCart(tableID int, staffID string, item CartItem) (Table, error) {
	if item.Quantity <= 0 {
		return Table{}, ErrInvalidQuantity
	}
	if _, ok := item.MenuItem.PriceFor(item.Size); !ok {
		return Table{}, ErrInvalidSize
	}

	e.mu.Lock()
	t := e.find(tableID)
	if t == nil {
		e.mu.Unlock()
		return Table{}, ErrTableNotFound
	}
	if e.paying[tableID] {
		e.mu.Unlock()
		return Table{}, ErrPaymentInProgress
	}

	now := e.now()
	if t.Order == nil {
		t.Order = &Order{
			OrderNumber: e.nextOrderNumber(tableID, now),
			Items:       []CartItem{},
			Status:      enum.OrderStatusDraft,
			StaffID:     staffID,
			TableID:     tableID,
			CreatedAt:   now,
		}
	}

	line := normalizeLine(item)
	key := lineKey(line)
	if i := slices.IndexFunc(t.Order.Items, func(c CartItem) bool { return lineKey(c) == key }); i >= 0 {
		existing := &t.Order.Items[i]
		existing.Quantity += line.Quantity
		existing.TotalPrice = pricing.LineTotal(existing.Quantity, existing.UnitPrice, existing.ExtrasPrice)
	} else {
		t.Order.Items = append(t.Order.Items, line)
	}

	e.touchActive(t, now)
	snap := t.clone()
	e.mu.Unlock()

	e.notifyTable(snap)
	return snap, nil
}

// UpdateTableCartItem edits one line and recomputes its total. Setting the
// quantity to zero removes the line. If the edit gives the line the same item,
// size and extras as another line, the two are merged.
func (e *Engine) UpdateTableCartItem(tableID int, itemID string, upd CartItemUpdate) (Table, error) {
	if upd.Quantity != nil {
		if *upd.Quantity == 0 {
			return e.RemoveFromTableCart(tableID, itemID)
		}
		if *upd.Quantity < 0 {
			return Table{}, ErrInvalidQuantity
		}
	}

	e.mu.Lock()
	t, line, err := e.findLine(tableID, itemID)
	if err != nil {
		e.mu.Unlock()
		return Table{}, err
	}

	updated := line.clone()
	if upd.Quantity != nil {
		updated.Quantity = *upd.Quantity
	}
	if upd.Size != nil {
		unit, ok := updated.MenuItem.PriceFor(*upd.Size)
		if !ok {
			e.mu.Unlock()
			return Table{}, ErrInvalidSize
		}
		updated.Size = *upd.Size
		updated.UnitPrice = unit
	}
	if upd.Extras != nil {
		updated.Extras = canonicalExtras(upd.Extras)
		updated.ExtrasPrice = pricing.ExtrasPrice(len(updated.Extras))
	}
	updated.TotalPrice = pricing.LineTotal(updated.Quantity, updated.UnitPrice, updated.ExtrasPrice)

	// An edit that makes the line identical to another one folds it into that line.
	key := lineKey(updated)
	if j := slices.IndexFunc(t.Order.Items, func(c CartItem) bool { return c.ID != updated.ID && lineKey(c) == key }); j >= 0 {
		other := &t.Order.Items[j]
		other.Quantity += updated.Quantity
		other.TotalPrice = pricing.LineTotal(other.Quantity, other.UnitPrice, other.ExtrasPrice)
		t.Order.Items = slices.DeleteFunc(t.Order.Items, func(c CartItem) bool { return c.ID == updated.ID })
	} else {
		*line = updated
	}

	e.touchActive(t, e.now())
	snap := t.clone()
	e.mu.Unlock()

	e.notifyTable(snap)
	return snap, nil
}

// RemoveFromTableCart deletes one line. Removing the last line empties the
// table instead of leaving an empty draft behind.
func (e *Engine) RemoveFromTableCart(tableID int, itemID string) (Table, error) {
	e.mu.Lock()
	t, line, err := e.findLine(tableID, itemID)
	if err != nil {
		e.mu.Unlock()
		return Table{}, err
	}

	id := line.ID
	t.Order.Items = slices.DeleteFunc(t.Order.Items, func(c CartItem) bool { return c.ID == id })
	now := e.now()
	if len(t.Order.Items) == 0 {
		e.detach(t, now)
	} else {
		e.touchActive(t, now)
	}
	snap := t.clone()
	e.mu.Unlock()

	e.notifyTable(snap)
	return snap, nil
}

// ClearTableCart drops the table's order, whatever its state.
func (e *Engine) ClearTableCart(tableID int) (Table, error) {
	e.mu.Lock()
	t := e.find(tableID)
	if t == nil {
		e.mu.Unlock()
		return Table{}, ErrTableNotFound
	}
	if e.paying[tableID] {
		e.mu.Unlock()
		return Table{}, ErrPaymentInProgress
	}
	e.detach(t, e.now())
	snap := t.clone()
	e.mu.Unlock()

	e.notifyTable(snap)
	return snap, nil
}

// HoldTableOrder parks the table's order without changing its lines or
// totals. Holding a held order is a no-op apart from timestamps.
func (e *Engine) HoldTableOrder(tableID int) (Table, error) {
	e.mu.Lock()
	t := e.find(tableID)
	if t == nil {
		e.mu.Unlock()
		return Table{}, ErrTableNotFound
	}
	if t.Order == nil {
		e.mu.Unlock()
		return Table{}, ErrNoActiveOrder
	}
	if e.paying[tableID] {
		e.mu.Unlock()
		return Table{}, ErrPaymentInProgress
	}
	now := e.now()
	t.Order.Status = enum.OrderStatusHeld
	t.Order.UpdatedAt = now
	t.Status = enum.TableStatusHeld
	t.LastUpdated = now
	snap := t.clone()
	e.mu.Unlock()

	e.notifyTable(snap)
	return snap, nil
}

// PayTableOrder finalizes the table's order with GST for the chosen payment
// method, hands it to the remote saver and then frees the table. The remote
// outcome is attached to the returned order and never blocks completion.
func (e *Engine) PayTableOrder(ctx context.Context, tableID int, paymentMethod string) (Order, error) {
	if !enum.IsValidPaymentMethod(paymentMethod) {
		return Order{}, ErrInvalidPaymentMethod
	}

	e.mu.Lock()
	t := e.find(tableID)
	if t == nil {
		e.mu.Unlock()
		return Order{}, ErrTableNotFound
	}
	if t.Order == nil {
		e.mu.Unlock()
		return Order{}, ErrNoActiveOrder
	}
	if e.paying[tableID] {
		e.mu.Unlock()
		return Order{}, ErrPaymentInProgress
	}
	e.paying[tableID] = true

	now := e.now()
	paid := *t.Order.clone()
	totals := pricing.Compute(lineTotals(paid.Items), paymentMethod)
	paid.Subtotal = totals.Subtotal
	paid.GSTAmount = totals.GSTAmount
	paid.Total = totals.Total
	paid.Status = enum.OrderStatusPaid
	paid.PaymentMethod = paymentMethod
	paid.UpdatedAt = now
	paid.CompletedAt = &now
	e.mu.Unlock()

	result := SaveResult{Status: SaveStatusLocalOnly}
	if e.saver != nil {
		result = e.saver.SaveOrder(ctx, paid)
	}
	paid.Save = &result

	e.mu.Lock()
	delete(e.paying, tableID)
	t = e.find(tableID)
	var snap *Table
	if t != nil && t.Order != nil && t.Order.OrderNumber == paid.OrderNumber {
		e.detach(t, e.now())
		s := t.clone()
		snap = &s
	}
	e.mu.Unlock()

	if e.history != nil {
		if err := e.history.Append(paid); err != nil {
			e.logger.Errorw("append completed order", "order_number", paid.OrderNumber, "error", err)
		}
	}

	e.logger.Infow("order paid",
		"order_number", paid.OrderNumber,
		"table_id", tableID,
		"payment_method", paymentMethod,
		"total", pricing.Format(paid.Total),
		"save_status", result.Status,
	)

	if snap != nil {
		e.notifyTable(*snap)
	}
	for _, l := range e.listeners() {
		l.OrderPaid(*paid.clone())
	}
	return paid, nil
}

// Snapshot returns the state worth keeping across restarts.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	tables := make([]Table, len(e.tables))
	for i, t := range e.tables {
		tables[i] = t.clone()
	}
	return State{Tables: tables, SelectedCategory: e.view.SelectedCategory}
}

// Restore replaces the tables with a saved snapshot. Table statuses are
// recomputed from their orders, tables with bad ids are dropped and any
// missing table is recreated empty.
func (e *Engine) Restore(s State) {
	tables := make([]Table, 0, len(s.Tables))
	seen := make(map[int]bool, len(s.Tables))
	for _, t := range s.Tables {
		if t.ID < 1 || t.ID > enum.TableCount || seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		t = t.clone()
		if t.Name == "" {
			t.Name = fmt.Sprintf("Table %d", t.ID)
		}
		if t.Order != nil && len(t.Order.Items) == 0 {
			t.Order = nil
		}
		switch {
		case t.Order == nil:
			t.Status = enum.TableStatusEmpty
		case t.Order.Status == enum.OrderStatusHeld:
			t.Status = enum.TableStatusHeld
		default:
			t.Order.Status = enum.OrderStatusDraft
			t.Status = enum.TableStatusOccupied
		}
		tables = append(tables, t)
	}

	now := e.now()
	for id := 1; id <= enum.TableCount; id++ {
		if !seen[id] {
			tables = append(tables, Table{
				ID:          id,
				Name:        fmt.Sprintf("Table %d", id),
				Status:      enum.TableStatusEmpty,
				LastUpdated: now,
			})
		}
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })

	e.mu.Lock()
	e.tables = tables
	if s.SelectedCategory != "" {
		e.view.SelectedCategory = s.SelectedCategory
	}
	e.mu.Unlock()
}

// --- Helpers ---

// find must be called with e.mu held.
func (e *Engine) find(id int) *Table {
	for i := range e.tables {
		if e.tables[i].ID == id {
			return &e.tables[i]
		}
	}
	return nil
}

// findLine must be called with e.mu held.
func (e *Engine) findLine(tableID int, itemID string) (*Table, *CartItem, error) {
	t := e.find(tableID)
	if t == nil {
		return nil, nil, ErrTableNotFound
	}
	if t.Order == nil {
		return nil, nil, ErrNoActiveOrder
	}
	if e.paying[tableID] {
		return nil, nil, ErrPaymentInProgress
	}
	for i := range t.Order.Items {
		if t.Order.Items[i].ID == itemID {
			return t, &t.Order.Items[i], nil
		}
	}
	return nil, nil, ErrCartItemNotFound
}

// touchActive recomputes draft totals and marks the order as being worked on.
// A held order that is edited becomes a draft again.
func (e *Engine) touchActive(t *Table, now time.Time) {
	totals := pricing.Compute(lineTotals(t.Order.Items), enum.PaymentMethodCash)
	t.Order.Subtotal = totals.Subtotal
	t.Order.GSTAmount = totals.GSTAmount
	t.Order.Total = totals.Total
	t.Order.Status = enum.OrderStatusDraft
	t.Order.UpdatedAt = now
	t.Status = enum.TableStatusOccupied
	t.LastUpdated = now
}

func (e *Engine) detach(t *Table, now time.Time) {
	t.Order = nil
	t.Status = enum.TableStatusEmpty
	t.LastUpdated = now
}

// nextOrderNumber must be called with e.mu held. Numbers are strictly
// increasing per engine even when two orders start in the same millisecond.
func (e *Engine) nextOrderNumber(tableID int, now time.Time) string {
	n := now.UnixMilli()
	if n <= e.lastNum {
		n = e.lastNum + 1
	}
	e.lastNum = n
	return fmt.Sprintf("GJC-T%d-%d", tableID, n)
}

func (e *Engine) listeners() []Listener {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.watchers)
}

func (e *Engine) notifyTable(t Table) {
	for _, l := range e.listeners() {
		l.TableUpdated(t.clone())
	}
}

// normalizeLine fills in the derived fields of a line supplied by a caller.
func normalizeLine(item CartItem) CartItem {
	line := item.clone()
	if line.ID == "" {
		line.ID = uuid.NewString()
	}
	line.Extras = canonicalExtras(line.Extras)
	line.ExtrasPrice = pricing.ExtrasPrice(len(line.Extras))
	line.TotalPrice = pricing.LineTotal(line.Quantity, line.UnitPrice, line.ExtrasPrice)
	return line
}

// canonicalExtras returns extras sorted with duplicates and blanks removed.
func canonicalExtras(extras []string) []string {
	out := make([]string, 0, len(extras))
	for _, x := range extras {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// lineKey identifies lines that merge: same item, size and set of extras.
func lineKey(c CartItem) string {
	return c.MenuItem.ID + "\x00" + c.Size + "\x00" + strings.Join(canonicalExtras(c.Extras), "\x1f")
}

func lineTotals(items []CartItem) []decimal.Decimal {
	out := make([]decimal.Decimal, len(items))
	for i, it := range items {
		out[i] = it.TotalPrice
	}
	return out
}
