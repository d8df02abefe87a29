package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/enum"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/middleware"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/receipt"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// POSEngine defines the engine methods needed by table and cart handlers.
// Satisfied by *service.Engine; narrow interface for testability.
type POSEngine interface {
	InitializeTables() bool
	Tables() []service.Table
	Table(id int) (service.Table, error)
	View() service.ViewState
	SelectTable(id int) error
	SetCurrentView(view string) error
	SetSelectedCategory(category string)
	AddToTableCart(tableID int, staffID string, item service.CartItem) (service.Table, error)
	UpdateTableCartItem(tableID int, itemID string, upd service.CartItemUpdate) (service.Table, error)
	RemoveFromTableCart(tableID int, itemID string) (service.Table, error)
	ClearTableCart(tableID int) (service.Table, error)
	HoldTableOrder(tableID int) (service.Table, error)
	PayTableOrder(ctx context.Context, tableID int, paymentMethod string) (service.Order, error)
}

// MenuLookup resolves menu items for new cart lines.
// Satisfied by *menu.Catalog.
type MenuLookup interface {
	Get(id string) (menu.MenuItem, error)
	IsExtra(label string) bool
}

// POSHandler handles the floor plan, carts and payment.
type POSHandler struct {
	engine  POSEngine
	menu    MenuLookup
	receipt receipt.Options
	logger  *zap.SugaredLogger
}

// NewPOSHandler creates a new POSHandler. receiptOpts is the layout used for
// the receipt returned with every payment.
func NewPOSHandler(engine POSEngine, lookup MenuLookup, receiptOpts receipt.Options, logger *zap.SugaredLogger) *POSHandler {
	return &POSHandler{engine: engine, menu: lookup, receipt: receiptOpts, logger: logger}
}

// RegisterRoutes registers POS endpoints. Expected to be mounted behind
// authentication at the root level.
func (h *POSHandler) RegisterRoutes(r chi.Router) {
	r.Get("/pos/state", h.State)
	r.Put("/pos/category", h.SetCategory)
	r.Put("/pos/view", h.SetView)

	r.Post("/tables/initialize", h.Initialize)
	r.Get("/tables", h.ListTables)
	r.Route("/tables/{tid}", func(r chi.Router) {
		r.Get("/", h.GetTable)
		r.Post("/select", h.SelectTable)
		r.Post("/cart", h.AddItem)
		r.Patch("/cart/{itemId}", h.UpdateItem)
		r.Delete("/cart/{itemId}", h.RemoveItem)
		r.With(middleware.RequireRole(enum.StaffRoleAdmin)).Delete("/cart", h.ClearCart)
		r.Post("/hold", h.Hold)
		r.Post("/pay", h.Pay)
	})
}

// --- Request / Response types ---

type posStateResponse struct {
	View   service.ViewState `json:"view"`
	Tables []service.Table   `json:"tables"`
}

type setCategoryRequest struct {
	Category string `json:"category"`
}

type setViewRequest struct {
	View string `json:"view"`
}

type addCartItemRequest struct {
	MenuItemID string   `json:"menu_item_id"`
	Size       string   `json:"size"`
	Quantity   int      `json:"quantity"`
	Extras     []string `json:"extras"`
}

type updateCartItemRequest struct {
	Quantity *int     `json:"quantity"`
	Size     *string  `json:"size"`
	Extras   []string `json:"extras"`
}

type payRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type payResponse struct {
	Order   service.Order `json:"order"`
	Receipt string        `json:"receipt"`
}

// --- Handlers ---

// State returns the view state together with every table.
func (h *POSHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, posStateResponse{
		View:   h.engine.View(),
		Tables: h.engine.Tables(),
	})
}

// SetCategory records the menu category filter.
func (h *POSHandler) SetCategory(w http.ResponseWriter, r *http.Request) {
	var req setCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	h.engine.SetSelectedCategory(req.Category)
	writeJSON(w, http.StatusOK, h.engine.View())
}

// SetView switches between the floor plan and the POS screen.
func (h *POSHandler) SetView(w http.ResponseWriter, r *http.Request) {
	var req setViewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := h.engine.SetCurrentView(req.View); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.View())
}

// Initialize creates the floor's tables if they do not exist yet.
func (h *POSHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	created := h.engine.InitializeTables()
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"initialized": created,
		"tables":      h.engine.Tables(),
	})
}

// ListTables returns every table with its active order.
func (h *POSHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Tables())
}

// GetTable returns one table.
func (h *POSHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	t, err := h.engine.Table(tableID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// SelectTable makes the table active and opens the POS screen.
func (h *POSHandler) SelectTable(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	if err := h.engine.SelectTable(tableID); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.View())
}

// AddItem adds a menu item to the table's cart, opening an order for the
// signed-in staff member when the table is empty.
func (h *POSHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.MenuItemID == "" || req.Size == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu_item_id and size are required"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if !h.validExtras(w, req.Extras) {
		return
	}

	item, err := h.menu.Get(req.MenuItemID)
	if err != nil {
		if errors.Is(err, menu.ErrItemNotFound) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu item not found"})
			return
		}
		h.logger.Errorw("get menu item", "menu_item_id", req.MenuItemID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	line, err := service.NewCartItem(item, req.Size, req.Quantity, req.Extras)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	staffID := ""
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		staffID = claims.StaffID.String()
	}

	t, err := h.engine.AddToTableCart(tableID, staffID, line)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateItem changes a line's quantity, size or extras. Quantity 0 removes it.
func (h *POSHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	var req updateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !h.validExtras(w, req.Extras) {
		return
	}

	t, err := h.engine.UpdateTableCartItem(tableID, chi.URLParam(r, "itemId"), service.CartItemUpdate{
		Quantity: req.Quantity,
		Size:     req.Size,
		Extras:   req.Extras,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// RemoveItem deletes one cart line.
func (h *POSHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	t, err := h.engine.RemoveFromTableCart(tableID, chi.URLParam(r, "itemId"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ClearCart drops the table's order. Admin only.
func (h *POSHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	t, err := h.engine.ClearTableCart(tableID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Hold parks the table's order.
func (h *POSHandler) Hold(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}
	t, err := h.engine.HoldTableOrder(tableID)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Pay completes the table's order and returns it with a printable receipt.
// Remote persistence problems show up in the order's save_result only.
func (h *POSHandler) Pay(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if !enum.IsValidPaymentMethod(req.PaymentMethod) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_method must be cash or card"})
		return
	}

	order, err := h.engine.PayTableOrder(r.Context(), tableID, req.PaymentMethod)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	opts := receiptOptionsFor(h.receipt, order, middleware.ClaimsFromContext(r.Context()))
	writeJSON(w, http.StatusOK, payResponse{
		Order:   order,
		Receipt: receipt.String(order, opts),
	})
}

// --- Helpers ---

func parseTableID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "tid"))
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return 0, false
	}
	return id, true
}

func (h *POSHandler) validExtras(w http.ResponseWriter, extras []string) bool {
	for _, e := range extras {
		if !h.menu.IsExtra(e) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown extra: " + e})
			return false
		}
	}
	return true
}

func (h *POSHandler) writeEngineError(w http.ResponseWriter, err error) {
	writeEngineError(w, h.logger, err)
}

func writeEngineError(w http.ResponseWriter, logger *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, service.ErrTableNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
	case errors.Is(err, service.ErrNoActiveOrder):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "table has no active order"})
	case errors.Is(err, service.ErrCartItemNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart item not found"})
	case errors.Is(err, service.ErrPaymentInProgress):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidSize),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrInvalidPaymentMethod),
		errors.Is(err, service.ErrInvalidView):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		logger.Errorw("pos operation", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
