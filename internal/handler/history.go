package handler

import (
	"net/http"
	"strconv"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/auth"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/receipt"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultHistoryPage = 50
	maxHistoryPage     = 1000
)

// OrderHistory defines the completed-order log methods needed here.
// Satisfied by *localstore.History.
type OrderHistory interface {
	List(limit int) []service.Order
	Find(orderNumber string) (service.Order, bool)
}

// HistoryHandler serves completed orders and receipt reprints.
type HistoryHandler struct {
	history OrderHistory
	receipt receipt.Options
	logger  *zap.SugaredLogger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(history OrderHistory, receiptOpts receipt.Options, logger *zap.SugaredLogger) *HistoryHandler {
	return &HistoryHandler{history: history, receipt: receiptOpts, logger: logger}
}

// RegisterRoutes registers history endpoints.
// Expected to be mounted at /orders/history.
func (h *HistoryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{number}", h.Get)
	r.Get("/{number}/receipt", h.Receipt)
}

// List returns completed orders, newest first. Query param: limit (default 50).
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryPage
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
			return
		}
		limit = min(n, maxHistoryPage)
	}
	writeJSON(w, http.StatusOK, h.history.List(limit))
}

// Get returns one completed order.
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	order, ok := h.history.Find(chi.URLParam(r, "number"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// Receipt reprints a completed order as plain text.
func (h *HistoryHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	order, ok := h.history.Find(chi.URLParam(r, "number"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		return
	}

	opts := receiptOptionsFor(h.receipt, order, nil)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := receipt.Render(w, order, opts); err != nil {
		h.logger.Warnw("write receipt", "order_number", order.OrderNumber, "error", err)
	}
}

// receiptOptionsFor fills in the staff line. The requester is used when they
// took the order; otherwise the built-in accounts are matched by id.
func receiptOptionsFor(base receipt.Options, o service.Order, claims *auth.Claims) receipt.Options {
	if claims != nil && claims.StaffID.String() == o.StaffID {
		base.StaffRole = claims.Role
		base.StaffEmail = claims.Email
		return base
	}
	for _, s := range session.DemoStaff() {
		if s.ID.String() == o.StaffID {
			base.StaffRole = s.Role
			base.StaffEmail = s.Email
			break
		}
	}
	return base
}
