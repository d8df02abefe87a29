package handler_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/handler"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/receipt"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// --- Mock history ---

type mockHistory struct {
	orders    []service.Order
	lastLimit int
	from, to  time.Time
}

func (m *mockHistory) List(limit int) []service.Order {
	m.lastLimit = limit
	if limit > 0 && limit < len(m.orders) {
		return m.orders[:limit]
	}
	return m.orders
}

func (m *mockHistory) Find(orderNumber string) (service.Order, bool) {
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			return o, true
		}
	}
	return service.Order{}, false
}

func (m *mockHistory) Between(from, to time.Time) []service.Order {
	m.from, m.to = from, to
	return m.orders
}

func paidOrder(number, method string, at time.Time, subtotal, gst, total string, items ...service.CartItem) service.Order {
	return service.Order{
		OrderNumber:   number,
		Items:         items,
		Subtotal:      dec(subtotal),
		GSTAmount:     dec(gst),
		Total:         dec(total),
		Status:        "paid",
		PaymentMethod: method,
		StaffID:       session.CashierID.String(),
		TableID:       1,
		CreatedAt:     at,
		UpdatedAt:     at,
		CompletedAt:   &at,
	}
}

func historyFixture() []service.Order {
	at := time.Date(2026, 5, 2, 10, 15, 0, 0, time.UTC)
	latte := service.CartItem{
		ID: "l1", MenuItem: menu.MenuItem{ID: "7", Name: "Caramel Latté", Category: "Hot Coffee"},
		Size: "Large", Quantity: 1, UnitPrice: dec("1050"), Extras: []string{"Espresso Shot"},
		ExtrasPrice: dec("350"), TotalPrice: dec("1400"),
	}
	capp := service.CartItem{
		ID: "c1", MenuItem: menu.MenuItem{ID: "1", Name: "Cappuccino", Category: "Hot Coffee"},
		Size: "Regular", Quantity: 2, UnitPrice: dec("795"), Extras: []string{}, TotalPrice: dec("1590"),
	}
	return []service.Order{
		paidOrder("GJC-T1-2", "cash", at, "1400", "224", "1624", latte),
		paidOrder("GJC-T1-1", "card", at.Add(-24*time.Hour), "1590", "79.5", "1669.5", capp),
	}
}

func setupHistoryRouter(history *mockHistory) *chi.Mux {
	opts := receipt.DefaultOptions()
	opts.Location = time.UTC
	h := handler.NewHistoryHandler(history, opts, zap.NewNop().Sugar())
	r := chi.NewRouter()
	r.Route("/orders/history", h.RegisterRoutes)
	return r
}

func TestHistoryList(t *testing.T) {
	history := &mockHistory{orders: historyFixture()}
	r := setupHistoryRouter(history)

	rr := doRequest(r, http.MethodGet, "/orders/history/", nil, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if history.lastLimit != 50 {
		t.Errorf("expected default limit 50, got %d", history.lastLimit)
	}
	var orders []service.Order
	json.NewDecoder(rr.Body).Decode(&orders)
	if len(orders) != 2 || orders[0].OrderNumber != "GJC-T1-2" {
		t.Errorf("unexpected orders %+v", orders)
	}

	rr = doRequest(r, http.MethodGet, "/orders/history/?limit=1", nil, cashierClaims)
	json.NewDecoder(rr.Body).Decode(&orders)
	if len(orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(orders))
	}

	doRequest(r, http.MethodGet, "/orders/history/?limit=5000", nil, cashierClaims)
	if history.lastLimit != 1000 {
		t.Errorf("expected limit capped at 1000, got %d", history.lastLimit)
	}

	if rr := doRequest(r, http.MethodGet, "/orders/history/?limit=zero", nil, cashierClaims); rr.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", rr.Code)
	}
}

func TestHistoryGet(t *testing.T) {
	r := setupHistoryRouter(&mockHistory{orders: historyFixture()})

	rr := doRequest(r, http.MethodGet, "/orders/history/GJC-T1-1", nil, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var order service.Order
	json.NewDecoder(rr.Body).Decode(&order)
	if !order.Total.Equal(dec("1669.5")) {
		t.Errorf("unexpected total %s", order.Total)
	}

	if rr := doRequest(r, http.MethodGet, "/orders/history/GJC-T1-9", nil, cashierClaims); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestHistoryReceipt(t *testing.T) {
	r := setupHistoryRouter(&mockHistory{orders: historyFixture()})

	rr := doRequest(r, http.MethodGet, "/orders/history/GJC-T1-2/receipt", nil, adminClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("expected text/plain, got %q", ct)
	}
	body := rr.Body.String()
	for _, want := range []string{"GJC-T1-2", "02/05/2026 10:15", "cashier - " + session.CashierEmail, "GST (16%):", "Rs. 1624.00"} {
		if !strings.Contains(body, want) {
			t.Errorf("receipt missing %q\n%s", want, body)
		}
	}

	if rr := doRequest(r, http.MethodGet, "/orders/history/nope/receipt", nil, adminClaims); rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}
