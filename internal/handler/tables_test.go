package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/auth"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/handler"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/middleware"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/receipt"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- Fixtures ---

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testMenuFile() menu.File {
	return menu.File{
		Extras: []string{"Espresso Shot", "Whipped Cream"},
		Items: []menu.MenuItem{
			{
				ID: "1", Name: "Cappuccino", Category: "Hot Coffee",
				Sizes:    []string{"Small", "Regular", "Large"},
				Prices:   map[string]decimal.Decimal{"Small": dec("750"), "Regular": dec("795"), "Large": dec("895")},
				IsActive: true,
			},
			{
				ID: "7", Name: "Caramel Latté", Category: "Hot Coffee",
				Sizes:    []string{"Regular", "Large"},
				Prices:   map[string]decimal.Decimal{"Regular": dec("950"), "Large": dec("1050")},
				IsActive: true,
			},
			{
				ID: "30", Name: "Iced Tea", Category: "Cold Drinks",
				Sizes:    []string{"Regular"},
				Prices:   map[string]decimal.Decimal{"Regular": dec("450")},
				IsActive: false,
			},
		},
	}
}

var (
	cashierClaims = &auth.Claims{StaffID: session.CashierID, Email: session.CashierEmail, Role: "cashier"}
	adminClaims   = &auth.Claims{StaffID: session.AdminID, Email: session.AdminEmail, Role: "admin"}
)

func setupPOSRouter(t *testing.T) (*chi.Mux, *service.Engine) {
	t.Helper()
	logger := zap.NewNop().Sugar()
	engine := service.NewEngine(nil, nil, logger)
	engine.InitializeTables()
	catalog := menu.NewCatalog(testMenuFile(), nil, logger)

	h := handler.NewPOSHandler(engine, catalog, receipt.DefaultOptions(), logger)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r, engine
}

func doRequest(r http.Handler, method, path string, body interface{}, claims *auth.Claims) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if claims != nil {
		req = req.WithContext(middleware.WithClaims(req.Context(), claims))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeTable(t *testing.T, rr *httptest.ResponseRecorder) service.Table {
	t.Helper()
	var table service.Table
	if err := json.NewDecoder(rr.Body).Decode(&table); err != nil {
		t.Fatalf("decode table: %v", err)
	}
	return table
}

func addCappuccino(t *testing.T, r http.Handler, tableID string, qty int) service.Table {
	t.Helper()
	rr := doRequest(r, http.MethodPost, "/tables/"+tableID+"/cart", map[string]interface{}{
		"menu_item_id": "1", "size": "Regular", "quantity": qty,
	}, cashierClaims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add to cart: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decodeTable(t, rr)
}

// --- Tables ---

func TestInitializeTables(t *testing.T) {
	logger := zap.NewNop().Sugar()
	engine := service.NewEngine(nil, nil, logger)
	h := handler.NewPOSHandler(engine, menu.NewCatalog(testMenuFile(), nil, logger), receipt.DefaultOptions(), logger)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rr := doRequest(r, http.MethodPost, "/tables/initialize", nil, cashierClaims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("first initialize: expected 201, got %d", rr.Code)
	}

	rr = doRequest(r, http.MethodPost, "/tables/initialize", nil, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("second initialize: expected 200, got %d", rr.Code)
	}

	rr = doRequest(r, http.MethodGet, "/tables", nil, cashierClaims)
	var tables []service.Table
	json.NewDecoder(rr.Body).Decode(&tables)
	if len(tables) != 15 || tables[0].Name != "Table 1" || tables[14].ID != 15 {
		t.Errorf("unexpected tables: %d", len(tables))
	}
}

func TestGetTable(t *testing.T) {
	r, _ := setupPOSRouter(t)

	rr := doRequest(r, http.MethodGet, "/tables/4", nil, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if table := decodeTable(t, rr); table.ID != 4 || table.Status != "empty" {
		t.Errorf("unexpected table %+v", table)
	}

	if rr := doRequest(r, http.MethodGet, "/tables/99", nil, cashierClaims); rr.Code != http.StatusNotFound {
		t.Errorf("unknown table: expected 404, got %d", rr.Code)
	}
	if rr := doRequest(r, http.MethodGet, "/tables/abc", nil, cashierClaims); rr.Code != http.StatusBadRequest {
		t.Errorf("bad table id: expected 400, got %d", rr.Code)
	}
}

func TestSelectTableAndView(t *testing.T) {
	r, engine := setupPOSRouter(t)

	rr := doRequest(r, http.MethodPost, "/tables/3/select", nil, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if v := engine.View(); v.SelectedTable != 3 || v.CurrentView != "pos" {
		t.Errorf("unexpected view %+v", v)
	}

	rr = doRequest(r, http.MethodPut, "/pos/view", map[string]string{"view": "kitchen"}, cashierClaims)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid view: expected 400, got %d", rr.Code)
	}

	rr = doRequest(r, http.MethodPut, "/pos/view", map[string]string{"view": "tables"}, cashierClaims)
	if rr.Code != http.StatusOK || engine.View().SelectedTable != 0 {
		t.Errorf("back to floor plan: code %d view %+v", rr.Code, engine.View())
	}

	rr = doRequest(r, http.MethodPut, "/pos/category", map[string]string{"category": "Hot Coffee"}, cashierClaims)
	if rr.Code != http.StatusOK || engine.View().SelectedCategory != "Hot Coffee" {
		t.Errorf("set category: code %d view %+v", rr.Code, engine.View())
	}

	rr = doRequest(r, http.MethodGet, "/pos/state", nil, cashierClaims)
	var state struct {
		View   service.ViewState `json:"view"`
		Tables []service.Table   `json:"tables"`
	}
	json.NewDecoder(rr.Body).Decode(&state)
	if state.View.SelectedCategory != "Hot Coffee" || len(state.Tables) != 15 {
		t.Errorf("unexpected state %+v", state.View)
	}
}

// --- Cart ---

func TestAddToCart_CreatesDraftAndMerges(t *testing.T) {
	r, _ := setupPOSRouter(t)

	table := addCappuccino(t, r, "1", 1)
	if table.Status != "occupied" || table.Order == nil {
		t.Fatalf("expected occupied table with order, got %+v", table)
	}
	if table.Order.StaffID != session.CashierID.String() {
		t.Errorf("expected staff %s, got %s", session.CashierID, table.Order.StaffID)
	}
	// Drafts are priced at the cash rate until payment.
	if !table.Order.Subtotal.Equal(dec("795")) || !table.Order.Total.Equal(dec("922.2")) {
		t.Errorf("expected 795 / 922.2, got %s / %s", table.Order.Subtotal, table.Order.Total)
	}

	table = addCappuccino(t, r, "1", 1)
	if len(table.Order.Items) != 1 || table.Order.Items[0].Quantity != 2 {
		t.Fatalf("expected merged line with qty 2, got %+v", table.Order.Items)
	}
	if !table.Order.Subtotal.Equal(dec("1590")) {
		t.Errorf("expected subtotal 1590, got %s", table.Order.Subtotal)
	}
}

func TestAddToCart_WithExtras(t *testing.T) {
	r, _ := setupPOSRouter(t)

	rr := doRequest(r, http.MethodPost, "/tables/2/cart", map[string]interface{}{
		"menu_item_id": "7", "size": "Large", "quantity": 1, "extras": []string{"Espresso Shot"},
	}, cashierClaims)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	line := decodeTable(t, rr).Order.Items[0]
	if !line.TotalPrice.Equal(dec("1400")) || !line.ExtrasPrice.Equal(dec("350")) {
		t.Errorf("expected 1400 with 350 extras, got %s / %s", line.TotalPrice, line.ExtrasPrice)
	}
}

func TestAddToCart_Validation(t *testing.T) {
	r, _ := setupPOSRouter(t)

	tests := []struct {
		name string
		path string
		body map[string]interface{}
		want int
	}{
		{"unknown item", "/tables/1/cart", map[string]interface{}{"menu_item_id": "404", "size": "Regular"}, http.StatusBadRequest},
		{"bad size", "/tables/1/cart", map[string]interface{}{"menu_item_id": "1", "size": "Huge"}, http.StatusBadRequest},
		{"unavailable item", "/tables/1/cart", map[string]interface{}{"menu_item_id": "30", "size": "Regular"}, http.StatusBadRequest},
		{"negative quantity", "/tables/1/cart", map[string]interface{}{"menu_item_id": "1", "size": "Regular", "quantity": -1}, http.StatusBadRequest},
		{"unknown extra", "/tables/1/cart", map[string]interface{}{"menu_item_id": "1", "size": "Regular", "extras": []string{"Gold Leaf"}}, http.StatusBadRequest},
		{"missing size", "/tables/1/cart", map[string]interface{}{"menu_item_id": "1"}, http.StatusBadRequest},
		{"unknown table", "/tables/99/cart", map[string]interface{}{"menu_item_id": "1", "size": "Regular"}, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doRequest(r, http.MethodPost, tc.path, tc.body, cashierClaims)
			if rr.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rr.Code, rr.Body.String())
			}
		})
	}

	rr := doRequest(r, http.MethodGet, "/tables/1", nil, cashierClaims)
	if table := decodeTable(t, rr); table.Order != nil {
		t.Error("rejected requests must not open an order")
	}
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	r, _ := setupPOSRouter(t)
	itemID := addCappuccino(t, r, "5", 1).Order.Items[0].ID

	rr := doRequest(r, http.MethodPatch, "/tables/5/cart/"+itemID, map[string]interface{}{"quantity": 3, "size": "Large"}, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if line := decodeTable(t, rr).Order.Items[0]; line.Quantity != 3 || !line.TotalPrice.Equal(dec("2685")) {
		t.Errorf("unexpected line %+v", line)
	}

	rr = doRequest(r, http.MethodPatch, "/tables/5/cart/missing", map[string]interface{}{"quantity": 2}, cashierClaims)
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing line: expected 404, got %d", rr.Code)
	}

	rr = doRequest(r, http.MethodPatch, "/tables/5/cart/"+itemID, map[string]interface{}{"quantity": 0}, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("quantity 0: expected 200, got %d", rr.Code)
	}
	if table := decodeTable(t, rr); table.Order != nil || table.Status != "empty" {
		t.Errorf("expected empty table after removing last line, got %+v", table)
	}

	itemID = addCappuccino(t, r, "5", 1).Order.Items[0].ID
	rr = doRequest(r, http.MethodDelete, "/tables/5/cart/"+itemID, nil, cashierClaims)
	if rr.Code != http.StatusOK || decodeTable(t, rr).Status != "empty" {
		t.Errorf("remove: unexpected code %d", rr.Code)
	}
}

func TestClearCart_AdminOnly(t *testing.T) {
	r, _ := setupPOSRouter(t)
	addCappuccino(t, r, "6", 2)

	rr := doRequest(r, http.MethodDelete, "/tables/6/cart", nil, cashierClaims)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("cashier clear: expected 403, got %d", rr.Code)
	}

	rr = doRequest(r, http.MethodDelete, "/tables/6/cart", nil, adminClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin clear: expected 200, got %d", rr.Code)
	}
	if table := decodeTable(t, rr); table.Order != nil || table.Status != "empty" {
		t.Errorf("expected empty table, got %+v", table)
	}
}

// --- Hold / pay ---

func TestHoldAndPay(t *testing.T) {
	r, _ := setupPOSRouter(t)
	addCappuccino(t, r, "8", 2)

	rr := doRequest(r, http.MethodPost, "/tables/8/hold", nil, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("hold: expected 200, got %d", rr.Code)
	}
	if table := decodeTable(t, rr); table.Status != "held" || table.Order.Status != "held" {
		t.Errorf("expected held, got table %s order %s", table.Status, table.Order.Status)
	}

	rr = doRequest(r, http.MethodPost, "/tables/8/pay", map[string]string{"payment_method": "card"}, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Fatalf("pay: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Order   service.Order `json:"order"`
		Receipt string        `json:"receipt"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Order.Status != "paid" || !resp.Order.GSTAmount.Equal(dec("79.5")) || !resp.Order.Total.Equal(dec("1669.5")) {
		t.Errorf("unexpected paid order %+v", resp.Order)
	}
	if resp.Order.Save == nil || resp.Order.Save.Status != service.SaveStatusLocalOnly {
		t.Errorf("expected local_only save result, got %+v", resp.Order.Save)
	}
	for _, want := range []string{"GST (5%):", "Rs. 1669.50", session.CashierEmail} {
		if !strings.Contains(resp.Receipt, want) {
			t.Errorf("receipt missing %q", want)
		}
	}

	rr = doRequest(r, http.MethodGet, "/tables/8", nil, cashierClaims)
	if table := decodeTable(t, rr); table.Status != "empty" || table.Order != nil {
		t.Errorf("table not freed after payment: %+v", table)
	}
}

func TestPay_Errors(t *testing.T) {
	r, _ := setupPOSRouter(t)

	rr := doRequest(r, http.MethodPost, "/tables/9/pay", map[string]string{"payment_method": "cash"}, cashierClaims)
	if rr.Code != http.StatusNotFound {
		t.Errorf("no order: expected 404, got %d", rr.Code)
	}

	addCappuccino(t, r, "9", 1)
	rr = doRequest(r, http.MethodPost, "/tables/9/pay", map[string]string{"payment_method": "cheque"}, cashierClaims)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad method: expected 400, got %d", rr.Code)
	}

	rr = doRequest(r, http.MethodPost, "/tables/9/hold", nil, cashierClaims)
	if rr.Code != http.StatusOK {
		t.Errorf("hold with order: expected 200, got %d", rr.Code)
	}
	rr = doRequest(r, http.MethodPost, "/tables/10/hold", nil, cashierClaims)
	if rr.Code != http.StatusNotFound {
		t.Errorf("hold without order: expected 404, got %d", rr.Code)
	}
}
