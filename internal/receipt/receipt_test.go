package receipt

import (
	"strings"
	"testing"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testOrder() service.Order {
	done := time.Date(2026, 4, 12, 14, 5, 0, 0, time.UTC)
	return service.Order{
		OrderNumber: "GJC-T3-1776002700000",
		TableID:     3,
		Items: []service.CartItem{
			{
				MenuItem:   menu.MenuItem{ID: "1", Name: "Cappuccino"},
				Size:       "Regular",
				Quantity:   2,
				UnitPrice:  dec("795"),
				Extras:     []string{},
				TotalPrice: dec("1590"),
			},
			{
				MenuItem:    menu.MenuItem{ID: "7", Name: "Caramel Latté"},
				Size:        "Large",
				Quantity:    1,
				UnitPrice:   dec("1050"),
				Extras:      []string{"Espresso Shot"},
				ExtrasPrice: dec("350"),
				TotalPrice:  dec("1400"),
			},
		},
		Subtotal:      dec("2990"),
		GSTAmount:     dec("149.5"),
		Total:         dec("3139.5"),
		Status:        "paid",
		PaymentMethod: "card",
		CompletedAt:   &done,
	}
}

func TestRender(t *testing.T) {
	opts := DefaultOptions()
	opts.StaffRole = "cashier"
	opts.StaffEmail = "cashier@gloriapos.com"
	opts.Location = time.UTC

	out := String(testOrder(), opts)

	for _, want := range []string{
		"GLORIA JEAN'S COFFEES",
		"GJC-T3-1776002700000",
		"12/04/2026 14:05",
		"cashier - cashier@gloriapos.com",
		"CARD",
		"Caramel Latté",
		"Extras: Espresso Shot",
		"Rs. 1590.00",
		"Rs. 1400.00",
		"GST (5%):",
		"Rs. 149.50",
		"Rs. 3139.50",
		"Thank you for visiting!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("receipt missing %q\n%s", want, out)
		}
	}
}

func TestRender_LineWidth(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 32
	o := testOrder()
	o.Items[1].Extras = []string{"Espresso Shot", "Flavour Syrup", "Whipped Cream"}

	for _, line := range strings.Split(strings.TrimRight(String(o, opts), "\n"), "\n") {
		if n := len([]rune(line)); n > 32 && !strings.HasPrefix(line, "  Extras:") {
			t.Errorf("line exceeds width (%d): %q", n, line)
		}
	}
}

func TestRender_CashRate(t *testing.T) {
	o := testOrder()
	o.PaymentMethod = "cash"
	o.GSTAmount = dec("478.4")
	o.Total = dec("3468.4")

	out := String(o, DefaultOptions())
	if !strings.Contains(out, "GST (16%):") || !strings.Contains(out, "CASH") {
		t.Errorf("unexpected receipt:\n%s", out)
	}
}
