package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateGST(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		method   string
		want     string
	}{
		{"cash 16 percent", "1200", "cash", "192"},
		{"card 5 percent", "1590", "card", "79.5"},
		{"unknown method uses card rate", "1000", "voucher", "50"},
		{"zero subtotal", "0", "cash", "0"},
		{"no rounding", "795.55", "cash", "127.288"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGST(dec(tt.subtotal), tt.method)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLineTotal(t *testing.T) {
	// Large Caramel Latté with one extra shot.
	got := LineTotal(1, dec("1050"), ExtrasPrice(1))
	if !got.Equal(dec("1400")) {
		t.Errorf("got %s, want 1400", got)
	}

	// Extras are charged once per line.
	got = LineTotal(3, dec("795"), ExtrasPrice(2))
	if !got.Equal(dec("3085")) {
		t.Errorf("got %s, want 3085", got)
	}
}

func TestCompute(t *testing.T) {
	totals := Compute([]decimal.Decimal{dec("795"), dec("795")}, "card")

	if !totals.Subtotal.Equal(dec("1590")) {
		t.Errorf("subtotal: got %s", totals.Subtotal)
	}
	if !totals.GSTAmount.Equal(dec("79.5")) {
		t.Errorf("gst: got %s", totals.GSTAmount)
	}
	if !totals.Total.Equal(dec("1669.5")) {
		t.Errorf("total: got %s", totals.Total)
	}
}

func TestFormat(t *testing.T) {
	if got := Format(dec("79.5")); got != "79.50" {
		t.Errorf("got %q, want %q", got, "79.50")
	}
	if got := Format(dec("127.288")); got != "127.29" {
		t.Errorf("got %q, want %q", got, "127.29")
	}
	if got := RatePercent(CashGSTRate); got != "16%" {
		t.Errorf("got %q, want %q", got, "16%")
	}
}
