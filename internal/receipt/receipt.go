// Package receipt renders paid orders as fixed-width text for the till and for
// reprints from order history.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/pricing"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/shopspring/decimal"
)

const DefaultWidth = 42

// Options controls the header and layout.
type Options struct {
	StoreName string
	Tagline   string
	Footer    string
	Currency  string
	Width     int
	// Staff is printed as "role - email" when set.
	StaffRole  string
	StaffEmail string
	Location   *time.Location
}

// DefaultOptions returns the café's standard receipt layout.
func DefaultOptions() Options {
	return Options{
		StoreName: "GLORIA JEAN'S COFFEES",
		Tagline:   "Point of Sale System",
		Footer:    "Thank you for visiting!",
		Currency:  "Rs.",
		Width:     DefaultWidth,
	}
}

// Render writes the receipt for o.
func Render(w io.Writer, o service.Order, opts Options) error {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	r := &renderer{opts: opts}

	r.center(opts.StoreName)
	if opts.Tagline != "" {
		r.center(opts.Tagline)
	}
	r.rule()

	r.pair("Order:", o.OrderNumber)
	r.pair("Table:", fmt.Sprintf("%d", o.TableID))
	r.pair("Date:", printedAt(o).In(opts.Location).Format("02/01/2006 15:04"))
	if opts.StaffEmail != "" {
		r.pair("Staff:", opts.StaffRole+" - "+opts.StaffEmail)
	}
	if o.PaymentMethod != "" {
		r.pair("Payment:", strings.ToUpper(o.PaymentMethod))
	}
	r.rule()

	for _, it := range o.Items {
		r.line(it.MenuItem.Name)
		base := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		r.pair(fmt.Sprintf("  %s x%d", it.Size, it.Quantity), r.money(base))
		if len(it.Extras) > 0 {
			r.pair("  Extras: "+strings.Join(it.Extras, ", "), r.money(it.ExtrasPrice))
		}
		r.pair("  Total:", r.money(it.TotalPrice))
	}
	r.rule()

	r.pair("Subtotal:", r.money(o.Subtotal))
	r.pair(fmt.Sprintf("GST (%s):", pricing.RatePercent(pricing.GSTRate(o.PaymentMethod))), r.money(o.GSTAmount))
	r.pair("TOTAL:", r.money(o.Total))
	r.rule()

	if opts.Footer != "" {
		r.center(opts.Footer)
	}

	_, err := io.WriteString(w, r.b.String())
	return err
}

// String is Render into a string.
func String(o service.Order, opts Options) string {
	var b strings.Builder
	_ = Render(&b, o, opts)
	return b.String()
}

type renderer struct {
	opts Options
	b    strings.Builder
}

func (r *renderer) line(s string) {
	r.b.WriteString(s)
	r.b.WriteByte('\n')
}

func (r *renderer) rule() {
	r.line(strings.Repeat("-", r.opts.Width))
}

func (r *renderer) center(s string) {
	pad := (r.opts.Width - len([]rune(s))) / 2
	if pad < 0 {
		pad = 0
	}
	r.line(strings.Repeat(" ", pad) + s)
}

// pair writes left and right on one line, or on two when they don't fit.
func (r *renderer) pair(left, right string) {
	gap := r.opts.Width - len([]rune(left)) - len([]rune(right))
	if gap < 1 {
		r.line(left)
		r.line(strings.Repeat(" ", max(r.opts.Width-len([]rune(right)), 0)) + right)
		return
	}
	r.line(left + strings.Repeat(" ", gap) + right)
}

func (r *renderer) money(d decimal.Decimal) string {
	if r.opts.Currency == "" {
		return pricing.Format(d)
	}
	return r.opts.Currency + " " + pricing.Format(d)
}

func printedAt(o service.Order) time.Time {
	if o.CompletedAt != nil {
		return *o.CompletedAt
	}
	return o.UpdatedAt
}
