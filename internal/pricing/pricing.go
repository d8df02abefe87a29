// Package pricing holds the tax and line arithmetic shared by the order engine,
// receipts and reports. Amounts are decimal minor-currency values; nothing here
// rounds. Rounding to two places happens only in Format.
package pricing

import (
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/enum"
	"github.com/shopspring/decimal"
)

var (
	// CashGSTRate applies to orders settled in cash.
	CashGSTRate = decimal.RequireFromString("0.16")
	// CardGSTRate applies to orders settled by card.
	CardGSTRate = decimal.RequireFromString("0.05")
	// ExtraPrice is the flat price of one extra, independent of item and size.
	ExtraPrice = decimal.NewFromInt(350)
)

// Totals is the money summary of an order.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	GSTAmount decimal.Decimal `json:"gst_amount"`
	Total     decimal.Decimal `json:"total"`
}

// GSTRate returns the tax rate for a payment method. Anything other than cash
// is taxed at the card rate.
func GSTRate(paymentMethod string) decimal.Decimal {
	if paymentMethod == enum.PaymentMethodCash {
		return CashGSTRate
	}
	return CardGSTRate
}

// CalculateGST returns subtotal * rate(paymentMethod).
func CalculateGST(subtotal decimal.Decimal, paymentMethod string) decimal.Decimal {
	return subtotal.Mul(GSTRate(paymentMethod))
}

// ExtrasPrice returns the price of n extras.
func ExtrasPrice(n int) decimal.Decimal {
	return ExtraPrice.Mul(decimal.NewFromInt(int64(n)))
}

// LineTotal returns quantity*unitPrice + extrasPrice.
// Extras are charged once per line, not per unit.
func LineTotal(quantity int, unitPrice, extrasPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Add(extrasPrice)
}

// Compute sums line totals and applies GST for the payment method.
func Compute(lineTotals []decimal.Decimal, paymentMethod string) Totals {
	subtotal := decimal.Zero
	for _, lt := range lineTotals {
		subtotal = subtotal.Add(lt)
	}
	gst := CalculateGST(subtotal, paymentMethod)
	return Totals{
		Subtotal:  subtotal,
		GSTAmount: gst,
		Total:     subtotal.Add(gst),
	}
}

// Format renders an amount for display with two decimal places.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// RatePercent renders a rate as a whole-number percentage, e.g. "16%".
func RatePercent(rate decimal.Decimal) string {
	return rate.Mul(decimal.NewFromInt(100)).String() + "%"
}
