package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/pricing"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
)

var csvHeader = []string{
	"order_number", "completed_at", "table", "staff_id", "payment_method",
	"item", "category", "size", "quantity", "unit_price", "extras", "extras_price", "line_total",
	"order_subtotal", "order_gst", "order_total",
}

// WriteCSV writes one row per order line. Order-level amounts repeat on each
// line of the same order.
func WriteCSV(w io.Writer, orders []service.Order, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, o := range orders {
		at := CompletedAt(o).In(loc).Format(time.DateTime)
		for _, it := range o.Items {
			row := []string{
				o.OrderNumber,
				at,
				fmt.Sprintf("%d", o.TableID),
				o.StaffID,
				o.PaymentMethod,
				it.MenuItem.Name,
				it.MenuItem.Category,
				it.Size,
				fmt.Sprintf("%d", it.Quantity),
				pricing.Format(it.UnitPrice),
				strings.Join(it.Extras, "; "),
				pricing.Format(it.ExtrasPrice),
				pricing.Format(it.TotalPrice),
				pricing.Format(o.Subtotal),
				pricing.Format(o.GSTAmount),
				pricing.Format(o.Total),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}

	cw.Flush()
	return cw.Error()
}
