// Package report aggregates completed orders for the admin dashboard and the
// spreadsheet export.
package report

import (
	"cmp"
	"slices"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/enum"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/shopspring/decimal"
)

const DefaultTopItems = 10

type PaymentTotal struct {
	Method string          `json:"payment_method"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

type ItemTotal struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

type DayTotal struct {
	Date       string          `json:"date"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type HourTotal struct {
	Hour       int             `json:"hour"`
	OrderCount int             `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// Summary is the sales picture for a set of paid orders. Revenue includes GST.
type Summary struct {
	OrderCount   int             `json:"order_count"`
	ItemsSold    int             `json:"items_sold"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	GSTAmount    decimal.Decimal `json:"gst_amount"`
	Revenue      decimal.Decimal `json:"revenue"`
	AverageOrder decimal.Decimal `json:"average_order"`
	Payments     []PaymentTotal  `json:"payments"`
	TopItems     []ItemTotal     `json:"top_items"`
	Categories   []CategoryTotal `json:"categories"`
	Daily        []DayTotal      `json:"daily"`
	Hourly       []HourTotal     `json:"hourly"`
}

// Summarize aggregates the paid orders in orders. Days and hours are taken in
// loc. topN <= 0 uses DefaultTopItems.
func Summarize(orders []service.Order, loc *time.Location, topN int) Summary {
	if loc == nil {
		loc = time.Local
	}
	if topN <= 0 {
		topN = DefaultTopItems
	}

	s := Summary{
		Subtotal:   decimal.Zero,
		GSTAmount:  decimal.Zero,
		Revenue:    decimal.Zero,
		Payments:   []PaymentTotal{},
		TopItems:   []ItemTotal{},
		Categories: []CategoryTotal{},
		Daily:      []DayTotal{},
		Hourly:     []HourTotal{},
	}
	payments := map[string]*PaymentTotal{}
	items := map[string]*ItemTotal{}
	categories := map[string]*CategoryTotal{}
	days := map[string]*DayTotal{}
	hours := map[int]*HourTotal{}

	for _, o := range orders {
		if o.Status != enum.OrderStatusPaid {
			continue
		}
		s.OrderCount++
		s.Subtotal = s.Subtotal.Add(o.Subtotal)
		s.GSTAmount = s.GSTAmount.Add(o.GSTAmount)
		s.Revenue = s.Revenue.Add(o.Total)

		p := payments[o.PaymentMethod]
		if p == nil {
			p = &PaymentTotal{Method: o.PaymentMethod, Total: decimal.Zero}
			payments[o.PaymentMethod] = p
		}
		p.Count++
		p.Total = p.Total.Add(o.Total)

		at := CompletedAt(o).In(loc)
		day := at.Format("2006-01-02")
		d := days[day]
		if d == nil {
			d = &DayTotal{Date: day, Revenue: decimal.Zero}
			days[day] = d
		}
		d.OrderCount++
		d.Revenue = d.Revenue.Add(o.Total)

		h := hours[at.Hour()]
		if h == nil {
			h = &HourTotal{Hour: at.Hour(), Revenue: decimal.Zero}
			hours[at.Hour()] = h
		}
		h.OrderCount++
		h.Revenue = h.Revenue.Add(o.Total)

		for _, it := range o.Items {
			s.ItemsSold += it.Quantity

			key := it.MenuItem.ID
			if key == "" {
				key = it.MenuItem.Name
			}
			t := items[key]
			if t == nil {
				t = &ItemTotal{MenuItemID: it.MenuItem.ID, Name: it.MenuItem.Name, Revenue: decimal.Zero}
				items[key] = t
			}
			t.Quantity += it.Quantity
			t.Revenue = t.Revenue.Add(it.TotalPrice)

			cat := it.MenuItem.Category
			if cat == "" {
				cat = "Uncategorized"
			}
			c := categories[cat]
			if c == nil {
				c = &CategoryTotal{Category: cat, Revenue: decimal.Zero}
				categories[cat] = c
			}
			c.Quantity += it.Quantity
			c.Revenue = c.Revenue.Add(it.TotalPrice)
		}
	}

	if s.OrderCount > 0 {
		s.AverageOrder = s.Revenue.Div(decimal.NewFromInt(int64(s.OrderCount))).Round(2)
	}

	for _, p := range payments {
		s.Payments = append(s.Payments, *p)
	}
	slices.SortFunc(s.Payments, func(a, b PaymentTotal) int { return cmp.Compare(a.Method, b.Method) })

	for _, t := range items {
		s.TopItems = append(s.TopItems, *t)
	}
	slices.SortFunc(s.TopItems, func(a, b ItemTotal) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	if len(s.TopItems) > topN {
		s.TopItems = s.TopItems[:topN]
	}

	for _, c := range categories {
		s.Categories = append(s.Categories, *c)
	}
	slices.SortFunc(s.Categories, func(a, b CategoryTotal) int {
		if c := b.Revenue.Cmp(a.Revenue); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})

	for _, d := range days {
		s.Daily = append(s.Daily, *d)
	}
	slices.SortFunc(s.Daily, func(a, b DayTotal) int { return cmp.Compare(a.Date, b.Date) })

	for _, h := range hours {
		s.Hourly = append(s.Hourly, *h)
	}
	slices.SortFunc(s.Hourly, func(a, b HourTotal) int { return cmp.Compare(a.Hour, b.Hour) })

	return s
}

// CompletedAt is when the order was paid, falling back to its last update.
func CompletedAt(o service.Order) time.Time {
	if o.CompletedAt != nil {
		return *o.CompletedAt
	}
	return o.UpdatedAt
}
