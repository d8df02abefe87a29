package localstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
)

// DefaultHistoryLimit bounds the completed-orders log.
const DefaultHistoryLimit = 1000

// History is the bounded log of paid orders, newest first. It implements
// service.CompletedLog.
type History struct {
	store  *Store
	limit  int
	mu     sync.RWMutex
	orders []service.Order
}

// NewHistory loads the saved log. A corrupt log is reported and replaced by
// an empty one so the till keeps working.
func NewHistory(store *Store, limit int) (*History, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	h := &History{store: store, limit: limit}

	var orders []service.Order
	if _, err := store.Get(KeyCompletedOrders, &orders); err != nil {
		return h, fmt.Errorf("load completed orders: %w", err)
	}
	if len(orders) > limit {
		orders = orders[:limit]
	}
	h.orders = orders
	return h, nil
}

// Append records o as the newest entry and drops the oldest beyond the limit.
func (h *History) Append(o service.Order) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	orders := make([]service.Order, 0, min(len(h.orders)+1, h.limit))
	orders = append(orders, o)
	for _, existing := range h.orders {
		if len(orders) == h.limit {
			break
		}
		orders = append(orders, existing)
	}
	// Kept in memory even if the write fails.
	h.orders = orders
	return h.store.Put(KeyCompletedOrders, orders)
}

// List returns up to limit orders, newest first. limit <= 0 means all.
func (h *History) List(limit int) []service.Order {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.orders)
	if limit > 0 && limit < n {
		n = limit
	}
	return append([]service.Order(nil), h.orders[:n]...)
}

// Between returns orders completed in [from, to). Zero bounds are open.
func (h *History) Between(from, to time.Time) []service.Order {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []service.Order
	for _, o := range h.orders {
		at := completedAt(o)
		if !from.IsZero() && at.Before(from) {
			continue
		}
		if !to.IsZero() && !at.Before(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Find looks up an order by number.
func (h *History) Find(orderNumber string) (service.Order, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, o := range h.orders {
		if o.OrderNumber == orderNumber {
			return o, true
		}
	}
	return service.Order{}, false
}

func completedAt(o service.Order) time.Time {
	if o.CompletedAt != nil {
		return *o.CompletedAt
	}
	return o.UpdatedAt
}
