// Package queue publishes order events to a message broker so back-office
// consumers (stock, accounting) can follow sales without polling the database.
package queue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"go.uber.org/zap"
)

const QueueOrdersPaid = "pos-orders-paid"

const publishTimeout = 5 * time.Second

// Broker is the publishing side of a message broker.
type Broker interface {
	Publish(ctx context.Context, queueName string, message []byte) error
}

// OrderPaidMessage is the body published for every paid order.
type OrderPaidMessage struct {
	Event string        `json:"event"`
	Order service.Order `json:"order"`
}

// OrderEvents forwards engine events to a Broker. Publishing is best-effort
// and runs off the caller's goroutine: failures are logged and never reach
// the till. Call Wait before closing the broker.
type OrderEvents struct {
	broker  Broker
	logger  *zap.SugaredLogger
	pending sync.WaitGroup
}

func NewOrderEvents(broker Broker, logger *zap.SugaredLogger) *OrderEvents {
	return &OrderEvents{broker: broker, logger: logger}
}

// TableUpdated implements service.Listener. Table churn stays on the WebSocket.
func (e *OrderEvents) TableUpdated(service.Table) {}

// OrderPaid implements service.Listener.
func (e *OrderEvents) OrderPaid(o service.Order) {
	body, err := json.Marshal(OrderPaidMessage{Event: "order.paid", Order: o})
	if err != nil {
		e.logger.Errorw("marshal order.paid", "order_number", o.OrderNumber, "error", err)
		return
	}

	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		e.publish(o.OrderNumber, body)
	}()
}

// Wait blocks until every queued publish has finished or timed out.
func (e *OrderEvents) Wait() {
	e.pending.Wait()
}

func (e *OrderEvents) publish(orderNumber string, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := e.broker.Publish(ctx, QueueOrdersPaid, body); err != nil {
		e.logger.Warnw("publish order.paid", "order_number", orderNumber, "queue", QueueOrdersPaid, "error", err)
		return
	}
	e.logger.Debugw("published order.paid", "order_number", orderNumber)
}
