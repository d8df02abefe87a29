package ws

import (
	"encoding/json"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
)

// Event types pushed to terminals.
const (
	EventTableUpdated = "table.updated"
	EventOrderPaid    = "order.paid"
)

// TableUpdated implements service.Listener.
func (h *Hub) TableUpdated(t service.Table) {
	h.publish(EventTableUpdated, t.ID, t)
}

// OrderPaid implements service.Listener.
func (h *Hub) OrderPaid(o service.Order) {
	h.publish(EventOrderPaid, o.TableID, o)
}

func (h *Hub) publish(eventType string, tableID int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Errorw("marshal ws payload", "type", eventType, "error", err)
		return
	}
	h.Broadcast(Event{Type: eventType, Payload: payload}, RoomFloor, TableRoom(tableID))
}
