package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"go.uber.org/zap"
)

// mockClient creates a client for testing without a real WebSocket connection
func mockClient(hub *Hub, room string) *Client {
	return &Client{
		hub:  hub,
		room: room,
		send: make(chan []byte, 256),
	}
}

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case msg := <-c.send:
		var received Event
		if err := json.Unmarshal(msg, &received); err != nil {
			t.Fatalf("failed to unmarshal message: %v", err)
		}
		return received
	case <-time.After(100 * time.Millisecond):
		t.Fatalf("client in room %s did not receive message", c.room)
	}
	return Event{}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case <-c.send:
		t.Fatalf("client in room %s should not have received a message", c.room)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTableRoom(t *testing.T) {
	if got := TableRoom(4); got != "table:4" {
		t.Errorf("expected table:4, got %s", got)
	}
}

func TestHubRegistration(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, RoomFloor)

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if !hub.rooms[RoomFloor][client] {
		t.Fatal("client not registered in floor room")
	}
}

func TestHubCleanupEmptyRoom(t *testing.T) {
	hub := startHub(t)
	room := TableRoom(2)
	client1 := mockClient(hub, room)
	client2 := mockClient(hub, room)

	hub.register <- client1
	hub.register <- client2
	time.Sleep(10 * time.Millisecond)
	if n := hub.ClientCount(); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	hub.unregister <- client1
	time.Sleep(10 * time.Millisecond)
	if n := hub.ClientCount(); n != 1 {
		t.Fatalf("expected 1 client after first unregister, got %d", n)
	}

	hub.unregister <- client2
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if hub.rooms[room] != nil {
		t.Fatal("room should be deleted when last client unregisters")
	}
}

func TestBroadcastRoomIsolation(t *testing.T) {
	hub := startHub(t)
	floor := mockClient(hub, RoomFloor)
	table1 := mockClient(hub, TableRoom(1))
	table2 := mockClient(hub, TableRoom(2))

	hub.register <- floor
	hub.register <- table1
	hub.register <- table2
	time.Sleep(10 * time.Millisecond)

	payload := json.RawMessage(`{"id":1}`)
	hub.Broadcast(Event{Type: EventTableUpdated, Payload: payload}, RoomFloor, TableRoom(1))

	for _, c := range []*Client{floor, table1} {
		got := receive(t, c)
		if got.Type != EventTableUpdated || string(got.Payload) != string(payload) {
			t.Errorf("room %s: unexpected event %+v", c.room, got)
		}
	}
	expectNothing(t, table2)
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	hub := startHub(t)
	client := mockClient(hub, TableRoom(1))
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	hub.Broadcast(Event{Type: EventOrderPaid, Payload: json.RawMessage(`{}`)}, TableRoom(9))
	expectNothing(t, client)
}

func TestHubListenerEvents(t *testing.T) {
	hub := startHub(t)
	floor := mockClient(hub, RoomFloor)
	table3 := mockClient(hub, TableRoom(3))
	table5 := mockClient(hub, TableRoom(5))

	hub.register <- floor
	hub.register <- table3
	hub.register <- table5
	time.Sleep(10 * time.Millisecond)

	var l service.Listener = hub
	l.TableUpdated(service.Table{ID: 3, Name: "Table 3", Status: "occupied"})

	got := receive(t, table3)
	if got.Type != EventTableUpdated {
		t.Fatalf("expected %s, got %s", EventTableUpdated, got.Type)
	}
	var table service.Table
	if err := json.Unmarshal(got.Payload, &table); err != nil {
		t.Fatalf("unmarshal table: %v", err)
	}
	if table.ID != 3 || table.Status != "occupied" {
		t.Errorf("unexpected table payload %+v", table)
	}
	receive(t, floor)
	expectNothing(t, table5)

	l.OrderPaid(service.Order{OrderNumber: "GJC-T5-1", TableID: 5, Status: "paid", PaymentMethod: "cash"})
	got = receive(t, table5)
	if got.Type != EventOrderPaid {
		t.Fatalf("expected %s, got %s", EventOrderPaid, got.Type)
	}
	var order service.Order
	if err := json.Unmarshal(got.Payload, &order); err != nil {
		t.Fatalf("unmarshal order: %v", err)
	}
	if order.OrderNumber != "GJC-T5-1" {
		t.Errorf("unexpected order payload %+v", order)
	}
	receive(t, floor)
	expectNothing(t, table3)
}

func TestHubRunStopsOnCancel(t *testing.T) {
	hub := NewHub(zap.NewNop().Sugar())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	client := mockClient(hub, RoomFloor)
	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	cancel()
	select {
	case <-stopped:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Run did not return after cancel")
	}

	if _, ok := <-client.send; ok {
		t.Error("client send channel should be closed")
	}
	if n := hub.ClientCount(); n != 0 {
		t.Errorf("expected no clients after shutdown, got %d", n)
	}
}

func TestBroadcastDropsWhenQueueFull(t *testing.T) {
	// Hub not running: the queue fills and Broadcast must not block.
	hub := NewHub(zap.NewNop().Sugar())
	done := make(chan struct{})
	go func() {
		for i := 0; i < cap(hub.broadcast)+10; i++ {
			hub.Broadcast(Event{Type: EventTableUpdated}, RoomFloor)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}
	if len(hub.broadcast) != cap(hub.broadcast) {
		t.Errorf("expected full queue, got %d", len(hub.broadcast))
	}
}
