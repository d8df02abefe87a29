package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// RoomFloor receives every event. Terminals watching a single table join
// that table's room instead.
const RoomFloor = "floor"

// TableRoom returns the room name for one table.
func TableRoom(tableID int) string {
	return fmt.Sprintf("table:%d", tableID)
}

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// roomEvent is an internal struct for routing events to rooms
type roomEvent struct {
	Rooms []string
	Event Event
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Registered clients by room
	rooms map[string]map[*Client]bool

	// Inbound messages from clients (register/unregister)
	register   chan *Client
	unregister chan *Client

	// Outbound messages to broadcast
	broadcast chan *roomEvent

	// Mutex for thread-safe room access
	mu sync.RWMutex

	// Closed when Run returns
	done chan struct{}

	logger *zap.SugaredLogger
}

// NewHub creates a new Hub instance
func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *roomEvent, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for room, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.room] == nil {
				h.rooms[client.room] = make(map[*Client]bool)
			}
			h.rooms[client.room][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.room]; ok {
				if _, exists := clients[client]; exists {
					delete(clients, client)
					close(client.send)
					// Clean up empty rooms
					if len(clients) == 0 {
						delete(h.rooms, client.room)
					}
				}
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			// Marshal event to JSON once
			message, err := json.Marshal(event.Event)
			if err != nil {
				h.logger.Errorw("marshal ws event", "type", event.Event.Type, "error", err)
				continue
			}

			h.mu.Lock()
			for _, room := range event.Rooms {
				for client := range h.rooms[room] {
					select {
					case client.send <- message:
					default:
						// Client's send buffer is full, close and unregister
						close(client.send)
						delete(h.rooms[room], client)
					}
				}
				if len(h.rooms[room]) == 0 {
					delete(h.rooms, room)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues event for every client in rooms. It never blocks: when
// the queue is full the event is dropped and logged.
func (h *Hub) Broadcast(event Event, rooms ...string) {
	select {
	case h.broadcast <- &roomEvent{Rooms: rooms, Event: event}:
	default:
		h.logger.Warnw("ws broadcast queue full, dropping event", "type", event.Type)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, clients := range h.rooms {
		n += len(clients)
	}
	return n
}
