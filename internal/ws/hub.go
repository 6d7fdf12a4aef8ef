package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

// Event represents a WebSocket message to be broadcast
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// profileEvent routes an event to one profile's room
type profileEvent struct {
	ProfileID uuid.UUID
	Event     Event
}

// Hub keeps the open orders pages of each browser profile and tells them when
// the profile's order list changed
type Hub struct {
	// Registered clients by profile ID
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client

	broadcast chan *profileEvent

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *profileEvent, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done.
// This should be called as a goroutine: go hub.Run(ctx)
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for id, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
				delete(h.rooms, id)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.profileID] == nil {
				h.rooms[client.profileID] = make(map[*Client]bool)
			}
			h.rooms[client.profileID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()

		case event := <-h.broadcast:
			message, err := json.Marshal(event.Event)
			if err != nil {
				continue
			}

			h.mu.Lock()
			for client := range h.rooms[event.ProfileID] {
				select {
				case client.send <- message:
				default:
					// Client's send buffer is full, drop it
					h.remove(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove closes the client's queue and deletes empty rooms. Caller holds mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.profileID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.profileID)
	}
}

// join and leave are no-ops once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastToProfile sends an event to every open page of one profile.
// Events sent after the hub stopped are dropped.
func (h *Hub) BroadcastToProfile(profileID uuid.UUID, event Event) {
	select {
	case h.broadcast <- &profileEvent{ProfileID: profileID, Event: event}:
	case <-h.done:
	}
}

// OrderPayload is the body of order.created / order.updated events
type OrderPayload struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// NewOrderEvent builds an order event.
func NewOrderEvent(eventType, orderID, status string) Event {
	payload, _ := json.Marshal(OrderPayload{OrderID: orderID, Status: status})
	return Event{Type: eventType, Payload: payload}
}
