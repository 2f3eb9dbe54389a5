// internal/live/hub.go
//
// Fan-out of game updates to websocket clients.
// Each game ID has its own set of clients; Publish never blocks the caller,
// slow clients simply miss messages.

package live

import (
	"encoding/json"
	"sync"
)

// Message is the envelope written to clients.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Client struct {
	hub    *Hub
	gameID string
	send   chan []byte
}

// Send exposes the client's outgoing queue; it is closed on Unsubscribe.
func (c *Client) Send() <-chan []byte { return c.send }

type Hub struct {
	mu      sync.Mutex
	clients map[string]map[*Client]struct{}
	buffer  int
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{}), buffer: 16}
}

func (h *Hub) Subscribe(gameID string) *Client {
	c := &Client{hub: h, gameID: gameID, send: make(chan []byte, h.buffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[gameID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[gameID] = set
	}
	set[c] = struct{}{}
	return c
}

func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.gameID]
	if !ok {
		return
	}
	if _, ok := set[c]; ok {
		delete(set, c)
		close(c.send)
	}
	if len(set) == 0 {
		delete(h.clients, c.gameID)
	}
}

func encode(typ string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Payload: data})
}

// Publish sends a typed payload to every client watching gameID.
func (h *Hub) Publish(gameID, typ string, payload any) {
	msg, err := encode(typ, payload)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[gameID] {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Send queues a typed payload for c alone. It is a no-op once c is unsubscribed.
func (h *Hub) Send(c *Client, typ string, payload any) {
	msg, err := encode(typ, payload)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.gameID][c]; !ok {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// Watchers returns the number of clients subscribed to gameID.
func (h *Hub) Watchers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[gameID])
}
