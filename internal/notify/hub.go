package notify

import (
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
)

// Hub tracks subscribed clients per group and fans broadcast payloads out
// to them. Groups are opaque names; the hub does not know about rooms or
// matches.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	stop chan struct{}
	done chan struct{}

	mu     sync.RWMutex
	groups map[string]map[*Client]bool
}

// NewHub creates an empty hub. Run must be started in its own goroutine.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		groups:     make(map[string]map[*Client]bool),
	}
}

// Run processes client registrations until Stop is called.
func (h *Hub) Run() {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			return
		case client, ok := <-h.Register:
			if !ok {
				return
			}
			h.mu.Lock()
			if _, exists := h.groups[client.Group]; !exists {
				h.groups[client.Group] = make(map[*Client]bool)
			}
			h.groups[client.Group][client] = true
			log.Debug("Client registered", "group", client.Group, "clients", len(h.groups[client.Group]))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, exists := h.groups[client.Group]; exists {
				if _, registered := clients[client]; registered {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.groups, client.Group)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop terminates the run loop and waits for it to exit. Client pumps
// are not torn down here; the http server closing their connections is
// what ends them.
func (h *Hub) Stop() {
	close(h.stop)
	<-h.done
}

// BroadcastToGroup marshals the payload and sends it to every client in
// the group. Clients whose send buffer is full are skipped.
func (h *Hub) BroadcastToGroup(group string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, exists := h.groups[group]
	if !exists {
		log.Debug("No clients in group to broadcast to", "group", group)
		return nil
	}
	for client := range clients {
		select {
		case client.send <- data:
		default:
			log.Warn("Client send buffer full, skipping", "group", group)
		}
	}
	return nil
}

// GroupSize reports how many clients are subscribed to a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}
