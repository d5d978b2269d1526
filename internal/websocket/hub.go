package websocket

import (
	"context"
	"sync"

	"chat-service/internal/metrics"
)

// Hub is the registry of live connections, keyed by connection id and
// indexed by user. Only Run mutates it; readers take the read lock.
type Hub struct {
	mu sync.RWMutex

	// clients maps connection id to client
	clients map[string]*Client

	// users maps user id to that user's connections
	users map[string]map[string]*Client

	register   chan *Client
	unregister chan *Client

	// done is closed once Run has returned
	done chan struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		users:      make(map[string]map[string]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		done:       make(chan struct{}),
	}
}

// Run owns every registry mutation until ctx is done, then drops all clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.dropPending()
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register queues client for the run loop. It reports false once the hub
// has stopped, in which case the client was not added.
func (h *Hub) Register(client *Client) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister never blocks after the hub has stopped; Run already released
// every client on its way out.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Done is closed when Run returns.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// BroadcastToUser queues payload on every connection of userID. Slow
// connections drop the message rather than block the sender.
func (h *Hub) BroadcastToUser(userID string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, client := range h.users[userID] {
		if client.SendMessage(payload) {
			delivered++
		}
	}
	return delivered
}

func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetUserConnectionCount returns the number of live connections of userID.
func (h *Hub) GetUserConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	conns, ok := h.users[client.UserID]
	if !ok {
		conns = make(map[string]*Client)
		h.users[client.UserID] = conns
	}
	conns[client.ID] = client
	metrics.WebSocketConnections.Set(float64(len(h.clients)))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	if conns, ok := h.users[client.UserID]; ok {
		delete(conns, client.ID)
		if len(conns) == 0 {
			delete(h.users, client.UserID)
		}
	}
	close(client.Send)
	metrics.WebSocketConnections.Set(float64(len(h.clients)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
	h.users = make(map[string]map[string]*Client)
	metrics.WebSocketConnections.Set(0)
}

// dropPending closes clients whose registration was queued but never applied.
func (h *Hub) dropPending() {
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		default:
			return
		}
	}
}
