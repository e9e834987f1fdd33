package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrBroadcastQueueFull is returned when the hub cannot keep up with broadcasts
var ErrBroadcastQueueFull = errors.New("websocket: broadcast queue full")

// Event is pushed to connected clients
type Event struct {
	// Type of event, e.g. "notice.published"
	Type string `json:"type"`

	// Event payload
	Payload interface{} `json:"payload"`

	// Timestamp when the event was emitted
	Timestamp time.Time `json:"timestamp"`
}

type broadcastRequest struct {
	data  []byte
	roles []string
}

// Hub maintains the set of active clients and broadcasts events to them by role
type Hub struct {
	// Registered clients organized by role
	clients map[string]map[*Client]bool

	// Outbound events
	broadcast chan broadcastRequest

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run has stopped; pending joins and leaves give up on it
	done     chan struct{}
	stopOnce sync.Once

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Logger for Hub operations
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan broadcastRequest, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run handles client registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.stopOnce.Do(func() { close(h.done) })
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case req := <-h.broadcast:
			h.deliver(req)
		}
	}
}

// Done is closed after Run returns
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// join hands the client to Run. It reports false when the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave hands the client to Run for removal; a stopped hub has already closed it
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// registerClient registers a new client to the hub
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.role]; !ok {
		h.clients[client.role] = make(map[*Client]bool)
	}
	h.clients[client.role][client] = true

	h.logger.Debug().
		Str("role", client.role).
		Int64("userID", client.userID).
		Msg("Client registered")
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	group, ok := h.clients[client.role]
	if !ok {
		return
	}
	if _, ok := group[client]; !ok {
		return
	}
	delete(group, client)
	close(client.send)
	if len(group) == 0 {
		delete(h.clients, client.role)
	}

	h.logger.Debug().
		Str("role", client.role).
		Int64("userID", client.userID).
		Msg("Client unregistered")
}

// deliver sends to every client whose role is in req.roles, or to everyone when roles is empty.
// Clients with a full send buffer are dropped.
func (h *Hub) deliver(req broadcastRequest) {
	h.mu.Lock()
	defer h.mu.Unlock()

	targets := req.roles
	if len(targets) == 0 {
		targets = make([]string, 0, len(h.clients))
		for role := range h.clients {
			targets = append(targets, role)
		}
	}

	delivered := 0
	for _, role := range targets {
		for client := range h.clients[role] {
			select {
			case client.send <- req.data:
				delivered++
			default:
				h.logger.Warn().Int64("userID", client.userID).Msg("Dropping slow websocket client")
				h.removeLocked(client)
			}
		}
	}

	h.logger.Debug().Strs("roles", req.roles).Int("clientCount", delivered).Msg("Event broadcasted")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, group := range h.clients {
		for client := range group {
			h.removeLocked(client)
		}
	}
}

// Broadcast queues an event for every client whose role is listed; no roles means all clients
func (h *Hub) Broadcast(event Event, roles ...string) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- broadcastRequest{data: data, roles: roles}:
		return nil
	default:
		return ErrBroadcastQueueFull
	}
}

// GetClientsCount returns the number of connected clients with a role, or all clients for ""
func (h *Hub) GetClientsCount(role string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if role != "" {
		return len(h.clients[role])
	}
	total := 0
	for _, group := range h.clients {
		total += len(group)
	}
	return total
}
