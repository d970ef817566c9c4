package sse

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_pos/internal/models"
)

// EventType defines the SSE event name.
type EventType string

const (
	EventSaleCreated   EventType = "sale.created"
	EventPawnChanged   EventType = "pawn.status_changed"
	EventRepairChanged EventType = "repair.status_changed"
	EventAlert         EventType = "alert"
)

// roleEvents lists what each counter role may see. Managers and admins see
// everything, including the alert summary built from manager-only reports.
var roleEvents = map[models.Role][]EventType{
	models.RoleCashier: {EventSaleCreated, EventPawnChanged, EventRepairChanged},
	models.RoleStaff:   {EventRepairChanged},
}

// VisibleTo reports whether a staff member with the role receives the event.
func (t EventType) VisibleTo(role models.Role) bool {
	if role == models.RoleAdmin || role == models.RoleManager {
		return true
	}
	for _, allowed := range roleEvents[role] {
		if allowed == t {
			return true
		}
	}
	return false
}

// ParseEventTypes reads a comma separated subscription such as
// "sale.created,alert". Unknown names are ignored.
func ParseEventTypes(raw string) []EventType {
	var out []EventType
	for _, name := range strings.Split(raw, ",") {
		switch t := EventType(strings.TrimSpace(name)); t {
		case EventSaleCreated, EventPawnChanged, EventRepairChanged, EventAlert:
			out = append(out, t)
		}
	}
	return out
}

// Event is the payload broadcast to dashboard SSE clients.
type Event struct {
	Event     EventType `json:"event"`
	Number    string    `json:"number,omitempty"`
	Status    string    `json:"status,omitempty"`
	Amount    *int64    `json:"amount,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Client represents a connected SSE dashboard client.
type Client struct {
	ID     string
	Role   models.Role
	Events chan []byte

	// only, when set, narrows delivery to the subscribed event types.
	only map[EventType]bool
}

// Wants reports whether the client receives events of type t.
func (c *Client) Wants(t EventType) bool {
	if !t.VisibleTo(c.Role) {
		return false
	}
	return len(c.only) == 0 || c.only[t]
}

// Hub manages SSE client connections and broadcasts.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

// Register adds a client for a staff role and returns it for streaming. An
// empty subscription receives every event the role may see.
func (h *Hub) Register(clientID string, role models.Role, subscribe ...EventType) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &Client{
		ID:     clientID,
		Role:   role,
		Events: make(chan []byte, 64),
	}
	if len(subscribe) > 0 {
		c.only = make(map[EventType]bool, len(subscribe))
		for _, t := range subscribe {
			c.only[t] = true
		}
	}
	h.clients[clientID] = c
	log.Info().Str("client_id", clientID).Str("role", string(role)).Int("total_clients", len(h.clients)).Msg("SSE client connected")
	return c
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.Events)
		delete(h.clients, clientID)
		log.Info().Str("client_id", clientID).Int("total_clients", len(h.clients)).Msg("SSE client disconnected")
	}
}

// Broadcast sends an event to every connected client that wants it.
// Non-blocking: drops the message if a client buffer is full.
func (h *Hub) Broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal SSE event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if !c.Wants(event.Event) {
			continue
		}
		select {
		case c.Events <- data:
		default:
			log.Warn().Str("client_id", c.ID).Msg("SSE client buffer full, dropping event")
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
