// internal/notify/hub.go
package notify

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"bookhaven/pkg/logger"
)

// EventTypeAnnouncement is pushed to connected clients when an announcement
// is created or refreshed.
const EventTypeAnnouncement = "ReceiveAnnouncement"

// GroupAll is the broadcast group every connection joins.
const GroupAll = "all"

// UserGroup names the per-user group a connection joins on (re)connect.
func UserGroup(userID uuid.UUID) string {
	return fmt.Sprintf("user-%s", userID)
}

// Event is the raw message fanned out to a group. Time-gating of
// future-dated announcements happens on the receiver, not here: server and
// client clocks may disagree, so the hub pushes unconditionally.
type Event struct {
	Group string      `json:"group"`
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
}

// Client is one open transport session.
type Client struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Outbound chan Event
	done     chan struct{}

	groups map[string]bool // guarded by the hub mutex
}

// Hub is an explicit registry of group name to open connections. Membership
// is a set: re-joining a group a connection already belongs to changes
// nothing, so reconnect storms never cause duplicate deliveries.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]bool
	log    *logger.Logger
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		groups: make(map[string]map[*Client]bool),
		log:    log.With("component", "notify"),
	}
}

// NewClient creates a session handle for a connected user. The outbound
// buffer absorbs short bursts; Broadcast drops instead of blocking when a
// slow consumer falls behind.
func (h *Hub) NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:       uuid.New(),
		UserID:   userID,
		Outbound: make(chan Event, 16),
		done:     make(chan struct{}),
		groups:   make(map[string]bool),
	}
}

// Join adds the client to a group. Idempotent.
func (h *Hub) Join(client *Client, group string) {
	if group == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	client.groups[group] = true
	members, ok := h.groups[group]
	if !ok {
		members = make(map[*Client]bool)
		h.groups[group] = members
	}
	members[client] = true

	h.log.Debug("client joined group", "client_id", client.ID, "group", group)
}

// Leave removes the client from a group. Idempotent.
func (h *Hub) Leave(client *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, group)
}

func (h *Hub) leaveLocked(client *Client, group string) {
	delete(client.groups, group)
	if members, ok := h.groups[group]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
}

// RemoveClient tears down all of the client's memberships. Called on
// disconnect.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for group := range client.groups {
		h.leaveLocked(client, group)
	}
	h.log.Debug("client removed", "client_id", client.ID)
}

// Broadcast delivers the event to every connection currently in its group,
// best-effort and at most once per open connection. There is no outbound
// queue: a disconnected client catches up through the announcements query.
func (h *Hub) Broadcast(event Event) {
	if event.Group == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.groups[event.Group] {
		select {
		case client.Outbound <- event:
		default:
			h.log.Warn("dropping event, client buffer full", "client_id", client.ID, "group", event.Group)
		}
	}
}

// CloseClient signals the client's serve loop to stop and removes it from
// every group.
func (h *Hub) CloseClient(client *Client) {
	h.RemoveClient(client)
	close(client.done)
}

// Shutdown closes every connected client. Open event streams hold their
// handlers until done is signalled, so this has to run before the HTTP
// server's graceful shutdown or Shutdown would wait on them forever.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make(map[*Client]bool)
	for _, members := range h.groups {
		for client := range members {
			clients[client] = true
		}
	}
	h.mu.Unlock()

	for client := range clients {
		h.CloseClient(client)
	}
	h.log.Info("hub shut down", "clients", len(clients))
}
