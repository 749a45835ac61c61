package transport

import (
	"sync"

	"cockroachpoker/internal/app"
	"cockroachpoker/internal/logging"
)

var log = logging.Logger("HUB")

// Hub tracks every authenticated connection and implements
// session.Broadcaster: it is how a room's writer loop gets an Event onto
// the wire, with the privacy filtering already baked into who each
// Event's Recipients names.
//
// One user has at most one live connection; registering a second
// connection for an already-connected user displaces the first, per the
// connection-displacement rule.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client // userID -> live connection

	roomClients map[string]map[string]*Client // roomID -> userID -> connection
}

func NewHub() *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		roomClients: make(map[string]map[string]*Client),
	}
}

// register binds userID to c, displacing and closing any prior
// connection for the same user.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	prior, existed := h.clients[c.userID]
	h.clients[c.userID] = c
	h.mu.Unlock()

	if existed && prior != c {
		log.Infof("displacing prior connection for user %s", c.userID)
		prior.closeDisplaced()
	}
}

// unregister removes c if it is still the live connection for its user
// (a displaced connection must not unregister the one that replaced it).
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if h.clients[c.userID] == c {
		delete(h.clients, c.userID)
	}
	for roomID, members := range h.roomClients {
		if members[c.userID] == c {
			delete(members, c.userID)
			if len(members) == 0 {
				delete(h.roomClients, roomID)
			}
		}
	}
	h.mu.Unlock()
}

// joinRoom associates a connection with a room so Broadcast knows who to
// reach for that room's events. A connection may belong to exactly one
// room at a time; joining a new one replaces any prior association.
func (h *Hub) joinRoom(c *Client, roomID string) {
	h.mu.Lock()
	if c.roomID != "" && c.roomID != roomID {
		if members := h.roomClients[c.roomID]; members != nil {
			delete(members, c.userID)
		}
	}
	c.roomID = roomID
	if h.roomClients[roomID] == nil {
		h.roomClients[roomID] = make(map[string]*Client)
	}
	h.roomClients[roomID][c.userID] = c
	h.mu.Unlock()
}

// Broadcast implements session.Broadcaster. Each event's Recipients, if
// set, restricts delivery to those user ids; an empty Recipients list
// means every connection currently joined to roomID.
func (h *Hub) Broadcast(roomID string, events []app.Event) {
	h.mu.RLock()
	members := h.roomClients[roomID]
	targets := make([]*Client, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, e := range events {
		frame, err := encodeEvent(e)
		if err != nil {
			log.Errorf("encode event %s for room %s: %v", e.Kind, roomID, err)
			continue
		}
		for _, c := range targets {
			if len(e.Recipients) > 0 && !contains(e.Recipients, c.userID) {
				continue
			}
			c.enqueue(frame)
		}
	}
}

func contains(xs []string, v string) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
