package zoneserver

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendBuffer = 64

// client is one websocket connection inside a zone. All writes to the
// connection go through the send channel and a single writePump
// goroutine, so concurrent broadcasts never interleave frames.
type client struct {
	conn          *websocket.Conn
	send          chan []byte
	characterID   string
	participantID string
	name          string

	// interactions counts quota-relevant commands. Only the client's
	// own read loop touches it.
	interactions int
}

func newClient(conn *websocket.Conn, characterID, name string) *client {
	c := &client{
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
		characterID:   characterID,
		participantID: uuid.NewString(),
		name:          name,
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// stop closes the send channel, which ends writePump and closes the
// underlying connection. Callers must guarantee it runs at most once;
// zone.remove provides that guarantee.
func (c *client) stop() {
	close(c.send)
}

// zone is one room of connected clients plus its recent-event ring.
type zone struct {
	id          string
	recentLimit int

	mu      sync.RWMutex
	clients map[*client]bool
	recent  []gameEvent
}

func (z *zone) add(c *client) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.clients[c] = true
}

// remove takes the client out of the zone and reports whether it was
// still a member. Exactly one caller sees true, which makes it the
// owner of the departure broadcast and the client stop.
func (z *zone) remove(c *client) bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	if _, ok := z.clients[c]; !ok {
		return false
	}
	delete(z.clients, c)
	return true
}

// broadcast queues data on every member except the excluded one.
// Sends never block; clients whose buffers are full are returned so
// the caller can drop them.
func (z *zone) broadcast(data []byte, except *client) []*client {
	z.mu.RLock()
	targets := make([]*client, 0, len(z.clients))
	for c := range z.clients {
		if c != except {
			targets = append(targets, c)
		}
	}
	z.mu.RUnlock()

	var slow []*client
	for _, c := range targets {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	return slow
}

func (z *zone) record(ev gameEvent) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.recent = append(z.recent, ev)
	if len(z.recent) > z.recentLimit {
		z.recent = z.recent[len(z.recent)-z.recentLimit:]
	}
}

func (z *zone) recentEvents() []gameEvent {
	z.mu.RLock()
	defer z.mu.RUnlock()
	out := make([]gameEvent, len(z.recent))
	copy(out, z.recent)
	return out
}

func (z *zone) activeUsers() []zoneUser {
	z.mu.RLock()
	defer z.mu.RUnlock()
	users := make([]zoneUser, 0, len(z.clients))
	for c := range z.clients {
		users = append(users, zoneUser{CharacterID: c.characterID, Name: c.name})
	}
	return users
}

func (z *zone) size() int {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return len(z.clients)
}

// hub owns the zone set. Zones are created on first join and kept for
// the life of the server so their recent rings survive reconnects.
type hub struct {
	recentLimit int

	mu    sync.RWMutex
	zones map[string]*zone
}

func newHub(recentLimit int) *hub {
	return &hub{
		recentLimit: recentLimit,
		zones:       make(map[string]*zone),
	}
}

func (h *hub) zone(id string) *zone {
	h.mu.Lock()
	defer h.mu.Unlock()
	z, ok := h.zones[id]
	if !ok {
		z = &zone{
			id:          id,
			recentLimit: h.recentLimit,
			clients:     make(map[*client]bool),
		}
		h.zones[id] = z
	}
	return z
}

func (h *hub) stats() (zones, clients int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, z := range h.zones {
		clients += z.size()
	}
	return len(h.zones), clients
}
