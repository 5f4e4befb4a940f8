package realtime

import (
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Policy decides what happens to events that arrive while a client has a
// form open.
type Policy string

const (
	// PolicyHoldWhileEditing queues events for an editing client and
	// delivers them, one per type, when editing ends.
	PolicyHoldWhileEditing Policy = "hold_while_editing"
	// PolicyLastWriteWins delivers every event immediately.
	PolicyLastWriteWins Policy = "last_write_wins"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 64
)

func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyHoldWhileEditing, PolicyLastWriteWins:
		return Policy(s), nil
	case "":
		return PolicyHoldWhileEditing, nil
	default:
		return "", fmt.Errorf("unknown refresh policy %q", s)
	}
}

// Conn is the part of *websocket.Conn the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// client owns one connection. Only its write pump touches conn for writes;
// everyone else goes through the send queue.
type client struct {
	conn     Conn
	send     chan *ServerMessage
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.Mutex
	editing bool
	order   []domain.EventType
	held    map[domain.EventType]domain.Event
}

func newClient(conn Conn) *client {
	return &client{
		conn: conn,
		send: make(chan *ServerMessage, sendBuffer),
		done: make(chan struct{}),
		held: make(map[domain.EventType]domain.Event),
	}
}

func (c *client) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

type Hub struct {
	policy       Policy
	pingInterval time.Duration
	clients      map[string]*client
	mutex        sync.RWMutex
	log          *zap.Logger
}

func NewHub(policy Policy, log *zap.Logger) *Hub {
	if policy == "" {
		policy = PolicyHoldWhileEditing
	}
	return &Hub{
		policy:       policy,
		pingInterval: pingInterval,
		clients:      make(map[string]*client),
		log:          log.Named("realtime"),
	}
}

func (h *Hub) Policy() Policy {
	return h.policy
}

// Register adds conn under clientID and starts its write pump. An older
// connection with the same id is closed.
func (h *Hub) Register(clientID string, conn Conn) {
	c := newClient(conn)

	h.mutex.Lock()
	old, exists := h.clients[clientID]
	h.clients[clientID] = c
	h.mutex.Unlock()

	if exists {
		old.stop()
	}
	go h.writePump(clientID, c)
}

func (h *Hub) Unregister(clientID string) {
	h.mutex.Lock()
	c, exists := h.clients[clientID]
	delete(h.clients, clientID)
	h.mutex.Unlock()

	if exists {
		c.stop()
	}
}

// SetEditing marks a client as editing or not. Leaving edit mode flushes
// whatever was held in the meantime.
func (h *Hub) SetEditing(clientID string, editing bool) {
	c := h.client(clientID)
	if c == nil {
		return
	}

	c.mu.Lock()
	c.editing = editing
	var pending []domain.Event
	if !editing {
		pending = c.drain()
	}
	c.mu.Unlock()

	for _, event := range pending {
		if !h.enqueue(clientID, c, NewEventMessage(event)) {
			return
		}
	}
}

// Broadcast delivers event to every connected client, holding it for
// clients that are editing under PolicyHoldWhileEditing. It never waits on
// a socket: a client whose queue is full is dropped.
func (h *Hub) Broadcast(event domain.Event) {
	h.mutex.RLock()
	targets := make(map[string]*client, len(h.clients))
	for id, c := range h.clients {
		targets[id] = c
	}
	h.mutex.RUnlock()

	for id, c := range targets {
		if h.policy == PolicyHoldWhileEditing && c.hold(event) {
			continue
		}
		h.enqueue(id, c, NewEventMessage(event))
	}
}

func (h *Hub) SendTo(clientID string, msg *ServerMessage) bool {
	c := h.client(clientID)
	if c == nil {
		return false
	}
	return h.enqueue(clientID, c, msg)
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	clients := h.clients
	h.clients = make(map[string]*client)
	h.mutex.Unlock()

	for _, c := range clients {
		c.stop()
	}
}

func (h *Hub) client(clientID string) *client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.clients[clientID]
}

func (h *Hub) enqueue(clientID string, c *client, msg *ServerMessage) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		h.log.Warn("drop slow client", zap.String("client", clientID))
		h.remove(clientID, c)
		return false
	}
}

func (h *Hub) writePump(clientID string, c *client) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				h.log.Debug("drop client after write error", zap.String("client", clientID), zap.Error(err))
				h.remove(clientID, c)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				h.remove(clientID, c)
				return
			}
		}
	}
}

// remove unregisters c only if it is still the connection registered
// under clientID.
func (h *Hub) remove(clientID string, c *client) {
	h.mutex.Lock()
	if current, exists := h.clients[clientID]; exists && current == c {
		delete(h.clients, clientID)
	}
	h.mutex.Unlock()

	c.stop()
}

// hold queues event when the client is editing. A newer event of the same
// type replaces the queued one.
func (c *client) hold(event domain.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.editing {
		return false
	}
	if _, queued := c.held[event.Type]; !queued {
		c.order = append(c.order, event.Type)
	}
	c.held[event.Type] = event
	return true
}

func (c *client) drain() []domain.Event {
	out := make([]domain.Event, 0, len(c.order))
	for _, t := range c.order {
		out = append(out, c.held[t])
	}
	c.order = nil
	c.held = make(map[domain.EventType]domain.Event)
	return out
}
