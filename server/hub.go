package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pursuit/shared"
)

const (
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	clientBuffer = 64
)

type client struct {
	name string
	send chan []byte
}

// Hub fans cycle events out to websocket and SSE clients. New clients get the
// latest event first so they can draw the board straight away.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
	closed  bool
}

// NewHub creates a hub with no clients
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow connections from any origin
			},
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Run broadcasts every event from events until the channel is closed
func (h *Hub) Run(events <-chan shared.CycleEvent) {
	for ev := range events {
		h.Broadcast(ev)
	}
	h.logger.Println("[Hub] Event stream ended")
}

// Broadcast sends ev to every client. A client that cannot keep up is dropped.
func (h *Hub) Broadcast(ev shared.CycleEvent) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.logger.Printf("[Hub] Failed to encode cycle %d: %v", ev.Cycle, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Printf("[Hub] Client %s is too slow, disconnecting", c.name)
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) register(name string) *client {
	c := &client{name: name, send: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(c.send)
		return c
	}
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c] = struct{}{}
	h.logger.Printf("[Hub] Client %s connected (%d total)", name, len(h.clients))
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		h.logger.Printf("[Hub] Client %s disconnected", c.name)
	}
}

// ServeWS upgrades the request and streams events as JSON text messages
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("[Hub] Failed to upgrade connection: %v", err)
		return
	}
	c := h.register("ws:" + r.RemoteAddr)
	go h.writePump(conn, c)

	// reading keeps control frames flowing and notices when the peer leaves
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.unregister(c)
}

func (h *Hub) writePump(conn *websocket.Conn, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.logger.Printf("[Hub] Write to %s failed: %v", c.name, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.logger.Printf("[Hub] Ping to %s failed: %v", c.name, err)
				return
			}
		}
	}
}
