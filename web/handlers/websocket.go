package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// QueryActivity is the event broadcast to connected clients after every
// handled question.
type QueryActivity struct {
	RequestID  string    `json:"request_id"`
	Question   string    `json:"question"`
	Intent     string    `json:"intent"`
	Backend    string    `json:"backend"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

// ActivityHub manages WebSocket connections and broadcasts query activity.
type ActivityHub struct {
	clients        map[*activityClient]bool
	broadcast      chan interface{}
	register       chan *activityClient
	unregister     chan *activityClient
	originPatterns []string
	mu             sync.Mutex
	ctx            context.Context
	cancel         context.CancelFunc
}

// activityClient is one WebSocket connection.
type activityClient struct {
	hub  *ActivityHub
	conn *websocket.Conn
	send chan []byte
}

// NewActivityHub creates a hub. originPatterns restricts which Origin
// headers may upgrade; empty allows same-host only.
func NewActivityHub(originPatterns []string) *ActivityHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &ActivityHub{
		clients:        make(map[*activityClient]bool),
		broadcast:      make(chan interface{}, 256),
		register:       make(chan *activityClient),
		unregister:     make(chan *activityClient),
		originPatterns: originPatterns,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Run starts the hub's message processing loop.
func (h *ActivityHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client connected (total: %d)", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("WebSocket client disconnected (total: %d)", count)

		case message := <-h.broadcast:
			data, err := json.Marshal(message)
			if err != nil {
				log.Printf("ERROR: failed to marshal WebSocket message: %v", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Send channel full, disconnect the client.
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			log.Println("WebSocket hub stopping...")
			return
		}
	}
}

// Stop gracefully shuts down the hub and all connections.
func (h *ActivityHub) Stop() {
	h.cancel()

	h.mu.Lock()
	for client := range h.clients {
		close(client.send)
		client.close()
	}
	h.clients = make(map[*activityClient]bool)
	h.mu.Unlock()
}

// Broadcast sends an event to all connected clients. Drops the event when
// the broadcast channel is full.
func (h *ActivityHub) Broadcast(event interface{}) {
	select {
	case h.broadcast <- event:
	default:
		log.Println("WARNING: WebSocket broadcast channel full, dropping event")
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *ActivityHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		log.Printf("ERROR: WebSocket upgrade failed: %v", err)
		return
	}

	client := &activityClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *activityClient) close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}
}

// writePump forwards broadcast events to the connection.
func (c *activityClient) writePump() {
	defer c.close()
	for data := range c.send {
		ctx, cancel := context.WithTimeout(c.hub.ctx, 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			return
		}
	}
}

// readPump drains client frames so control messages are processed and
// disconnects are noticed.
func (c *activityClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
	}()
	for {
		if _, _, err := c.conn.Read(c.hub.ctx); err != nil {
			return
		}
	}
}
