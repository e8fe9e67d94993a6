package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go-handicraft-ops/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

// Event types pushed to connected dashboards.
const (
	EventStockUpdate      = "stock_update"
	EventTransferUpdate   = "transfer_update"
	EventCreditNoteUpdate = "credit_note_update"
)

// Actor identifies who triggered an event.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Event struct {
	Type    string      `json:"type"`
	Action  string      `json:"action"`
	Data    interface{} `json:"data,omitempty"`
	User    *Actor      `json:"user,omitempty"`
	Message string      `json:"message,omitempty"`
}

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	done       chan struct{}
	mutex      sync.Mutex
	log        *logger.Logger
}

func NewHub(logg *logger.Logger) *Hub {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        logg,
	}
}

// Run serves the hub until ctx is cancelled, then closes every client.
// Run must be called at most once.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			count := len(h.Clients)
			h.mutex.Unlock()
			h.log.Debug(h.log.WithField(ctx, "clients", count), "websocket client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

// Publish queues ev for broadcast without blocking the caller. A nil hub drops it.
func (h *Hub) Publish(ev Event) {
	if h == nil {
		return
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error(context.Background(), "marshal websocket event", err)
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn(h.log.WithField(context.Background(), "event", ev.Type), "websocket broadcast buffer full, event dropped")
	}
}

// Serve handles one websocket connection until the peer disconnects.
func (h *Hub) Serve(c *websocket.Conn) {
	if !h.register(c) {
		c.Close()
		return
	}
	defer h.unregister(c)
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

// register hands c to Run. It reports false once the hub has stopped.
func (h *Hub) register(c *websocket.Conn) bool {
	select {
	case h.Register <- c:
		return true
	case <-h.done:
		return false
	}
}

// unregister hands c back to Run; after shutdown Run has already closed it.
func (h *Hub) unregister(c *websocket.Conn) {
	select {
	case h.Unregister <- c:
	case <-h.done:
	}
}
