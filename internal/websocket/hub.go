package websocket

import (
	"encoding/json"
	"sync"

	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"

	"github.com/google/uuid"
)

// Hub tracks connected clients so server-side news (finished ingest jobs)
// can be pushed to all of them.
type Hub struct {
	clients map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	stop       chan struct{}

	mu     sync.RWMutex
	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		stop:       make(chan struct{}),
		logger:     log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			h.logger.Debug("WEBSOCKET", "Client registered", map[string]interface{}{"client_id": client.ID.String()})

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client.ID)
			h.mu.Unlock()
			h.logger.Debug("WEBSOCKET", "Client unregistered", map[string]interface{}{"client_id": client.ID.String()})

		case message := <-h.broadcast:
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Send <- message:
				default:
					// slow client; it will catch up on the next answer
					h.logger.Warn("WEBSOCKET", "Dropped broadcast for slow client", map[string]interface{}{"client_id": client.ID.String()})
				}
			}
			h.mu.RUnlock()

		case <-h.stop:
			return
		}
	}
}

// Broadcast queues v, encoded as JSON, for every connected client.
func (h *Hub) Broadcast(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("WEBSOCKET", "Failed to encode broadcast", map[string]interface{}{"error": err.Error()})
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("WEBSOCKET", "Broadcast queue full, message dropped", nil)
	}
}

// join reports false when the hub is shutting down.
func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.stop:
		return false
	}
}

// leave unregisters c unless the hub has already stopped.
func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.stop:
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Stop() {
	close(h.stop)
}
