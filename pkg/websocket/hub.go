package websocket

import (
	"encoding/json"
	"sync"

	"github.com/se360/ride-dispatch/pkg/logger"
)

// Hub maintains active driver connections and routes pushed messages
// to them by driver ID
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Message is an envelope pushed down a driver connection
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new WebSocket hub
func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Driver connected",
				logger.String("client_id", client.ID),
				logger.String("driver_id", client.DriverID),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
				h.logger.Info("Driver disconnected",
					logger.String("client_id", client.ID),
					logger.String("driver_id", client.DriverID),
				)
			}
			h.mu.Unlock()
		}
	}
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToDriver pushes a message to every live connection of one
// driver. Returns false when the driver has no connection.
func (h *Hub) SendToDriver(driverID string, message Message) bool {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal message", logger.Err(err))
		return false
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := false
	for client := range h.clients {
		if client.DriverID != driverID {
			continue
		}
		select {
		case client.Send <- data:
			sent = true
		default:
			h.logger.Warn("Driver send buffer full",
				logger.String("driver_id", driverID),
				logger.String("client_id", client.ID),
			)
		}
	}

	return sent
}

// GetActiveConnections returns the number of active connections
func (h *Hub) GetActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
