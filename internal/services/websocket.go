package services

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a connected WebSocket client
type Client struct {
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

// Hub maintains the set of active clients and routes parcel events to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("User %d connected", client.UserID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("User %d disconnected", client.UserID)
		}
	}
}

// SendToUser delivers a message to every connection held by a user. A client
// whose send buffer is full is dropped.
func (h *Hub) SendToUser(userID uint, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- message:
			default:
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// ConnectedClients returns the number of connected clients
func (h *Hub) ConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// ParcelEvent is pushed to a parcel owner's open connections when one of
// their parcels is created or updated.
type ParcelEvent struct {
	Type         string `json:"type"` // parcel_created, parcel_updated
	ParcelID     uint   `json:"parcelId"`
	TrackingCode string `json:"trackingCode"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	Timestamp    int64  `json:"timestamp"`
}

// PushParcelEvent marshals and sends a parcel event to its owner.
func (h *Hub) PushParcelEvent(userID uint, event ParcelEvent) {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal parcel event: %v", err)
		return
	}
	h.SendToUser(userID, data)
}

// HandleConnection upgrades an HTTP request and attaches the resulting
// connection to the hub.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.ServeClient(userID, conn)
	return nil
}

// ServeClient registers the connection and starts its read/write pumps.
func (h *Hub) ServeClient(userID uint, conn *websocket.Conn) {
	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 16),
		Hub:    h,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		// Clients do not send data; the read loop only detects closure.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
