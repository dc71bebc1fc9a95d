package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Dashboard event types pushed over the websocket feed.
const (
	EventOrderCreated  = "order_created"
	EventEmailReceived = "email_received"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// GlobalHub is the single event hub for the whole application.
var GlobalHub = NewHub()

// Event is the wire format of one dashboard notification.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	SentAt  time.Time   `json:"sentAt"`
}

type eventClient struct {
	hub    *EventHub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

// EventHub fans dashboard events out to every connected staff client.
type EventHub struct {
	clients    map[*eventClient]bool
	broadcast  chan []byte
	register   chan *eventClient
	unregister chan *eventClient
	mu         sync.Mutex
}

func NewHub() *EventHub {
	return &EventHub{
		// Buffered so request handlers never block on a slow feed.
		broadcast:  make(chan []byte, 64),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		clients:    make(map[*eventClient]bool),
	}
}

// Run owns the client set. Start it once, from main.
func (h *EventHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("Event feed client connected", "user_id", client.userID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Event feed client disconnected", "user_id", client.userID)

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer, drop it rather than stall the hub.
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for every connected client. Never blocks: when
// the queue is full the event is dropped, the feed is advisory only.
func (h *EventHub) Broadcast(eventType string, payload interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, SentAt: time.Now()})
	if err != nil {
		slog.Error("Failed to marshal event", "type", eventType, "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		slog.Warn("Event feed queue full, dropping event", "type", eventType)
	}
}

// EventsWSHandler upgrades the connection and attaches it to the hub.
func EventsWSHandler(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}

	userID, _ := c.Get("user_id")
	uid, _ := userID.(uint)

	client := &eventClient{
		hub:    GlobalHub,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: uid,
	}
	GlobalHub.register <- client

	go client.writePump()
	go client.readPump()
}

func (cl *eventClient) writePump() {
	defer cl.conn.Close()
	for message := range cl.send {
		if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	cl.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards everything the client sends; it exists to detect closes.
func (cl *eventClient) readPump() {
	defer func() {
		cl.hub.unregister <- cl
		cl.conn.Close()
	}()
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}
