package dev

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageType represents the type of a live message.
type MessageType string

const (
	MessageInput  MessageType = "input"
	MessageRender MessageType = "render"
	MessageError  MessageType = "error"
)

// Message is exchanged with browsers via WebSocket.
type Message struct {
	Type   MessageType `json:"type"`
	Target int         `json:"target,omitempty"`
	Value  string      `json:"value,omitempty"`
	HTML   string      `json:"html,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// MessageHandler handles one message read from conn. ctx is the context
// of the upgrade request.
type MessageHandler func(ctx context.Context, conn *websocket.Conn, msg Message)

// LiveHub manages WebSocket connections for live updates.
type LiveHub struct {
	clients  map[*websocket.Conn]bool
	mu       sync.RWMutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader

	onConnect func(conn *websocket.Conn)
	onMessage MessageHandler
}

// NewLiveHub creates a new hub. onConnect runs once per new client;
// onMessage runs for every decoded message. Either may be nil.
func NewLiveHub(onConnect func(conn *websocket.Conn), onMessage MessageHandler) *LiveHub {
	return &LiveHub{
		clients: make(map[*websocket.Conn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
		onConnect: onConnect,
		onMessage: onMessage,
	}
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (h *LiveHub) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := h.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	if h.onConnect != nil {
		h.onConnect(conn)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.Send(conn, Message{Type: MessageError, Error: "invalid message: " + err.Error()})
			continue
		}
		if h.onMessage != nil {
			h.onMessage(req.Context(), conn, msg)
		}
	}

	h.remove(conn)
}

// Send writes msg to a single client.
func (h *LiveHub) Send(conn *websocket.Conn, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	h.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	h.writeMu.Unlock()
	if err != nil {
		h.remove(conn)
	}
	return err
}

// Broadcast sends a message to all connected clients.
func (h *LiveHub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		h.writeMu.Lock()
		err := client.WriteMessage(websocket.TextMessage, data)
		h.writeMu.Unlock()
		if err != nil {
			h.remove(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *LiveHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.Close()
		delete(h.clients, client)
	}
}

func (h *LiveHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
