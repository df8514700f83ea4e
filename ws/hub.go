package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"nexalisServer/coordinator"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ClientConnection represents a connected client with their subscriptions
type ClientConnection struct {
	ID            string
	Conn          *websocket.Conn
	Subscriptions map[string]bool // crash, session
	mu            sync.RWMutex
	writeMutex    sync.Mutex // Protects websocket writes
	Send          chan []byte
}

// writeJSON safely writes JSON to the websocket with mutex protection
func (c *ClientConnection) writeJSON(v interface{}) error {
	c.writeMutex.Lock()
	defer c.writeMutex.Unlock()
	return c.Conn.WriteJSON(v)
}

var (
	clients      = make(map[*ClientConnection]bool)
	clientsMutex sync.RWMutex

	crashBroadcast   = make(chan interface{}, 100)
	sessionBroadcast = make(chan interface{}, 100)
	clientRegister   = make(chan *ClientConnection)
	clientUnregister = make(chan *ClientConnection)

	clientIDCounter int64

	hubOnce sync.Once
)

// ClientMessage is the envelope for messages from clients
type ClientMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data,omitempty"`
}

// StartHub launches the central event dispatcher. Safe to call more
// than once.
func StartHub() {
	hubOnce.Do(func() {
		go runEventHub()
	})
}

// PublishCoordinatorEvent forwards a global timing event to session
// subscribers. Wired as a coordinator listener from main.
func PublishCoordinatorEvent(ev coordinator.Event) {
	message := map[string]interface{}{
		"type": string(ev.Type),
		"data": ev,
	}
	select {
	case sessionBroadcast <- message:
	default:
		log.Printf("⚠️  Session broadcast buffer full, dropping %s", ev.Type)
	}
}

// runEventHub is the central message dispatcher
func runEventHub() {
	log.Println("🚀 WebSocket event hub started")

	for {
		select {
		case client := <-clientRegister:
			clientsMutex.Lock()
			clients[client] = true
			clientsMutex.Unlock()
			log.Printf("✅ Client registered: %s (Total: %d)", client.ID, len(clients))

		case client := <-clientUnregister:
			clientsMutex.Lock()
			if _, ok := clients[client]; ok {
				delete(clients, client)
				close(client.Send)
			}
			clientsMutex.Unlock()
			log.Printf("👋 Client unregistered: %s (Total: %d)", client.ID, len(clients))

		case message := <-crashBroadcast:
			broadcastToSubscribers("crash", message)

		case message := <-sessionBroadcast:
			broadcastToSubscribers("session", message)
		}
	}
}

// broadcastToSubscribers sends message to all clients subscribed to a channel
func broadcastToSubscribers(channel string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("❌ Failed to marshal message for %s: %v", channel, err)
		return
	}

	clientsMutex.RLock()
	defer clientsMutex.RUnlock()

	for client := range clients {
		client.mu.RLock()
		subscribed := client.Subscriptions[channel]
		client.mu.RUnlock()

		if subscribed {
			select {
			case client.Send <- data:
			default:
				log.Printf("⚠️  Client %s send buffer full, skipping message", client.ID)
			}
		}
	}
}

// HandleWS is the single WebSocket endpoint
func HandleWS(w http.ResponseWriter, r *http.Request) {
	log.Println("📥 WebSocket connection from:", r.RemoteAddr)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("❌ WebSocket upgrade failed:", err)
		return
	}

	client := &ClientConnection{
		ID:            generateClientID(),
		Conn:          conn,
		Subscriptions: make(map[string]bool),
		Send:          make(chan []byte, 256),
	}

	clientRegister <- client

	go client.writePump()
	go client.readPump()
}

func generateClientID() string {
	id := atomic.AddInt64(&clientIDCounter, 1)
	return fmt.Sprintf("client-%d-%d", id, time.Now().UnixMilli())
}

// writePump sends messages from the Send channel to the WebSocket
func (c *ClientConnection) writePump() {
	defer func() {
		c.Conn.Close()
	}()

	for message := range c.Send {
		c.writeMutex.Lock()
		err := c.Conn.WriteMessage(websocket.TextMessage, message)
		c.writeMutex.Unlock()

		if err != nil {
			log.Printf("❌ Write error for client %s: %v", c.ID, err)
			return
		}
	}
}

// readPump reads messages from the WebSocket and handles subscriptions/requests
func (c *ClientConnection) readPump() {
	defer func() {
		clientUnregister <- c
		c.Conn.Close()
	}()

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("❌ Read error for client %s: %v", c.ID, err)
			}
			break
		}

		var msg ClientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Printf("❌ Failed to parse message from client %s: %v", c.ID, err)
			continue
		}

		c.handleMessage(msg)
	}
}

// handleMessage processes incoming client messages
func (c *ClientConnection) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case "subscribe":
		channel, ok := msg.Data["channel"].(string)
		if !ok {
			return
		}
		c.mu.Lock()
		c.Subscriptions[channel] = true
		c.mu.Unlock()
		log.Printf("📡 Client %s subscribed to: %s", c.ID, channel)

		c.sendInitialData(channel)

	case "unsubscribe":
		channel, ok := msg.Data["channel"].(string)
		if !ok {
			return
		}
		c.mu.Lock()
		delete(c.Subscriptions, channel)
		c.mu.Unlock()
		log.Printf("📴 Client %s unsubscribed from: %s", c.ID, channel)

	case "crash_bet":
		c.handleCrashBet(msg.Data)

	case "crash_cashout":
		c.handleCrashCashout(msg.Data)

	default:
		log.Printf("⚠️  Unknown message type from client %s: %s", c.ID, msg.Type)
	}
}

// sendInitialData sends initial state when client subscribes to a channel
func (c *ClientConnection) sendInitialData(channel string) {
	switch channel {
	case "crash":
		history := GetCrashHistory()
		historyMsg := map[string]interface{}{
			"type":    "crash_history",
			"history": history,
		}
		if err := c.writeJSON(historyMsg); err != nil {
			log.Printf("⚠️  Failed to send crash history to client %s: %v", c.ID, err)
			return
		}

		if snapshot := CurrentCrashSnapshot(); snapshot != nil {
			c.writeJSON(map[string]interface{}{
				"type": "crash_state",
				"data": snapshot,
			})
		}
		log.Printf("📨 Client %s subscribed to crash - sent %d history items", c.ID, len(history))

	case "session":
		// Timing updates arrive on the next global beat
		log.Printf("📨 Client %s subscribed to session events", c.ID)
	}
}

func (c *ClientConnection) handleCrashBet(data map[string]interface{}) {
	playerID, _ := data["playerId"].(string)
	amount, _ := data["amount"].(float64)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := PlaceCrashBet(ctx, playerID, amount); err != nil {
		c.writeJSON(map[string]interface{}{
			"type":  "error",
			"error": err.Error(),
		})
		return
	}
	c.writeJSON(map[string]interface{}{
		"type": "crash_bet_accepted",
		"data": map[string]interface{}{
			"playerId": playerID,
			"amount":   amount,
		},
	})
}

func (c *ClientConnection) handleCrashCashout(data map[string]interface{}) {
	playerID, _ := data["playerId"].(string)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payout, multiplier, err := CrashCashout(ctx, playerID)
	if err != nil {
		c.writeJSON(map[string]interface{}{
			"type":  "error",
			"error": err.Error(),
		})
		return
	}
	c.writeJSON(map[string]interface{}{
		"type": "crash_cashout_accepted",
		"data": map[string]interface{}{
			"playerId":   playerID,
			"payout":     payout,
			"multiplier": multiplier,
		},
	})
}
