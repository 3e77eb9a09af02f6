package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"video-consulta-sync/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// InboundHandler receives every frame a client sends. Implemented by the
// room service; the hub itself only moves bytes.
type InboundHandler interface {
	HandleConnect(client *Client)
	HandleFrame(client *Client, data []byte)
	HandleDisconnect(client *Client)
}

type Hub struct {
	// Registered clients map: RoomID -> List of Clients (both call parties)
	rooms map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance room fanout
	rdb *redis.Client

	// Inbound frame routing
	handler InboundHandler

	// Dedicated Logger
	logger logger.ILogger

	// Instance identity, used to skip our own Redis fanout messages
	instanceID string
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
		instanceID: uuid.NewString(),
	}
}

// SetHandler installs the inbound frame router. Must be called before Run.
func (h *Hub) SetHandler(handler InboundHandler) {
	h.handler = handler
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.rooms[client.RoomID] = append(h.rooms[client.RoomID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{
				"room_id": client.RoomID,
				"role":    client.Role,
			})
			if h.handler != nil {
				h.handler.HandleConnect(client)
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.RoomID]; ok {
				for i, c := range clients {
					if c == client {
						h.rooms[client.RoomID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.rooms[client.RoomID]) == 0 {
					delete(h.rooms, client.RoomID)
					h.logger.Info("Hub", "Room emptied", map[string]interface{}{"room_id": client.RoomID})
				}
			}
			h.mu.Unlock()
			if h.handler != nil {
				h.handler.HandleDisconnect(client)
			}
		}
	}
}

// RoomSize returns how many clients are connected to a room on this
// instance.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastToRoom sends a raw frame to every client in the room except the
// sender (pass nil to reach everyone), then publishes to Redis so other
// instances hosting the same room can deliver too.
func (h *Hub) BroadcastToRoom(roomID string, data []byte, except *Client) {
	h.deliverLocal(roomID, data, except)

	// Publish for other instances hosting the same room; our own
	// subscription ignores the origin id.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"room_id": roomID,
			"origin":  h.instanceID,
			"message": json.RawMessage(data),
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "consulta_room_events", jsonPayload)
	}
}

func (h *Hub) deliverLocal(roomID string, data []byte, except *Client) {
	h.mu.RLock()
	clients := h.rooms[roomID]
	h.mu.RUnlock()

	for _, client := range clients {
		if client == except {
			continue
		}
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{
				"room_id": roomID,
				"role":    client.Role,
			})
			// The unregister branch owns closing Send; closing it here
			// too would close the channel twice.
			h.unregister <- client
		}
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to the shared room-events channel. When a
	// message arrives, deliver it to any clients of that room hosted here.
	// The publishing instance already delivered locally, so the payload
	// carries the origin instance fanout responsibility only.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "consulta_room_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			RoomID  string          `json:"room_id"`
			Origin  string          `json:"origin"`
			Message json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}
		if payload.RoomID == "" || payload.Origin == h.instanceID {
			continue
		}
		h.deliverLocal(payload.RoomID, payload.Message, nil)
	}
}
