package ws

import (
	"log/slog"
	"sync"

	"github.com/Levii22/planning-poker/internal/model"
)

// Hub indexes connected clients by room and player so room events can
// be fanned out without touching room state. Registration happens only
// after the room controller has admitted the player, so the hub is an
// index over memberships the controller already accepted.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[model.RoomCode]map[model.PlayerID]*Client
	logger *slog.Logger
}

// NewHub creates an empty Hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:  make(map[model.RoomCode]map[model.PlayerID]*Client),
		logger: logger.With(slog.String("component", "hub")),
	}
}

// Register adds a client under its room and player
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.rooms[client.roomCode]
	if clients == nil {
		clients = make(map[model.PlayerID]*Client)
		h.rooms[client.roomCode] = clients
	}
	clients[client.playerID] = client

	h.logger.Debug("client registered",
		slog.String("room_code", string(client.roomCode)),
		slog.String("player_id", string(client.playerID)),
		slog.Int("room_clients", len(clients)))
}

// Unregister removes a client and closes its send channel. Closing
// under the hub lock keeps Broadcast and Send from writing to a closed
// channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.rooms[client.roomCode]
	if !ok {
		return
	}
	current, ok := clients[client.playerID]
	if !ok || current != client {
		return
	}

	delete(clients, client.playerID)
	client.closeSend()
	if len(clients) == 0 {
		delete(h.rooms, client.roomCode)
	}

	h.logger.Debug("client unregistered",
		slog.String("room_code", string(client.roomCode)),
		slog.String("player_id", string(client.playerID)))
}

// Broadcast sends a message to every client in a room. Slow clients
// have the message dropped rather than stalling the room.
func (h *Hub) Broadcast(roomCode model.RoomCode, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[roomCode] {
		select {
		case client.send <- message:
		default:
			h.logger.Warn("broadcast dropped, client buffer full",
				slog.String("room_code", string(roomCode)),
				slog.String("player_id", string(client.playerID)))
		}
	}
}

// Send delivers a message to a single player in a room. It is a no-op
// when the player has no live connection.
func (h *Hub) Send(roomCode model.RoomCode, playerID model.PlayerID, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.rooms[roomCode][playerID]
	if !ok {
		return
	}
	select {
	case client.send <- message:
	default:
		h.logger.Warn("send dropped, client buffer full",
			slog.String("room_code", string(roomCode)),
			slog.String("player_id", string(playerID)))
	}
}

// ClientCount returns the total number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.rooms {
		total += len(clients)
	}
	return total
}

// RoomClientCount returns the number of registered clients in one room
func (h *Hub) RoomClientCount(roomCode model.RoomCode) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomCode])
}
