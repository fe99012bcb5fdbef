package session

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle"
)

// Hub tracks the live connection per player per room and delivers outbound
// event batches. It is the battle manager's Notifier.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[int64]*Client
	logger *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		rooms:  make(map[string]map[int64]*Client),
		logger: logger,
	}
}

// register attaches a client, replacing any previous connection of the same
// player in the room.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.roomID]
	if !ok {
		room = make(map[int64]*Client)
		h.rooms[c.roomID] = room
	}
	if prev, ok := room[c.playerID]; ok {
		prev.closeSend()
	}
	room[c.playerID] = c
}

// unregister detaches a client if it is still the player's current one.
// Returns false when a replacement connection has already taken the slot, so
// the caller knows the player is not actually gone.
func (h *Hub) unregister(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[c.roomID]
	if !ok {
		return false
	}
	current := false
	if cur, ok := room[c.playerID]; ok && cur == c {
		delete(room, c.playerID)
		c.closeSend()
		current = true
	}
	if len(room) == 0 {
		delete(h.rooms, c.roomID)
	}
	return current
}

// outboundMessage is the wire shape of one flushed batch.
type outboundMessage struct {
	Events []battle.Event `json:"events"`
}

// Deliver sends one recipient's batch, preserving record order. A slow or
// gone connection drops the batch; reconnect resynchronizes from state.
func (h *Hub) Deliver(roomID string, playerID int64, events []battle.Event) {
	h.mu.RLock()
	c := h.rooms[roomID][playerID]
	h.mu.RUnlock()
	if c == nil {
		return
	}
	raw, err := json.Marshal(outboundMessage{Events: events})
	if err != nil {
		h.logger.Error("failed to encode event batch",
			zap.String("room_id", roomID), zap.Error(err))
		return
	}
	select {
	case c.send <- raw:
	default:
		h.logger.Warn("dropping event batch for slow connection",
			zap.String("room_id", roomID),
			zap.Int64("player_id", playerID),
		)
	}
}

// Teardown closes every connection of a finished battle after the final
// flush.
func (h *Hub) Teardown(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.rooms[roomID] {
		c.closeSend()
	}
	delete(h.rooms, roomID)
}
