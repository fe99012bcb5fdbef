package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle"
)

// Engine is the slice of the battle manager the session layer drives.
type Engine interface {
	HandleJoin(ctx context.Context, roomID string, playerID int64, ticket string) error
	HandlePlayCard(ctx context.Context, roomID string, playerID int64, intent battle.PlayCardIntent) error
	HandleAttack(ctx context.Context, roomID string, playerID int64, intent battle.AttackIntent) error
	HandleEndTurn(ctx context.Context, roomID string, playerID int64) error
	HandleSurrender(ctx context.Context, roomID string, playerID int64) error
	HandleDisconnect(ctx context.Context, roomID string, playerID int64) error
}

// inboundMessage is the wire shape of one player intent.
type inboundMessage struct {
	Action          string `json:"action"`
	BattleCardID    int    `json:"battle_card_id,omitempty"`
	TileID          *int64 `json:"tile_id,omitempty"`
	TargetTileID    *int64 `json:"target_tile_id,omitempty"`
	TargetAvatarIdx *int   `json:"target_avatar_idx,omitempty"`
}

// Client is the per-connection actor: one goroutine reads intents, one
// writes outbound batches and heartbeats.
type Client struct {
	hub      *Hub
	engine   Engine
	conn     *websocket.Conn
	send     chan []byte
	roomID   string
	playerID int64
	ticket   string
	logger   *zap.Logger

	pingInterval time.Duration
	writeTimeout time.Duration

	closeOnce sync.Once
}

func newClient(hub *Hub, engine Engine, conn *websocket.Conn, claims *TicketClaims, pingInterval, writeTimeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		hub:          hub,
		engine:       engine,
		conn:         conn,
		send:         make(chan []byte, 32),
		roomID:       claims.RoomID,
		playerID:     claims.PlayerID,
		ticket:       claims.Ticket,
		logger:       logger,
		pingInterval: pingInterval,
		writeTimeout: writeTimeout,
	}
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// run joins the battle and drives the pumps until the connection dies, then
// reports the disconnect to the engine. A client displaced by a fresh
// connection of the same player stays silent: the player is still live, and
// a spurious grace episode here could complete the battle under them.
func (c *Client) run(ctx context.Context) {
	c.hub.register(c)
	defer func() {
		if !c.hub.unregister(c) {
			return
		}
		dctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.engine.HandleDisconnect(dctx, c.roomID, c.playerID); err != nil {
			c.logger.Error("disconnect handling failed", zap.Error(err))
		}
	}()

	if err := c.engine.HandleJoin(ctx, c.roomID, c.playerID, c.ticket); err != nil {
		c.logger.Warn("join rejected", zap.Error(err))
		return
	}

	go c.writePump()
	c.readPump(ctx)
}

// readPump consumes intents until the connection breaks. Missing two
// consecutive heartbeat responses exceeds the read deadline and ends the
// loop.
func (c *Client) readPump(ctx context.Context) {
	pongWait := 2 * c.pingInterval
	c.conn.SetReadLimit(4096)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("connection closed unexpectedly", zap.Error(err))
			}
			return
		}
		// Inbound traffic counts as liveness.
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("malformed message", zap.Error(err))
			continue
		}
		if err := c.dispatch(ctx, msg); err != nil {
			c.logger.Error("intent failed",
				zap.String("action", msg.Action),
				zap.Error(err),
			)
		}
	}
}

func (c *Client) dispatch(ctx context.Context, msg inboundMessage) error {
	switch msg.Action {
	case "play_card":
		return c.engine.HandlePlayCard(ctx, c.roomID, c.playerID, battle.PlayCardIntent{
			BattleCardID:    msg.BattleCardID,
			TileID:          msg.TileID,
			TargetTileID:    msg.TargetTileID,
			TargetAvatarIdx: msg.TargetAvatarIdx,
		})
	case "attack":
		if msg.TileID == nil {
			return c.sendError("invalid_payload", "attack requires tile_id")
		}
		return c.engine.HandleAttack(ctx, c.roomID, c.playerID, battle.AttackIntent{
			TileID:       *msg.TileID,
			TargetTileID: msg.TargetTileID,
		})
	case "end_turn":
		return c.engine.HandleEndTurn(ctx, c.roomID, c.playerID)
	case "surrender":
		return c.engine.HandleSurrender(ctx, c.roomID, c.playerID)
	default:
		return c.sendError("unknown_action", "unknown action "+msg.Action)
	}
}

func (c *Client) sendError(code, message string) error {
	raw, err := json.Marshal(outboundMessage{Events: []battle.Event{{
		Type:    battle.EventError,
		Payload: map[string]any{"code": code, "message": message},
	}}})
	if err != nil {
		return err
	}
	select {
	case c.send <- raw:
	default:
	}
	return nil
}

// writePump serializes writes: outbound batches plus periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
