package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle"
)

func testClient(roomID string, playerID int64) *Client {
	return &Client{
		send:     make(chan []byte, 4),
		roomID:   roomID,
		playerID: playerID,
		logger:   zap.NewNop(),
	}
}

func TestHubDeliverRoutesToPlayer(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c1 := testClient("room-1", 1)
	c2 := testClient("room-1", 2)
	hub.register(c1)
	hub.register(c2)

	hub.Deliver("room-1", 1, []battle.Event{{Type: battle.EventStartTurn}})

	select {
	case raw := <-c1.send:
		var msg outboundMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		require.Len(t, msg.Events, 1)
		assert.Equal(t, battle.EventStartTurn, msg.Events[0].Type)
	default:
		t.Fatal("expected a batch for player 1")
	}
	assert.Empty(t, c2.send)
}

func TestHubDeliverUnknownRecipientNoPanic(t *testing.T) {
	hub := NewHub(zap.NewNop())
	hub.Deliver("room-x", 99, []battle.Event{{Type: battle.EventStartTurn}})
}

func TestHubRegisterReplacesPreviousConnection(t *testing.T) {
	hub := NewHub(zap.NewNop())
	old := testClient("room-1", 1)
	hub.register(old)

	fresh := testClient("room-1", 1)
	hub.register(fresh)

	// The stale connection's channel is closed so its write pump exits.
	_, open := <-old.send
	assert.False(t, open)

	hub.Deliver("room-1", 1, []battle.Event{{Type: battle.EventStartTurn}})
	assert.Len(t, fresh.send, 1)

	// Unregistering the stale client must not detach the fresh one.
	hub.unregister(old)
	hub.Deliver("room-1", 1, []battle.Event{{Type: battle.EventStartTurn}})
	assert.Len(t, fresh.send, 2)
}

func TestHubTeardownClosesRoom(t *testing.T) {
	hub := NewHub(zap.NewNop())
	c1 := testClient("room-1", 1)
	c2 := testClient("room-1", 2)
	hub.register(c1)
	hub.register(c2)

	hub.Teardown("room-1")

	_, open := <-c1.send
	assert.False(t, open)
	_, open = <-c2.send
	assert.False(t, open)

	hub.Deliver("room-1", 1, []battle.Event{{Type: battle.EventStartTurn}})
}
