package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle"
)

// countingEngine accepts every intent and records lifecycle calls.
type countingEngine struct {
	mu          sync.Mutex
	disconnects int
	gone        chan struct{}
}

func (e *countingEngine) HandleJoin(context.Context, string, int64, string) error { return nil }

func (e *countingEngine) HandlePlayCard(context.Context, string, int64, battle.PlayCardIntent) error {
	return nil
}

func (e *countingEngine) HandleAttack(context.Context, string, int64, battle.AttackIntent) error {
	return nil
}

func (e *countingEngine) HandleEndTurn(context.Context, string, int64) error { return nil }

func (e *countingEngine) HandleSurrender(context.Context, string, int64) error { return nil }

func (e *countingEngine) HandleDisconnect(context.Context, string, int64) error {
	e.mu.Lock()
	e.disconnects++
	e.mu.Unlock()
	select {
	case e.gone <- struct{}{}:
	default:
	}
	return nil
}

func (e *countingEngine) disconnectCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.disconnects
}

func (h *Hub) hasClient(roomID string, playerID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rooms[roomID][playerID] != nil
}

// servePings reads from a dialed connection so gorilla's default ping
// handler answers the server's heartbeats (pongs are only sent during a
// read).
func servePings(conn *websocket.Conn) {
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// battleSocketServer upgrades every request into a client for the same seat.
func battleSocketServer(hub *Hub, engine Engine) *httptest.Server {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		claims := &TicketClaims{RoomID: "room-1", PlayerID: 7, Ticket: "seat-ticket"}
		c := newClient(hub, engine, conn, claims, 50*time.Millisecond, time.Second, zap.NewNop())
		go c.run(context.Background())
	}))
}

func TestDisplacedConnectionDoesNotReportDisconnect(t *testing.T) {
	hub := NewHub(zap.NewNop())
	engine := &countingEngine{gone: make(chan struct{}, 2)}
	srv := battleSocketServer(hub, engine)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	first, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer first.Close()
	servePings(first)
	require.Eventually(t, func() bool { return hub.hasClient("room-1", 7) },
		2*time.Second, 10*time.Millisecond)

	// The same player dials again; the hub displaces the first connection
	// and its pumps shut down.
	second, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer second.Close()
	servePings(second)

	select {
	case <-engine.gone:
		t.Fatal("disconnect reported while a replacement connection is registered")
	case <-time.After(300 * time.Millisecond):
	}

	// Dropping the live connection is a real disconnect.
	second.Close()
	select {
	case <-engine.gone:
	case <-time.After(2 * time.Second):
		t.Fatal("disconnect never reported for the live connection")
	}
	assert.Equal(t, 1, engine.disconnectCount())
}

func TestHubUnregisterReportsCurrent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	old := testClient("room-1", 1)
	hub.register(old)
	fresh := testClient("room-1", 1)
	hub.register(fresh)

	assert.False(t, hub.unregister(old))
	assert.True(t, hub.unregister(fresh))
}
