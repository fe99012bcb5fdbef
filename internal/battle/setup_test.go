package battle

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle/enchant"
	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// newLobbyRuntime builds a freshly created battle with no seats attached and
// a pool of enabled cards large enough for two random decks.
func newLobbyRuntime(t *testing.T) (*memStore, *Runtime) {
	t.Helper()
	store := newMemStore()
	mode := testMode()
	store.mode = mode
	for i := 0; i < mode.MaxCardsInDeck+5; i++ {
		store.cards = append(store.cards, newCard(fmt.Sprintf("T_POOL_%d", i), model.CardSerf, 2, 2, model.ElementNeutral))
	}

	b, err := Create(context.Background(), store, "room-lobby", "ticket-1", "ticket-2", mode)
	require.NoError(t, err)

	st := &State{
		Battle:   b,
		Mode:     mode,
		Snapshot: cache.NewSnapshot(),
		Events:   &EventLog{},
	}
	return store, NewRuntime(st, store, enchant.NewEngine(store), testBattleConfig(), zap.NewNop())
}

func TestCreateFixesFirstTurnSeat(t *testing.T) {
	store := newMemStore()
	b, err := Create(context.Background(), store, "room-x", "t1", "t2", testMode())
	require.NoError(t, err)

	assert.Equal(t, model.BattleCreated, b.State)
	assert.Equal(t, b.FirstTurnIdx, b.TurnIdx)
	assert.Contains(t, []int{1, 2}, b.FirstTurnIdx)
}

func TestAttachPlayerSeating(t *testing.T) {
	_, rt := newLobbyRuntime(t)
	ctx := context.Background()
	cfg := testBattleConfig()

	// The first joiner takes the configured seat.
	first, err := rt.AttachPlayer(ctx, 101, cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Idx())
	assert.Equal(t, model.BattleJoined, rt.State.Battle.State)

	second, err := rt.AttachPlayer(ctx, 102, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Idx())
	assert.Equal(t, model.BattleClosed, rt.State.Battle.State)

	// Reattaching a seated player returns the same seat and changes nothing.
	again, err := rt.AttachPlayer(ctx, 101, cfg)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, model.BattleClosed, rt.State.Battle.State)

	// A third identity cannot join.
	_, err = rt.AttachPlayer(ctx, 103, cfg)
	assert.Equal(t, "battle_full", validationCode(t, err))
}

func TestStartDealsBothSides(t *testing.T) {
	_, rt := newLobbyRuntime(t)
	ctx := context.Background()
	cfg := testBattleConfig()

	_, err := rt.AttachPlayer(ctx, 101, cfg)
	require.NoError(t, err)
	_, err = rt.AttachPlayer(ctx, 102, cfg)
	require.NoError(t, err)

	require.NoError(t, rt.Start(ctx, StartOptions{}))

	assert.Equal(t, model.BattleActive, rt.State.Battle.State)
	assert.NotNil(t, rt.State.Battle.BattleStart)
	assert.True(t, rt.State.Events.Contains(EventBattleStart))
	assert.True(t, rt.State.Events.Contains(EventStartTurn))

	seen := make(map[int]bool)
	for _, side := range rt.State.Sides {
		require.NotNil(t, side)
		assert.Len(t, side.Hand, rt.State.Mode.StartCardsOnHandCount)
		assert.Len(t, side.Deck, rt.State.Mode.MaxCardsInDeck-rt.State.Mode.StartCardsOnHandCount)
		assert.Len(t, side.Tiles, 2)
		for _, tile := range side.Tiles {
			assert.Equal(t, model.TileFree, tile.State)
		}

		// Battle card ids are unique across every collection of both sides.
		for _, hc := range side.Hand {
			assert.False(t, seen[hc.BattleCardID])
			seen[hc.BattleCardID] = true
		}
		for _, dc := range side.Deck {
			assert.False(t, seen[dc.BattleCardID])
			seen[dc.BattleCardID] = true
		}

		// The next-card peek is primed for the mode that reveals it.
		ps := rt.State.Snapshot.Player(side.Player.ID)
		require.NotNil(t, ps.Deck.NextCard)
		assert.Equal(t, side.Deck[0].Card.CustomID, ps.Deck.NextCard.CustomID)
	}
	assert.Len(t, seen, 2*rt.State.Mode.MaxCardsInDeck)
}

func TestStartRequiresClosedBattle(t *testing.T) {
	_, rt := newLobbyRuntime(t)
	err := rt.Start(context.Background(), StartOptions{})
	assert.Equal(t, "battle_not_ready", validationCode(t, err))
}

func TestStartCustomDeckValidation(t *testing.T) {
	_, rt := newLobbyRuntime(t)
	ctx := context.Background()
	cfg := testBattleConfig()
	rt.State.Mode.IsRandomGeneratedDeck = false
	rt.State.Mode.MaxCardsInDeck = 2

	_, err := rt.AttachPlayer(ctx, 101, cfg)
	require.NoError(t, err)
	_, err = rt.AttachPlayer(ctx, 102, cfg)
	require.NoError(t, err)

	// Wrong size.
	err = rt.Start(ctx, StartOptions{CustomDecks: map[int64][]*model.Card{
		101: {newCard("T_SERF", model.CardSerf, 1, 1, model.ElementNeutral)},
		102: {newCard("T_SERF", model.CardSerf, 1, 1, model.ElementNeutral)},
	}})
	assert.Equal(t, "deck_not_playable", validationCode(t, err))

	// A card without a registered behavior is not playable.
	err = rt.Start(ctx, StartOptions{CustomDecks: map[int64][]*model.Card{
		101: {newCard("T_SERF", model.CardSerf, 1, 1, model.ElementNeutral), newCard("T_UNREGISTERED", model.CardSerf, 1, 1, model.ElementNeutral)},
		102: {newCard("T_SERF", model.CardSerf, 1, 1, model.ElementNeutral), newCard("T_SERF", model.CardSerf, 1, 1, model.ElementNeutral)},
	}})
	assert.Equal(t, "deck_not_playable", validationCode(t, err))
}

func TestUnlockTileForTurnStopsAtLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rt.State.Mode.MaxTilesPerPlayer = 4

	require.NoError(t, f.rt.UnlockTileForTurn(ctx, f.s1))
	assert.Len(t, f.s1.Tiles, 4)
	require.NoError(t, f.rt.UnlockTileForTurn(ctx, f.s1))
	assert.Len(t, f.s1.Tiles, 4)
}

func TestSeatTicket(t *testing.T) {
	b := &model.Battle{Player1Ticket: "aaa", Player2Ticket: "bbb"}
	assert.Equal(t, 1, SeatTicket(b, "aaa"))
	assert.Equal(t, 2, SeatTicket(b, "bbb"))
	assert.Equal(t, 0, SeatTicket(b, "ccc"))
}
