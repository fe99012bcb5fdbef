package battle

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/mep3ab4ik/GoB/internal/config"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// initialTilesPerSide is the board size each side starts with; one more tile
// is unlocked per round up to the mode's max_tiles_per_player.
const initialTilesPerSide = 2

var tileElements = []model.Element{
	model.ElementNeutral,
	model.ElementWater,
	model.ElementFire,
	model.ElementEarth,
	model.ElementElectric,
}

// Create persists a fresh battle in CREATED state for a confirmed pairing.
// The first-turn seat is fixed here and never re-randomized.
func Create(ctx context.Context, store Store, roomID, ticket1, ticket2 string, mode *model.GameMode) (*model.Battle, error) {
	firstTurn := 1 + rand.Intn(2)
	b := &model.Battle{
		RoomID:        roomID,
		Player1Ticket: ticket1,
		Player2Ticket: ticket2,
		State:         model.BattleCreated,
		TurnIdx:       firstTurn,
		FirstTurnIdx:  firstTurn,
		GameModeID:    mode.ID,
	}
	if err := store.CreateBattle(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// AttachPlayer seats a connecting player. The first joiner gets the
// configured seat (seat 2 by default); the second joiner gets the other.
// CREATED moves to JOINED on the first attach and JOINED to CLOSED on the
// second.
func (rt *Runtime) AttachPlayer(ctx context.Context, playerID int64, cfg config.BattleConfig) (*Side, error) {
	st := rt.State
	if existing := st.SideByPlayerID(playerID); existing != nil {
		return existing, nil
	}

	var idx int
	switch st.Battle.State {
	case model.BattleCreated:
		idx = cfg.FirstJoinerSeat
	case model.BattleJoined:
		first := 0
		for _, s := range st.Sides {
			if s != nil {
				first = s.Idx()
			}
		}
		idx = 3 - first
	default:
		return nil, Invalid("battle_full", "battle %s is not joinable", st.Battle.RoomID)
	}

	p := &model.BattlePlayer{
		Idx:      idx,
		BattleID: st.Battle.ID,
		PlayerID: playerID,
		HP:       st.Mode.StartBattlePlayerHP,
		HPLimit:  st.Mode.StartBattlePlayerHP,
	}
	if err := rt.store.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}
	side := &Side{Player: p}
	st.Sides[idx-1] = side

	switch st.Battle.State {
	case model.BattleCreated:
		st.Battle.State = model.BattleJoined
	case model.BattleJoined:
		st.Battle.State = model.BattleClosed
	}
	if err := rt.store.SaveBattle(ctx, st.Battle); err != nil {
		return nil, err
	}
	st.Snapshot.Player(p.ID)
	return side, nil
}

// StartOptions carries the per-player custom decks when the mode does not
// generate random ones, keyed by player id.
type StartOptions struct {
	CustomDecks map[int64][]*model.Card
}

// Start deals both sides and moves the battle to ACTIVE: deck build and
// shuffle, battle_card_id assignment, starting hand draw, tile allocation
// and the next-card peek.
func (rt *Runtime) Start(ctx context.Context, opts StartOptions) error {
	st := rt.State
	if st.Battle.State != model.BattleClosed {
		return Invalid("battle_not_ready", "battle %s cannot start from state %s", st.Battle.RoomID, st.Battle.State)
	}

	for _, side := range st.Sides {
		if err := rt.dealSide(ctx, side, opts); err != nil {
			return err
		}
	}

	now := rt.now()
	st.Battle.State = model.BattleActive
	st.Battle.BattleStart = &now
	if err := rt.store.SaveBattle(ctx, st.Battle); err != nil {
		return err
	}
	st.Snapshot.MarkRoundStarted(now)

	rt.State.Events.Record(st.Battle.TurnIdx, EventBattleStart, map[string]any{
		"room_id":        st.Battle.RoomID,
		"first_turn_idx": st.Battle.FirstTurnIdx,
		"turn_duration":  st.Mode.BattlefieldTimerDuration,
	})
	rt.State.Events.Record(st.Battle.TurnIdx, EventStartTurn, map[string]any{
		"turn_idx":    st.Battle.TurnIdx,
		"turn_number": st.Battle.TurnNumber,
		"duration":    st.Mode.BattlefieldTimerDuration,
	})
	return nil
}

func (rt *Runtime) dealSide(ctx context.Context, side *Side, opts StartOptions) error {
	st := rt.State

	cards, err := rt.deckCards(ctx, side, opts)
	if err != nil {
		return err
	}
	rt.rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})

	deck := make([]*model.DeckCard, len(cards))
	for i, c := range cards {
		deck[i] = &model.DeckCard{CardRelation: model.CardRelation{
			HP:             c.HP,
			Attack:         c.Attack,
			Order:          i,
			BattleCardID:   st.Snapshot.NextBattleCardID(),
			BattlePlayerID: side.Player.ID,
			CardID:         c.ID,
			Card:           c,
		}}
	}
	if err := rt.store.CreateDeck(ctx, deck); err != nil {
		return err
	}
	side.Deck = deck

	for i := 0; i < st.Mode.StartCardsOnHandCount && len(side.Deck) > 0; i++ {
		top := side.Deck[0]
		side.Deck = side.Deck[1:]
		if err := rt.store.DeleteDeckCard(ctx, top.ID); err != nil {
			return err
		}
		hc := &model.HandCard{CardRelation: top.CardRelation}
		hc.ID = 0
		if err := rt.store.AddHandCard(ctx, hc); err != nil {
			return err
		}
		side.Hand = append(side.Hand, hc)
	}
	rt.State.Events.RecordPlayerOnly(side.Idx(), EventDrawCards, map[string]any{
		"count": len(side.Hand),
	})

	for i := 0; i < initialTilesPerSide; i++ {
		if _, err := rt.allocateTile(ctx, side, i); err != nil {
			return err
		}
	}
	return rt.RefreshNextCard(ctx, side)
}

// deckCards produces the side's deck content: a random draw of enabled,
// non-blocked cards, or the validated custom deck handed in at start.
func (rt *Runtime) deckCards(ctx context.Context, side *Side, opts StartOptions) ([]*model.Card, error) {
	mode := rt.State.Mode
	if mode.IsRandomGeneratedDeck {
		pool, err := rt.store.EnabledCards(ctx, mode.BlockedCardIDs)
		if err != nil {
			return nil, err
		}
		if len(pool) < mode.MaxCardsInDeck {
			return nil, fmt.Errorf("card pool too small: %d enabled cards for deck of %d", len(pool), mode.MaxCardsInDeck)
		}
		picked := make([]*model.Card, len(pool))
		copy(picked, pool)
		rt.rng.Shuffle(len(picked), func(i, j int) {
			picked[i], picked[j] = picked[j], picked[i]
		})
		return picked[:mode.MaxCardsInDeck], nil
	}

	deck := opts.CustomDecks[side.Player.PlayerID]
	if len(deck) != mode.MaxCardsInDeck {
		return nil, Invalid("deck_not_playable", "deck must contain exactly %d cards, got %d", mode.MaxCardsInDeck, len(deck))
	}
	for _, c := range deck {
		if !c.Enabled || !Registered(c.CustomID) {
			return nil, Invalid("deck_not_playable", "card %s is not playable", c.CustomID)
		}
	}
	return deck, nil
}

// allocateTile creates one empty tile with a random element for the side.
func (rt *Runtime) allocateTile(ctx context.Context, side *Side, order int) (*model.Tile, error) {
	t := &model.Tile{
		CardRelation: model.CardRelation{
			Order:          order,
			BattlePlayerID: side.Player.ID,
		},
		Element: tileElements[rt.rng.Intn(len(tileElements))],
		State:   model.TileFree,
	}
	if err := rt.store.CreateTile(ctx, t); err != nil {
		return nil, err
	}
	side.Tiles = append(side.Tiles, t)
	rt.State.Mirror(t)
	return t, nil
}

// UnlockTileForTurn grows the side's board by one tile at the start of its
// turn, up to the mode limit.
func (rt *Runtime) UnlockTileForTurn(ctx context.Context, side *Side) error {
	if len(side.Tiles) >= rt.State.Mode.MaxTilesPerPlayer {
		return nil
	}
	t, err := rt.allocateTile(ctx, side, len(side.Tiles))
	if err != nil {
		return err
	}
	rt.State.Events.Record(side.Idx(), EventTileUpdateState, map[string]any{
		"tile_id": t.ID,
		"state":   string(model.TileFree),
		"element": string(t.Element),
	})
	return nil
}

// SeatTicket maps a presented ticket to its seat, empty when unknown.
func SeatTicket(b *model.Battle, ticket string) int {
	switch ticket {
	case b.Player1Ticket:
		return 1
	case b.Player2Ticket:
		return 2
	}
	return 0
}
