package battle

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle/enchant"
	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/config"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// memStore is an in-memory Store plus enchant.Store for engine tests. The
// engine treats its in-memory state as authoritative, so most writes only
// need to assign ids and keep the rows queryable.
type memStore struct {
	nextID int64

	battle  *model.Battle
	mode    *model.GameMode
	players []*model.BattlePlayer
	cards   []*model.Card

	decks     map[int64]*model.DeckCard
	hands     map[int64]*model.HandCard
	mysteries map[int64]*model.MysteryCard
	graveyard []*model.GraveyardCard
	tiles     map[int64]*model.Tile
	history   []*model.CardHistory
}

func newMemStore() *memStore {
	return &memStore{
		decks:     make(map[int64]*model.DeckCard),
		hands:     make(map[int64]*model.HandCard),
		mysteries: make(map[int64]*model.MysteryCard),
		tiles:     make(map[int64]*model.Tile),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) CreateBattle(_ context.Context, b *model.Battle) error {
	b.ID = s.id()
	s.battle = b
	return nil
}

func (s *memStore) SaveBattle(_ context.Context, b *model.Battle) error {
	s.battle = b
	return nil
}

func (s *memStore) BattleByRoom(_ context.Context, _ string) (*model.Battle, error) {
	return s.battle, nil
}

func (s *memStore) CreatePlayer(_ context.Context, p *model.BattlePlayer) error {
	p.ID = s.id()
	s.players = append(s.players, p)
	return nil
}

func (s *memStore) PlayersByBattle(_ context.Context, _ int64) ([]*model.BattlePlayer, error) {
	return s.players, nil
}

func (s *memStore) SavePlayerHP(_ context.Context, _ int64, _ int) error { return nil }

func (s *memStore) ModeByID(_ context.Context, _ int64) (*model.GameMode, error) {
	return s.mode, nil
}

func (s *memStore) EnabledCards(_ context.Context, blockedIDs []int64) ([]*model.Card, error) {
	blocked := make(map[int64]bool, len(blockedIDs))
	for _, id := range blockedIDs {
		blocked[id] = true
	}
	var out []*model.Card
	for _, c := range s.cards {
		if c.Enabled && !blocked[c.ID] {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) CreateDeck(_ context.Context, cards []*model.DeckCard) error {
	for _, dc := range cards {
		dc.ID = s.id()
		s.decks[dc.ID] = dc
	}
	return nil
}

func (s *memStore) DeckByPlayer(_ context.Context, _ int64) ([]*model.DeckCard, error) {
	return nil, nil
}

func (s *memStore) DeleteDeckCard(_ context.Context, id int64) error {
	delete(s.decks, id)
	return nil
}

func (s *memStore) AddHandCard(_ context.Context, hc *model.HandCard) error {
	hc.ID = s.id()
	s.hands[hc.ID] = hc
	return nil
}

func (s *memStore) HandByPlayer(_ context.Context, _ int64) ([]*model.HandCard, error) {
	return nil, nil
}

func (s *memStore) RemoveHandCard(_ context.Context, id int64) error {
	delete(s.hands, id)
	return nil
}

func (s *memStore) AddGraveyardCard(_ context.Context, gc *model.GraveyardCard) error {
	gc.ID = s.id()
	s.graveyard = append(s.graveyard, gc)
	return nil
}

func (s *memStore) GraveyardByPlayer(_ context.Context, _ int64) ([]*model.GraveyardCard, error) {
	return nil, nil
}

func (s *memStore) AddMysteryCard(_ context.Context, mc *model.MysteryCard) error {
	mc.ID = s.id()
	s.mysteries[mc.ID] = mc
	return nil
}

func (s *memStore) MysteriesByPlayer(_ context.Context, _ int64) ([]*model.MysteryCard, error) {
	return nil, nil
}

func (s *memStore) RemoveMysteryCard(_ context.Context, id int64) error {
	delete(s.mysteries, id)
	return nil
}

func (s *memStore) CreateTile(_ context.Context, t *model.Tile) error {
	t.ID = s.id()
	s.tiles[t.ID] = t
	return nil
}

func (s *memStore) SaveTile(_ context.Context, t *model.Tile) error {
	s.tiles[t.ID] = t
	return nil
}

func (s *memStore) TilesByPlayer(_ context.Context, _ int64) ([]*model.Tile, error) {
	return nil, nil
}

func (s *memStore) AddHistory(_ context.Context, h *model.CardHistory) error {
	h.ID = s.id()
	s.history = append(s.history, h)
	return nil
}

// enchant.Store

func (s *memStore) Create(_ context.Context, e *model.Enchantment) error {
	e.ID = s.id()
	return nil
}

func (s *memStore) Update(_ context.Context, _ *model.Enchantment) error { return nil }

func (s *memStore) Delete(_ context.Context, _ int64) error { return nil }

func (s *memStore) DeleteByTile(_ context.Context, _ int64) error { return nil }

func testMode() *model.GameMode {
	return &model.GameMode{
		ID:                       1,
		CustomID:                 "standard",
		BattlefieldTimerDuration: 75,
		StartBattlePlayerHP:      30,
		MaxCardsInHand:           10,
		StartCardsOnHandCount:    5,
		MaxTilesPerPlayer:        7,
		MaxCardsInDeck:           30,
		IsGraveyardEnabled:       true,
		ShowNextCardFromDeck:     true,
		IsRandomGeneratedDeck:    true,
		BattleDuration:           1800,
	}
}

func testBattleConfig() config.BattleConfig {
	return config.BattleConfig{FirstJoinerSeat: 2}
}

// fixture is a running two-seat battle with three empty tiles per side.
type fixture struct {
	store  *memStore
	rt     *Runtime
	s1, s2 *Side
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	mode := testMode()
	store.mode = mode

	b := &model.Battle{
		ID:           1,
		RoomID:       "room-1",
		State:        model.BattleActive,
		TurnIdx:      1,
		FirstTurnIdx: 1,
		TurnNumber:   1,
		GameModeID:   mode.ID,
	}
	store.battle = b

	st := &State{
		Battle:   b,
		Mode:     mode,
		Snapshot: cache.NewSnapshot(),
		Events:   &EventLog{},
	}
	rt := NewRuntime(st, store, enchant.NewEngine(store), testBattleConfig(), zap.NewNop())

	f := &fixture{store: store, rt: rt}
	f.s1 = f.addSide(t, 1, 101)
	f.s2 = f.addSide(t, 2, 102)
	return f
}

func (f *fixture) addSide(t *testing.T, idx int, playerID int64) *Side {
	t.Helper()
	p := &model.BattlePlayer{
		Idx:      idx,
		BattleID: f.rt.State.Battle.ID,
		PlayerID: playerID,
		HP:       f.rt.State.Mode.StartBattlePlayerHP,
		HPLimit:  f.rt.State.Mode.StartBattlePlayerHP,
	}
	if err := f.store.CreatePlayer(context.Background(), p); err != nil {
		t.Fatalf("create player: %v", err)
	}
	side := &Side{Player: p}
	for i := 0; i < 3; i++ {
		tile := &model.Tile{
			CardRelation: model.CardRelation{Order: i, BattlePlayerID: p.ID},
			Element:      model.ElementNeutral,
			State:        model.TileFree,
		}
		if err := f.store.CreateTile(context.Background(), tile); err != nil {
			t.Fatalf("create tile: %v", err)
		}
		side.Tiles = append(side.Tiles, tile)
	}
	f.rt.State.Sides[idx-1] = side
	f.rt.State.Snapshot.Player(p.ID)
	return side
}

var nextCardID int64 = 1000

func newCard(customID string, typ model.CardType, attack, hp int, element model.Element) *model.Card {
	nextCardID++
	return &model.Card{
		ID:       nextCardID,
		CustomID: customID,
		Name:     customID,
		Type:     typ,
		Element:  element,
		Attack:   attack,
		HP:       hp,
		Enabled:  true,
	}
}

// placeSerf puts a card on one of the side's tiles in the ready state.
func (f *fixture) placeSerf(t *testing.T, side *Side, tileIdx int, card *model.Card) *model.Tile {
	t.Helper()
	tile := side.Tiles[tileIdx]
	if tile.Occupied() {
		t.Fatalf("tile %d already occupied", tile.ID)
	}
	tile.Card = card
	tile.CardID = card.ID
	tile.OriginalCard = card
	tile.OriginalCardID = card.ID
	tile.HP = card.HP
	tile.Attack = card.Attack
	tile.BattleCardID = f.rt.State.Snapshot.NextBattleCardID()
	tile.State = model.TileActive
	return tile
}

func (f *fixture) addHand(t *testing.T, side *Side, card *model.Card) *model.HandCard {
	t.Helper()
	hc := &model.HandCard{CardRelation: model.CardRelation{
		HP:             card.HP,
		Attack:         card.Attack,
		Order:          len(side.Hand),
		BattleCardID:   f.rt.State.Snapshot.NextBattleCardID(),
		BattlePlayerID: side.Player.ID,
		CardID:         card.ID,
		Card:           card,
	}}
	if err := f.store.AddHandCard(context.Background(), hc); err != nil {
		t.Fatalf("add hand card: %v", err)
	}
	side.Hand = append(side.Hand, hc)
	return hc
}

func (f *fixture) addMystery(t *testing.T, side *Side, card *model.Card) *model.MysteryCard {
	t.Helper()
	mc := &model.MysteryCard{CardRelation: model.CardRelation{
		BattleCardID:   f.rt.State.Snapshot.NextBattleCardID(),
		BattlePlayerID: side.Player.ID,
		CardID:         card.ID,
		Card:           card,
	}}
	if err := f.store.AddMysteryCard(context.Background(), mc); err != nil {
		t.Fatalf("add mystery card: %v", err)
	}
	side.Mysteries = append(side.Mysteries, mc)
	return mc
}

func (f *fixture) addDeck(t *testing.T, side *Side, cards ...*model.Card) {
	t.Helper()
	var deck []*model.DeckCard
	for i, c := range cards {
		deck = append(deck, &model.DeckCard{CardRelation: model.CardRelation{
			HP:             c.HP,
			Attack:         c.Attack,
			Order:          i,
			BattleCardID:   f.rt.State.Snapshot.NextBattleCardID(),
			BattlePlayerID: side.Player.ID,
			CardID:         c.ID,
			Card:           c,
		}})
	}
	if err := f.store.CreateDeck(context.Background(), deck); err != nil {
		t.Fatalf("create deck: %v", err)
	}
	side.Deck = append(side.Deck, deck...)
}

func validationCode(t *testing.T, err error) string {
	t.Helper()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	return verr.Code
}

// Test behaviors. Registered once for the whole package.

type stubSerf struct{ id string }

func (s stubSerf) CustomID() string { return s.id }

type stubSpell struct{ id string }

func (s stubSpell) CustomID() string { return s.id }

type warcrySerf struct{ stubSerf }

func (warcrySerf) IsWarcry() bool { return true }

func (warcrySerf) AfterAppear(ctx context.Context, rt *Runtime, ap Appear) error {
	if ap.Target == nil || ap.Target.Tile == nil {
		return nil
	}
	return rt.BuffTile(ctx, ap.Target.Tile, 0, 2)
}

// deathMystery ensnares all enemy creatures when a friendly one dies.
type deathMystery struct{ stubSerf }

func (deathMystery) OnFriendlyCreatureDeath(ctx context.Context, rt *Runtime, slot MysterySlot, _ *model.Tile) (bool, error) {
	enemy := rt.State.Opponent(slot.Side)
	if enemy == nil {
		return false, nil
	}
	return true, rt.EnsnareTiles(ctx, enemy.OccupiedTiles())
}

// spellMystery activates whenever any spell is played.
type spellMystery struct{ stubSerf }

func (spellMystery) OnAnySpellCardPlayed(_ context.Context, _ *Runtime, _ MysterySlot, _ *model.Card) (bool, error) {
	return true, nil
}

// awakeMystery activates when a friendly creature returns from MIA.
type awakeMystery struct{ stubSerf }

func (awakeMystery) OnAwakeFromMIA(_ context.Context, _ *Runtime, _ MysterySlot, _ *model.Tile) (bool, error) {
	return true, nil
}

func init() {
	Register("T_SERF", func() Behavior { return stubSerf{"T_SERF"} })
	Register("T_SPELL", func() Behavior { return stubSpell{"T_SPELL"} })
	Register("T_WARCRY", func() Behavior { return warcrySerf{stubSerf{"T_WARCRY"}} })
	Register("T_MYST_DEATH", func() Behavior { return deathMystery{stubSerf{"T_MYST_DEATH"}} })
	Register("T_MYST_SPELL", func() Behavior { return spellMystery{stubSerf{"T_MYST_SPELL"}} })
	Register("T_MYST_AWAKE", func() Behavior { return awakeMystery{stubSerf{"T_MYST_AWAKE"}} })
}
