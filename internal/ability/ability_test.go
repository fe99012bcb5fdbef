package ability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/battle/enchant"
	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/config"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// nopStore satisfies the engine's persistence contracts with id assignment
// only; ability tests assert against the in-memory battle state.
type nopStore struct{ nextID int64 }

func (s *nopStore) id() int64 { s.nextID++; return s.nextID }

func (s *nopStore) CreateBattle(_ context.Context, b *model.Battle) error { b.ID = s.id(); return nil }
func (s *nopStore) SaveBattle(context.Context, *model.Battle) error       { return nil }
func (s *nopStore) BattleByRoom(context.Context, string) (*model.Battle, error) {
	return nil, nil
}
func (s *nopStore) CreatePlayer(_ context.Context, p *model.BattlePlayer) error {
	p.ID = s.id()
	return nil
}
func (s *nopStore) PlayersByBattle(context.Context, int64) ([]*model.BattlePlayer, error) {
	return nil, nil
}
func (s *nopStore) SavePlayerHP(context.Context, int64, int) error { return nil }
func (s *nopStore) ModeByID(context.Context, int64) (*model.GameMode, error) {
	return nil, nil
}
func (s *nopStore) EnabledCards(context.Context, []int64) ([]*model.Card, error) { return nil, nil }
func (s *nopStore) CreateDeck(_ context.Context, cards []*model.DeckCard) error {
	for _, dc := range cards {
		dc.ID = s.id()
	}
	return nil
}
func (s *nopStore) DeckByPlayer(context.Context, int64) ([]*model.DeckCard, error) {
	return nil, nil
}
func (s *nopStore) DeleteDeckCard(context.Context, int64) error { return nil }
func (s *nopStore) AddHandCard(_ context.Context, hc *model.HandCard) error {
	hc.ID = s.id()
	return nil
}
func (s *nopStore) HandByPlayer(context.Context, int64) ([]*model.HandCard, error) {
	return nil, nil
}
func (s *nopStore) RemoveHandCard(context.Context, int64) error { return nil }
func (s *nopStore) AddGraveyardCard(_ context.Context, gc *model.GraveyardCard) error {
	gc.ID = s.id()
	return nil
}
func (s *nopStore) GraveyardByPlayer(context.Context, int64) ([]*model.GraveyardCard, error) {
	return nil, nil
}
func (s *nopStore) AddMysteryCard(_ context.Context, mc *model.MysteryCard) error {
	mc.ID = s.id()
	return nil
}
func (s *nopStore) MysteriesByPlayer(context.Context, int64) ([]*model.MysteryCard, error) {
	return nil, nil
}
func (s *nopStore) RemoveMysteryCard(context.Context, int64) error { return nil }
func (s *nopStore) CreateTile(_ context.Context, t *model.Tile) error {
	t.ID = s.id()
	return nil
}
func (s *nopStore) SaveTile(context.Context, *model.Tile) error { return nil }
func (s *nopStore) TilesByPlayer(context.Context, int64) ([]*model.Tile, error) {
	return nil, nil
}
func (s *nopStore) AddHistory(_ context.Context, h *model.CardHistory) error {
	h.ID = s.id()
	return nil
}
func (s *nopStore) Create(_ context.Context, e *model.Enchantment) error { e.ID = s.id(); return nil }
func (s *nopStore) Update(context.Context, *model.Enchantment) error     { return nil }
func (s *nopStore) Delete(context.Context, int64) error                  { return nil }
func (s *nopStore) DeleteByTile(context.Context, int64) error            { return nil }

type board struct {
	rt     *battle.Runtime
	s1, s2 *battle.Side
}

func newBoard(t *testing.T) *board {
	t.Helper()
	store := &nopStore{}
	mode := &model.GameMode{
		ID:                    1,
		StartBattlePlayerHP:   30,
		MaxCardsInHand:        10,
		MaxTilesPerPlayer:     7,
		MaxCardsInDeck:        30,
		IsGraveyardEnabled:    true,
		IsRandomGeneratedDeck: true,
	}
	st := &battle.State{
		Battle: &model.Battle{
			ID: 1, RoomID: "room-abl", State: model.BattleActive,
			TurnIdx: 1, FirstTurnIdx: 1, TurnNumber: 1, GameModeID: mode.ID,
		},
		Mode:     mode,
		Snapshot: cache.NewSnapshot(),
		Events:   &battle.EventLog{},
	}
	b := &board{rt: battle.NewRuntime(st, store, enchant.NewEngine(store), config.BattleConfig{FirstJoinerSeat: 2}, zap.NewNop())}

	for idx := 1; idx <= 2; idx++ {
		p := &model.BattlePlayer{ID: int64(idx), Idx: idx, BattleID: 1, PlayerID: int64(100 + idx), HP: 30, HPLimit: 30}
		side := &battle.Side{Player: p}
		for i := 0; i < 3; i++ {
			tile := &model.Tile{
				CardRelation: model.CardRelation{BattlePlayerID: p.ID, Order: i},
				Element:      model.ElementNeutral,
				State:        model.TileFree,
			}
			require.NoError(t, store.CreateTile(context.Background(), tile))
			side.Tiles = append(side.Tiles, tile)
		}
		st.Sides[idx-1] = side
	}
	b.s1, b.s2 = st.Sides[0], st.Sides[1]
	return b
}

func card(customID string, typ model.CardType, attack, hp int, element model.Element) *model.Card {
	return &model.Card{
		ID: int64(len(customID)) + int64(attack)*100 + int64(hp), CustomID: customID, Name: customID,
		Type: typ, Element: element, Attack: attack, HP: hp, Enabled: true,
	}
}

func (b *board) place(side *battle.Side, tileIdx int, c *model.Card) *model.Tile {
	tile := side.Tiles[tileIdx]
	tile.Card = c
	tile.CardID = c.ID
	tile.OriginalCard = c
	tile.OriginalCardID = c.ID
	tile.HP = c.HP
	tile.Attack = c.Attack
	tile.BattleCardID = b.rt.State.Snapshot.NextBattleCardID()
	tile.State = model.TileActive
	return tile
}

func (b *board) mystery(side *battle.Side, c *model.Card) *model.MysteryCard {
	mc := &model.MysteryCard{CardRelation: model.CardRelation{
		ID:             int64(len(side.Mysteries) + 1),
		BattleCardID:   b.rt.State.Snapshot.NextBattleCardID(),
		BattlePlayerID: side.Player.ID,
		CardID:         c.ID,
		Card:           c,
	}}
	side.Mysteries = append(side.Mysteries, mc)
	return mc
}

func resolve(t *testing.T, customID string) battle.Behavior {
	t.Helper()
	b, err := battle.Resolve(customID)
	require.NoError(t, err)
	return b
}

func TestAllCardsRegistered(t *testing.T) {
	ids := []string{
		"G195", "G199", "G201", "G213", "G214", "G215", "G223",
		"G230", "G231", "G236", "G241", "G245", "G253", "G261",
	}
	for _, id := range ids {
		assert.True(t, battle.Registered(id), "card %s has no registered behavior", id)
		assert.Equal(t, id, resolve(t, id).CustomID())
	}
}

func TestG230IsWarcry(t *testing.T) {
	wc, ok := resolve(t, "G230").(battle.WarcryCard)
	require.True(t, ok)
	assert.True(t, wc.IsWarcry())
}

func TestG245BuffsTargetHP(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	ally := b.place(b.s1, 1, card("G223", model.CardSerf, 2, 2, model.ElementWater))
	self := b.place(b.s1, 0, card("G245", model.CardSerf, 2, 3, model.ElementEarth))

	appearer, ok := resolve(t, "G245").(battle.Appearer)
	require.True(t, ok)
	err := appearer.AfterAppear(ctx, b.rt, battle.Appear{
		Side:   b.s1,
		Tile:   self,
		Target: &battle.Target{Tile: ally, Side: b.s1},
	})
	require.NoError(t, err)

	assert.Equal(t, 5, ally.HPWithEnchantments())
	assert.Equal(t, 2, ally.AttackWithEnchantments())
}

func TestG241EnsnaresTarget(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	enemy := b.place(b.s2, 0, card("G223", model.CardSerf, 2, 2, model.ElementWater))
	other := b.place(b.s2, 1, card("G223", model.CardSerf, 2, 2, model.ElementWater))
	self := b.place(b.s1, 0, card("G241", model.CardSerf, 3, 2, model.ElementFire))

	appearer, ok := resolve(t, "G241").(battle.Appearer)
	require.True(t, ok)
	err := appearer.AfterAppear(ctx, b.rt, battle.Appear{
		Side:   b.s1,
		Tile:   self,
		Target: &battle.Target{Tile: enemy, Side: b.s2},
	})
	require.NoError(t, err)

	assert.True(t, enemy.HasEnchantment(model.KeywordEnsnare))
	assert.False(t, other.HasEnchantment(model.KeywordEnsnare))
}

func TestG230BuffScalesWithEarthCardsInHand(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	b.s1.Hand = []*model.HandCard{
		{CardRelation: model.CardRelation{Card: card("G201", model.CardSerf, 1, 1, model.ElementEarth)}},
		{CardRelation: model.CardRelation{Card: card("G245", model.CardSerf, 1, 1, model.ElementEarth)}},
		{CardRelation: model.CardRelation{Card: card("G223", model.CardSerf, 1, 1, model.ElementWater)}},
	}
	target := b.place(b.s1, 1, card("G223", model.CardSerf, 2, 2, model.ElementWater))
	self := b.place(b.s1, 0, card("G230", model.CardSerf, 2, 2, model.ElementEarth))

	appearer, ok := resolve(t, "G230").(battle.Appearer)
	require.True(t, ok)
	err := appearer.AfterAppear(ctx, b.rt, battle.Appear{
		Side:   b.s1,
		Tile:   self,
		Target: &battle.Target{Tile: target, Side: b.s1},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, target.AttackWithEnchantments())
	assert.Equal(t, 4, target.HPWithEnchantments())
}

func TestG231DestroysEnemyMysteries(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	b.mystery(b.s2, card("G195", model.CardMystery, 0, 0, model.ElementNeutral))
	b.mystery(b.s2, card("G195", model.CardMystery, 0, 0, model.ElementNeutral))
	mine := b.mystery(b.s1, card("G195", model.CardMystery, 0, 0, model.ElementNeutral))
	self := b.place(b.s1, 0, card("G231", model.CardSerf, 2, 2, model.ElementFire))

	appearer, ok := resolve(t, "G231").(battle.Appearer)
	require.True(t, ok)
	require.NoError(t, appearer.AfterAppear(ctx, b.rt, battle.Appear{Side: b.s1, Tile: self}))

	assert.Empty(t, b.s2.Mysteries)
	assert.Equal(t, []*model.MysteryCard{mine}, b.s1.Mysteries)
	// Destroyed face-down mysteries never fire.
	assert.False(t, b.rt.State.Events.Contains(battle.EventMysteryActivated))
}

func TestG195EnsnaresAllEnemiesOnFriendlyDeath(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	victim := b.place(b.s1, 0, card("G223", model.CardSerf, 2, 2, model.ElementWater))
	e1 := b.place(b.s2, 0, card("G223", model.CardSerf, 2, 2, model.ElementWater))
	e2 := b.place(b.s2, 1, card("G223", model.CardSerf, 2, 2, model.ElementWater))
	b.mystery(b.s1, card("G195", model.CardMystery, 0, 0, model.ElementNeutral))

	require.NoError(t, b.rt.KillTile(ctx, b.s1, victim))
	require.NoError(t, b.rt.ResolveTriggers(ctx))

	assert.True(t, e1.HasEnchantment(model.KeywordEnsnare))
	assert.True(t, e2.HasEnchantment(model.KeywordEnsnare))
	assert.Empty(t, b.s1.Mysteries)
	assert.True(t, b.rt.State.Events.Contains(battle.EventMysteryActivated))
}

func TestG223GoesMIAOnAppear(t *testing.T) {
	b := newBoard(t)
	ctx := context.Background()

	self := b.place(b.s1, 0, card("G223", model.CardSerf, 2, 4, model.ElementWater))

	appearer, ok := resolve(t, "G223").(battle.Appearer)
	require.True(t, ok)
	require.NoError(t, appearer.AfterAppear(ctx, b.rt, battle.Appear{Side: b.s1, Tile: self}))

	assert.True(t, self.HasEnchantment(model.KeywordMIA))
}
