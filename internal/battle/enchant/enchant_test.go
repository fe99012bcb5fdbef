package enchant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// fakeStore assigns ids and counts writes; the engine keeps the in-memory
// rows authoritative.
type fakeStore struct {
	nextID  int64
	creates int
	updates int
	deletes int
}

func (s *fakeStore) Create(_ context.Context, e *model.Enchantment) error {
	s.nextID++
	e.ID = s.nextID
	s.creates++
	return nil
}

func (s *fakeStore) Update(_ context.Context, _ *model.Enchantment) error {
	s.updates++
	return nil
}

func (s *fakeStore) Delete(_ context.Context, _ int64) error {
	s.deletes++
	return nil
}

func (s *fakeStore) DeleteByTile(_ context.Context, _ int64) error {
	s.deletes++
	return nil
}

func testTile() (*model.Tile, *cache.TileSnapshot) {
	tile := &model.Tile{
		CardRelation: model.CardRelation{ID: 7, BattlePlayerID: 3, HP: 3, Attack: 2, Card: &model.Card{ID: 1}},
		State:        model.TileActive,
	}
	return tile, cache.NewTileSnapshot(tile.ID)
}

func TestAddToTileMirrorsSnapshot(t *testing.T) {
	store := &fakeStore{}
	eng := NewEngine(store)
	tile, mirror := testTile()

	ench := Keyword(model.KeywordBarrier, model.EnchantBuff, 0)
	require.NoError(t, eng.AddToTile(context.Background(), tile, mirror, ench))

	require.NotZero(t, ench.ID)
	assert.Equal(t, &tile.ID, ench.TileID)
	assert.True(t, tile.HasEnchantment(model.KeywordBarrier))
	assert.True(t, mirror.HasKeyword(string(model.KeywordBarrier)))
}

func TestRemoveKeywordFromTile(t *testing.T) {
	store := &fakeStore{}
	eng := NewEngine(store)
	tile, mirror := testTile()
	ctx := context.Background()

	require.NoError(t, eng.AddToTile(ctx, tile, mirror, Keyword(model.KeywordBarrier, model.EnchantBuff, 0)))
	require.NoError(t, eng.AddToTile(ctx, tile, mirror, Keyword(model.KeywordLeech, model.EnchantBuff, 0)))

	require.NoError(t, eng.RemoveKeywordFromTile(ctx, tile, mirror, model.KeywordBarrier))

	assert.False(t, tile.HasEnchantment(model.KeywordBarrier))
	assert.True(t, tile.HasEnchantment(model.KeywordLeech))
	assert.False(t, mirror.HasKeyword(string(model.KeywordBarrier)))
	assert.Equal(t, 1, store.deletes)
}

func TestTileBuffIsSingular(t *testing.T) {
	store := &fakeStore{}
	eng := NewEngine(store)
	tile, mirror := testTile()
	ctx := context.Background()

	require.NoError(t, eng.AddAttackToTile(ctx, tile, mirror, 1))
	require.NoError(t, eng.AddHPToTile(ctx, tile, mirror, 2))
	require.NoError(t, eng.AddAttackToTile(ctx, tile, mirror, 3))

	// All deltas fold into one tile_buff row.
	require.Len(t, tile.Enchantments, 1)
	buff := tile.Enchantments[0]
	assert.Equal(t, model.KeywordTileBuff, buff.Keyword)
	assert.Equal(t, 4, buff.AttackChangeValue)
	assert.Equal(t, 2, buff.HPChangeValue)
	assert.Equal(t, 6, tile.AttackWithEnchantments())
	assert.Equal(t, 5, tile.HPWithEnchantments())
	assert.Equal(t, 1, store.creates)
}

func TestCountdownTileExpiresTimedOnly(t *testing.T) {
	store := &fakeStore{}
	eng := NewEngine(store)
	tile, mirror := testTile()
	ctx := context.Background()

	require.NoError(t, eng.AddToTile(ctx, tile, mirror, Keyword(model.KeywordEnsnare, model.EnchantDebuff, 1)))
	require.NoError(t, eng.AddToTile(ctx, tile, mirror, Keyword(model.KeywordMIA, model.EnchantDebuff, 2)))
	require.NoError(t, eng.AddToTile(ctx, tile, mirror, Keyword(model.KeywordInsult, model.EnchantBuff, 0)))

	require.NoError(t, eng.CountdownTile(ctx, tile, mirror))

	assert.False(t, tile.HasEnchantment(model.KeywordEnsnare))
	assert.True(t, tile.HasEnchantment(model.KeywordMIA))
	assert.True(t, tile.HasEnchantment(model.KeywordInsult))
	assert.False(t, mirror.HasKeyword(string(model.KeywordEnsnare)))

	require.NoError(t, eng.CountdownTile(ctx, tile, mirror))
	assert.False(t, tile.HasEnchantment(model.KeywordMIA))
	assert.True(t, tile.HasEnchantment(model.KeywordInsult))
}

func TestFlushTileDropsEverything(t *testing.T) {
	store := &fakeStore{}
	eng := NewEngine(store)
	tile, mirror := testTile()
	ctx := context.Background()

	require.NoError(t, eng.AddToTile(ctx, tile, mirror, Keyword(model.KeywordBarrier, model.EnchantBuff, 0)))
	require.NoError(t, eng.AddAttackToTile(ctx, tile, mirror, 2))

	require.NoError(t, eng.FlushTile(ctx, tile, mirror))

	assert.Empty(t, tile.Enchantments)
	assert.Empty(t, mirror.Enchantments)
}

func TestCountdownHandCard(t *testing.T) {
	store := &fakeStore{}
	eng := NewEngine(store)
	ctx := context.Background()

	hc := &model.HandCard{CardRelation: model.CardRelation{ID: 4, BattlePlayerID: 3}}
	require.NoError(t, eng.AddToHandCard(ctx, hc, Keyword(model.KeywordMIA, model.EnchantDebuff, 1)))
	require.Equal(t, &hc.ID, hc.Enchantments[0].CardHandID)

	require.NoError(t, eng.CountdownHandCard(ctx, hc))
	assert.Empty(t, hc.Enchantments)
}

func TestProtectEnchantment(t *testing.T) {
	e := Protect(2, 3)
	assert.Equal(t, model.KeywordProtect, e.Keyword)
	require.NotNil(t, e.Protect)
	assert.Equal(t, 2, *e.Protect)
	require.NotNil(t, e.Turns)
	assert.Equal(t, 3, *e.Turns)

	assert.True(t, Keyword(model.KeywordBarrier, model.EnchantBuff, 0).Infinite())
}
