package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextBattleCardIDIsStrictlyIncreasing(t *testing.T) {
	s := NewSnapshot()
	prev := 0
	for i := 0; i < 100; i++ {
		id := s.NextBattleCardID()
		require.Greater(t, id, prev)
		prev = id
	}
	assert.Equal(t, 100, s.LastBattleCardID)
}

func TestSnapshotPlayerAutoCreates(t *testing.T) {
	s := NewSnapshot(1)
	assert.Contains(t, s.Players, int64(1))

	p := s.Player(2)
	require.NotNil(t, p)
	assert.NotNil(t, p.Tiles)
	assert.Same(t, p, s.Player(2))
}

func TestSnapshotTileMirror(t *testing.T) {
	s := NewSnapshot()
	mirror := s.Tile(1, 7)
	require.NotNil(t, mirror)
	assert.Equal(t, int64(7), mirror.ID)
	assert.Same(t, mirror, s.Tile(1, 7))

	mirror.Enchantments[3] = &EnchantmentSummary{ID: 3, Keyword: "barrier", Active: true}
	assert.True(t, mirror.HasKeyword("barrier"))
	assert.False(t, mirror.HasKeyword("leech"))

	mirror.Enchantments[3].Active = false
	assert.False(t, mirror.HasKeyword("barrier"))
}

func TestMarkRoundStarted(t *testing.T) {
	s := NewSnapshot()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.MarkRoundStarted(now)
	assert.Equal(t, now.Unix(), s.RoundStartedAt)
}
