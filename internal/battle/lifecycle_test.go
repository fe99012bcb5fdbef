package battle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mep3ab4ik/GoB/internal/model"
)

func TestSurrenderCompletesForOpponent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.rt.Surrender(ctx, f.s1.Player.PlayerID))

	b := f.rt.State.Battle
	assert.Equal(t, model.BattleCompleted, b.State)
	assert.Equal(t, model.EndPlayerSurrendered, b.EndType)
	require.NotNil(t, b.WinnerPlayerID)
	assert.Equal(t, f.s2.Player.PlayerID, *b.WinnerPlayerID)
}

func TestSurrenderWithoutOpponentDiscards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rt.State.Sides[1] = nil

	require.NoError(t, f.rt.Surrender(ctx, f.s1.Player.PlayerID))
	assert.Equal(t, model.BattleDiscarded, f.rt.State.Battle.State)
}

func TestSurrenderTerminalBattleNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rt.State.Battle.State = model.BattleCompleted
	f.rt.State.Battle.EndType = model.EndPlayerKilled

	require.NoError(t, f.rt.Surrender(ctx, f.s1.Player.PlayerID))
	assert.Equal(t, model.EndPlayerKilled, f.rt.State.Battle.EndType)
}

func TestExpireDurationEqualHPDiscards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.rt.ExpireDuration(ctx))
	assert.Equal(t, model.BattleDiscarded, f.rt.State.Battle.State)
	assert.Nil(t, f.rt.State.Battle.WinnerPlayerID)
}

func TestExpireDurationHigherHPWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.s2.Player.HP = 12

	require.NoError(t, f.rt.ExpireDuration(ctx))

	b := f.rt.State.Battle
	assert.Equal(t, model.BattleCompleted, b.State)
	assert.Equal(t, model.EndBattleDuration, b.EndType)
	require.NotNil(t, b.WinnerPlayerID)
	assert.Equal(t, f.s1.Player.PlayerID, *b.WinnerPlayerID)
}

func TestDisconnectReconnectCycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.rt.MarkDisconnected(ctx, f.s1.Player.PlayerID))
	assert.Equal(t, model.BattleAwaitingReconnect, f.rt.State.Battle.State)

	opponent := f.rt.State.Events.ForSeat(2)
	require.NotEmpty(t, opponent)
	assert.Equal(t, EventOpponentDisconnected, opponent[0].Type)
	// The disconnected seat itself gets nothing.
	assert.Empty(t, f.rt.State.Events.ForSeat(1))

	require.NoError(t, f.rt.MarkReconnected(ctx, f.s1.Player.PlayerID))
	assert.Equal(t, model.BattleActive, f.rt.State.Battle.State)
}

func TestCompleteByDisconnect(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.rt.State.Battle.State = model.BattleAwaitingReconnect

	require.NoError(t, f.rt.CompleteByDisconnect(ctx, f.s1.Player.PlayerID))

	b := f.rt.State.Battle
	assert.Equal(t, model.BattleCompleted, b.State)
	assert.Equal(t, model.EndPlayerDisconnected, b.EndType)
	require.NotNil(t, b.WinnerPlayerID)
	assert.Equal(t, f.s2.Player.PlayerID, *b.WinnerPlayerID)
}
