package battle

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// EndTurn resolves a client-submitted end-turn for the given player.
func (rt *Runtime) EndTurn(ctx context.Context, playerID int64) error {
	st := rt.State
	if !st.Battle.State.IsActive() {
		return Invalid("battle_not_active", "battle is not accepting actions")
	}
	side := st.SideByPlayerID(playerID)
	if side == nil {
		return Invalid("unknown_player", "player %d is not part of this battle", playerID)
	}
	if st.Battle.TurnIdx != side.Idx() {
		return Invalid("not_your_turn", "it is not your turn")
	}
	return rt.advanceTurn(ctx)
}

// EndTurnIfCurrent is the turn-expiry timer entry point: it ends the turn
// only if the battle is still on the given turn_number/turn_idx pair. A
// stale timer is a no-op.
func (rt *Runtime) EndTurnIfCurrent(ctx context.Context, turnNumber, turnIdx int) error {
	b := rt.State.Battle
	if !b.State.IsActive() {
		return nil
	}
	if b.TurnNumber != turnNumber || b.TurnIdx != turnIdx {
		return nil
	}
	return rt.advanceTurn(ctx)
}

// advanceTurn performs end-turn resolution: enchantment countdown for the
// ending side, tile state resets, turn-owner flip, timer bookkeeping and the
// start-of-turn draw for the next side.
func (rt *Runtime) advanceTurn(ctx context.Context) error {
	st := rt.State
	ending := st.Acting()
	if ending == nil {
		return Invalid("no_acting_side", "no acting side attached")
	}

	rt.State.Events.Record(ending.Idx(), EventEndTurn, map[string]any{
		"turn_idx":    ending.Idx(),
		"turn_number": st.Battle.TurnNumber,
	})

	if err := rt.countdownEnchantments(ctx, ending); err != nil {
		return err
	}
	if err := rt.resetTiles(ctx, ending); err != nil {
		return err
	}

	st.Battle.TurnIdx = 3 - st.Battle.TurnIdx
	// The global turn number advances once both seats have moved.
	if st.Battle.TurnIdx == st.Battle.FirstTurnIdx {
		st.Battle.TurnNumber++
	}
	if err := rt.store.SaveBattle(ctx, st.Battle); err != nil {
		return err
	}
	st.Snapshot.MarkRoundStarted(rt.now())

	next := st.Acting()
	if err := rt.UnlockTileForTurn(ctx, next); err != nil {
		return err
	}
	rt.State.Events.Record(next.Idx(), EventStartTurn, map[string]any{
		"turn_idx":    next.Idx(),
		"turn_number": st.Battle.TurnNumber,
		"duration":    st.Mode.BattlefieldTimerDuration,
	})
	if err := rt.DrawCards(ctx, next, 1); err != nil {
		return err
	}
	return rt.ResolveTriggers(ctx)
}

// countdownEnchantments decrements the timed enchantments belonging to the
// seat whose turn just ended. A MIA enchantment expiring wakes the creature
// and fires its awake trigger.
func (rt *Runtime) countdownEnchantments(ctx context.Context, side *Side) error {
	for _, tile := range side.Tiles {
		wasMIA := tile.HasEnchantment(model.KeywordMIA)
		if err := rt.ench.CountdownTile(ctx, tile, rt.State.Mirror(tile)); err != nil {
			return err
		}
		if wasMIA && !tile.HasEnchantment(model.KeywordMIA) && tile.Occupied() {
			rt.queue(occurrence{kind: occAwakeFromMIA, side: side, tile: tile})
		}
	}
	for _, hc := range side.Hand {
		if err := rt.ench.CountdownHandCard(ctx, hc); err != nil {
			return err
		}
	}
	return nil
}

// resetTiles returns the ending side's acted and freshly placed creatures to
// the ready state. LOCKED tiles stay locked.
func (rt *Runtime) resetTiles(ctx context.Context, side *Side) error {
	for _, tile := range side.Tiles {
		switch tile.State {
		case model.TileUsed, model.TileAsleep:
			tile.State = model.TileActive
			if err := rt.store.SaveTile(ctx, tile); err != nil {
				return err
			}
		}
	}
	return nil
}
