package battle

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// Surrender immediately completes the battle in favor of the opponent. When
// no opponent is resolvable the battle is discarded instead; the caller
// never sees an error for that, only the anomaly log.
func (rt *Runtime) Surrender(ctx context.Context, playerID int64) error {
	st := rt.State
	if st.Battle.State.IsTerminal() {
		return nil
	}
	side := st.SideByPlayerID(playerID)
	if side == nil {
		return Invalid("unknown_player", "player %d is not part of this battle", playerID)
	}
	winner := st.Opponent(side)
	if winner == nil {
		return rt.Discard(ctx, "surrender with no resolvable opponent")
	}
	return rt.Complete(ctx, winner, model.EndPlayerSurrendered)
}

// ExpireDuration is the absolute battle-duration timer entry point. Equal
// hp declares a draw via DISCARDED; otherwise the higher-hp side wins.
func (rt *Runtime) ExpireDuration(ctx context.Context) error {
	st := rt.State
	if !st.Battle.State.IsActive() {
		return nil
	}
	s1, s2 := st.SideByIdx(1), st.SideByIdx(2)
	if s1 == nil || s2 == nil {
		return rt.Discard(ctx, "duration expired before both seats attached")
	}
	switch {
	case s1.Player.HP == s2.Player.HP:
		return rt.Discard(ctx, "duration expired with equal hp")
	case s1.Player.HP > s2.Player.HP:
		return rt.Complete(ctx, s1, model.EndBattleDuration)
	default:
		return rt.Complete(ctx, s2, model.EndBattleDuration)
	}
}

// MarkDisconnected moves an active battle to AWAITING_RECONNECT and tells
// the opponent.
func (rt *Runtime) MarkDisconnected(ctx context.Context, playerID int64) error {
	st := rt.State
	if st.Battle.State != model.BattleActive {
		return nil
	}
	side := st.SideByPlayerID(playerID)
	if side == nil {
		return nil
	}
	st.Battle.State = model.BattleAwaitingReconnect
	if err := rt.store.SaveBattle(ctx, st.Battle); err != nil {
		return err
	}
	rt.State.Events.RecordOpponentOnly(side.Idx(), EventOpponentDisconnected, map[string]any{
		"player_idx": side.Idx(),
	})
	return nil
}

// MarkReconnected returns an AWAITING_RECONNECT battle to ACTIVE.
func (rt *Runtime) MarkReconnected(ctx context.Context, playerID int64) error {
	st := rt.State
	if st.Battle.State != model.BattleAwaitingReconnect {
		return nil
	}
	side := st.SideByPlayerID(playerID)
	if side == nil {
		return nil
	}
	st.Battle.State = model.BattleActive
	if err := rt.store.SaveBattle(ctx, st.Battle); err != nil {
		return err
	}
	rt.State.Events.RecordOpponentOnly(side.Idx(), EventOpponentReconnected, map[string]any{
		"player_idx": side.Idx(),
	})
	return nil
}

// CompleteByDisconnect finishes the battle for the player who never came
// back, in favor of the remaining side.
func (rt *Runtime) CompleteByDisconnect(ctx context.Context, gonePlayerID int64) error {
	st := rt.State
	if st.Battle.State.IsTerminal() {
		return nil
	}
	gone := st.SideByPlayerID(gonePlayerID)
	if gone == nil {
		return rt.Discard(ctx, "disconnect completion with unknown player")
	}
	winner := st.Opponent(gone)
	if winner == nil {
		return rt.Discard(ctx, "disconnect completion with no remaining side")
	}
	return rt.Complete(ctx, winner, model.EndPlayerDisconnected)
}
