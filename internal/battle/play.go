package battle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// PlayCardIntent is a client's request to play a card from hand.
type PlayCardIntent struct {
	BattleCardID int
	// TileID is the destination tile for a serf.
	TileID *int64
	// TargetTileID is the explicit target of a targeted spell or warcry.
	TargetTileID *int64
	// TargetAvatarIdx targets a player avatar (1 or 2) instead of a tile.
	TargetAvatarIdx *int
}

// PlayCard validates and resolves a play-card intent for the given player.
// Validation failures return a *ValidationError before any state is touched.
func (rt *Runtime) PlayCard(ctx context.Context, playerID int64, intent PlayCardIntent) error {
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
	hc := side.HandCardByBattleCardID(intent.BattleCardID)
	if hc == nil {
		return Invalid("card_not_in_hand", "card %d is not in your hand", intent.BattleCardID)
	}

	behavior, err := Resolve(hc.Card.CustomID)
	if err != nil {
		// Enabled cards always have a behavior; reaching this mid-battle is
		// a content-integrity failure, not a player mistake.
		rt.logger.Error("played card has no registered behavior",
			zap.String("custom_id", hc.Card.CustomID),
		)
		return fmt.Errorf("resolve behavior for %s: %w", hc.Card.CustomID, err)
	}

	target, err := rt.resolveTarget(side, hc.Card, intent)
	if err != nil {
		// A targeted warcry serf may be played without a target when no
		// eligible one exists; its warcry then silently no-ops.
		var verr *ValidationError
		if !(hc.Card.Type == model.CardSerf && errors.As(err, &verr) && verr.Code == "target_required") {
			return err
		}
		target = nil
	}

	switch hc.Card.Type {
	case model.CardSerf:
		return rt.playSerf(ctx, side, hc, behavior, intent, target)
	case model.CardSpell:
		return rt.playSpell(ctx, side, hc, behavior, target)
	case model.CardMystery:
		return rt.playMystery(ctx, side, hc)
	}
	return Invalid("unknown_card_type", "card type %q cannot be played", hc.Card.Type)
}

// resolveTarget validates the chosen target against the card's targeting
// scope. Untouchable and invisible occupants cannot be targeted by the
// opponent.
func (rt *Runtime) resolveTarget(side *Side, card *model.Card, intent PlayCardIntent) (*Target, error) {
	if !card.RequiresTarget() {
		return nil, nil
	}
	scope := card.TargetingScope

	if intent.TargetAvatarIdx != nil {
		targetSide := rt.State.SideByIdx(*intent.TargetAvatarIdx)
		if targetSide == nil {
			return nil, Invalid("invalid_target", "no such player avatar")
		}
		friendly := targetSide == side
		if friendly && !scope.AllowsFriendly() || !friendly && !scope.AllowsOpponent() {
			return nil, Invalid("invalid_target", "avatar is not a legal target for this card")
		}
		return &Target{Side: targetSide, Avatar: true}, nil
	}

	if intent.TargetTileID == nil {
		return nil, Invalid("target_required", "card %s requires a target", card.CustomID)
	}
	tile, owner := rt.State.TileByID(*intent.TargetTileID)
	if tile == nil {
		return nil, Invalid("invalid_target", "tile %d does not exist", *intent.TargetTileID)
	}
	friendly := owner == side
	if friendly && !scope.AllowsFriendly() || !friendly && !scope.AllowsOpponent() {
		return nil, Invalid("invalid_target", "tile is not a legal target for this card")
	}
	if !friendly && tile.Occupied() {
		if tile.HasEnchantment(model.KeywordUntouchable) || tile.HasEnchantment(model.KeywordInvisible) {
			return nil, Invalid("invalid_target", "target cannot be selected")
		}
	}
	return &Target{Tile: tile, Side: owner}, nil
}

func (rt *Runtime) playSerf(ctx context.Context, side *Side, hc *model.HandCard, behavior Behavior, intent PlayCardIntent, target *Target) error {
	if intent.TileID == nil {
		return Invalid("tile_required", "a serf needs a destination tile")
	}
	dest := side.TileByID(*intent.TileID)
	if dest == nil {
		return Invalid("invalid_tile", "destination tile %d is not on your side", *intent.TileID)
	}
	if dest.State != model.TileFree {
		return Invalid("tile_occupied", "tile %d is not free", dest.ID)
	}

	if err := rt.removeFromHand(ctx, side, hc); err != nil {
		return err
	}
	dest.Card = hc.Card
	dest.CardID = hc.CardID
	dest.OriginalCard = hc.Card
	dest.OriginalCardID = hc.CardID
	dest.HP = hc.HP
	dest.Attack = hc.Attack
	dest.BattleCardID = hc.BattleCardID
	dest.State = model.TileAsleep
	if err := rt.store.SaveTile(ctx, dest); err != nil {
		return err
	}
	rt.recordHistory(ctx, side, hc.CardID, model.HistoryPlacedOnTile)
	rt.State.Events.Record(side.Idx(), EventPlayCard, map[string]any{
		"battle_card_id": hc.BattleCardID,
		"custom_id":      hc.Card.CustomID,
		"tile_id":        dest.ID,
	})

	if err := rt.RecomputeTileBuff(ctx, dest); err != nil {
		return err
	}
	if appearer, ok := behavior.(Appearer); ok {
		if err := appearer.AfterAppear(ctx, rt, Appear{Side: side, Tile: dest, Target: target}); err != nil {
			return err
		}
	}

	warcry := false
	if wc, ok := behavior.(WarcryCard); ok {
		warcry = wc.IsWarcry()
	}
	rt.queue(occurrence{kind: occCreaturePlay, side: side, tile: dest, warcry: warcry})
	return rt.ResolveTriggers(ctx)
}

func (rt *Runtime) playSpell(ctx context.Context, side *Side, hc *model.HandCard, behavior Behavior, target *Target) error {
	if err := rt.removeFromHand(ctx, side, hc); err != nil {
		return err
	}
	rt.recordHistory(ctx, side, hc.CardID, model.HistorySpellPlayed)
	rt.State.Events.Record(side.Idx(), EventPlayCard, map[string]any{
		"battle_card_id": hc.BattleCardID,
		"custom_id":      hc.Card.CustomID,
	})

	if appearer, ok := behavior.(Appearer); ok {
		if err := appearer.AfterAppear(ctx, rt, Appear{Side: side, Target: target}); err != nil {
			return err
		}
	}

	if rt.State.Mode.IsGraveyardEnabled {
		gc := &model.GraveyardCard{CardRelation: hc.CardRelation}
		gc.ID = 0
		if err := rt.store.AddGraveyardCard(ctx, gc); err != nil {
			return err
		}
		side.Graveyard = append(side.Graveyard, gc)
	}

	rt.queue(occurrence{kind: occSpellPlayed, side: side, card: hc.Card})
	return rt.ResolveTriggers(ctx)
}

func (rt *Runtime) playMystery(ctx context.Context, side *Side, hc *model.HandCard) error {
	if err := rt.removeFromHand(ctx, side, hc); err != nil {
		return err
	}
	mc := &model.MysteryCard{CardRelation: hc.CardRelation}
	mc.ID = 0
	if err := rt.store.AddMysteryCard(ctx, mc); err != nil {
		return err
	}
	side.Mysteries = append(side.Mysteries, mc)

	// The opponent learns a mystery was set, not which one.
	rt.State.Events.RecordPlayerOnly(side.Idx(), EventPlayCard, map[string]any{
		"battle_card_id": mc.BattleCardID,
		"custom_id":      mc.Card.CustomID,
		"mystery":        true,
	})
	rt.State.Events.RecordOpponentOnly(side.Idx(), EventPlayCard, map[string]any{
		"mystery": true,
	})
	return nil
}

// removeFromHand detaches a card from the side's hand in memory and in the
// durable store, dropping any hand enchantments with it.
func (rt *Runtime) removeFromHand(ctx context.Context, side *Side, hc *model.HandCard) error {
	for i, cur := range side.Hand {
		if cur.ID == hc.ID {
			side.Hand = append(side.Hand[:i], side.Hand[i+1:]...)
			break
		}
	}
	return rt.store.RemoveHandCard(ctx, hc.ID)
}
