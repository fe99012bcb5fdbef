package battle

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// AttackIntent is a client's request for one of its creatures to attack.
type AttackIntent struct {
	// TileID is the attacking creature's tile on the acting side.
	TileID int64
	// TargetTileID is the defending creature's tile; nil attacks the avatar.
	TargetTileID *int64
}

// Attack validates and resolves a creature attack against a creature or the
// opponent's avatar.
func (rt *Runtime) Attack(ctx context.Context, playerID int64, intent AttackIntent) error {
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
	enemy := st.Opponent(side)
	if enemy == nil {
		return Invalid("no_opponent", "no opponent attached")
	}

	attacker := side.TileByID(intent.TileID)
	if attacker == nil || !attacker.Occupied() {
		return Invalid("invalid_attacker", "tile %d has no creature of yours", intent.TileID)
	}
	if err := validateCanAct(attacker); err != nil {
		return err
	}
	if attacker.AttackWithEnchantments() == 0 {
		return Invalid("zero_attack", "creature has no attack")
	}

	if intent.TargetTileID == nil {
		return rt.attackAvatar(ctx, side, enemy, attacker)
	}
	return rt.attackCreature(ctx, side, enemy, attacker, *intent.TargetTileID)
}

// validateCanAct checks the attacker's tile state and attack-blocking
// enchantments. Pounce overrides the placed-this-turn restriction.
func validateCanAct(attacker *model.Tile) error {
	switch attacker.State {
	case model.TileActive:
	case model.TileAsleep:
		if !attacker.HasEnchantment(model.KeywordPounce) {
			return Invalid("creature_asleep", "creature cannot act the turn it was played")
		}
	case model.TileUsed:
		return Invalid("creature_used", "creature already acted this turn")
	default:
		return Invalid("creature_locked", "creature cannot act")
	}
	if attacker.HasEnchantment(model.KeywordEnsnare) {
		return Invalid("creature_ensnared", "creature is ensnared")
	}
	if attacker.HasEnchantment(model.KeywordMIA) {
		return Invalid("creature_mia", "creature is missing in action")
	}
	return nil
}

// insultTiles returns the defending tiles that must be attacked first.
func insultTiles(enemy *Side) []*model.Tile {
	var out []*model.Tile
	for _, t := range enemy.OccupiedTiles() {
		if t.HasEnchantment(model.KeywordInsult) {
			out = append(out, t)
		}
	}
	return out
}

func (rt *Runtime) attackAvatar(ctx context.Context, side, enemy *Side, attacker *model.Tile) error {
	if len(insultTiles(enemy)) > 0 {
		return Invalid("must_attack_insult", "an insulting creature must be attacked first")
	}
	damage := attacker.AttackWithEnchantments()
	rt.State.Events.Record(side.Idx(), EventPlayerAttack, map[string]any{
		"battle_card_id": attacker.BattleCardID,
		"target_idx":     enemy.Idx(),
		"damage":         damage,
	})
	rt.recordHistory(ctx, side, attacker.CardID, model.HistoryAttack)

	if err := rt.DamageAvatar(ctx, enemy, damage); err != nil {
		return err
	}
	if err := rt.leech(ctx, side, attacker, damage); err != nil {
		return err
	}
	if err := rt.markUsed(ctx, attacker); err != nil {
		return err
	}
	return rt.ResolveTriggers(ctx)
}

func (rt *Runtime) attackCreature(ctx context.Context, side, enemy *Side, attacker *model.Tile, targetTileID int64) error {
	defender := enemy.TileByID(targetTileID)
	if defender == nil || !defender.Occupied() {
		return Invalid("invalid_target", "tile %d has no creature to attack", targetTileID)
	}
	if defender.HasEnchantment(model.KeywordUntouchable) || defender.HasEnchantment(model.KeywordInvisible) {
		return Invalid("invalid_target", "target cannot be attacked")
	}
	if insults := insultTiles(enemy); len(insults) > 0 && !defender.HasEnchantment(model.KeywordInsult) {
		return Invalid("must_attack_insult", "an insulting creature must be attacked first")
	}

	attackDamage := attacker.AttackWithEnchantments()
	retaliation := defender.AttackWithEnchantments()
	rt.State.Events.Record(side.Idx(), EventMinionAttack, map[string]any{
		"battle_card_id":        attacker.BattleCardID,
		"target_battle_card_id": defender.BattleCardID,
		"damage":                attackDamage,
	})
	rt.recordHistory(ctx, side, attacker.CardID, model.HistoryAttack)

	dealt, err := rt.DamageTile(ctx, enemy, defender, attackDamage)
	if err != nil {
		return err
	}
	if err := rt.leech(ctx, side, attacker, dealt); err != nil {
		return err
	}
	// The defender strikes back even if it died; both deaths resolve.
	if retaliation > 0 && attacker.Occupied() {
		if _, err := rt.DamageTile(ctx, side, attacker, retaliation); err != nil {
			return err
		}
	}
	if attacker.Occupied() {
		if err := rt.markUsed(ctx, attacker); err != nil {
			return err
		}
	}
	return rt.ResolveTriggers(ctx)
}

// leech heals the attacker's owner for the damage its leeching creature
// dealt.
func (rt *Runtime) leech(ctx context.Context, side *Side, attacker *model.Tile, dealt int) error {
	if dealt <= 0 || !attacker.Occupied() || !attacker.HasEnchantment(model.KeywordLeech) {
		return nil
	}
	return rt.HealAvatar(ctx, side, dealt)
}

func (rt *Runtime) markUsed(ctx context.Context, tile *model.Tile) error {
	tile.State = model.TileUsed
	if err := rt.store.SaveTile(ctx, tile); err != nil {
		return err
	}
	rt.State.Events.Record(rt.State.Battle.TurnIdx, EventTileUpdateState, map[string]any{
		"tile_id": tile.ID,
		"state":   string(model.TileUsed),
	})
	return nil
}
