package battle

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/battle/enchant"
	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// Actions in this file are the shared effect vocabulary: player intents and
// ability hooks both mutate state exclusively through them, so event
// recording, write-through persistence, snapshot upkeep and trigger queuing
// happen in exactly one place per effect.

// DrawCards moves up to n cards from the top of the side's deck into its
// hand. An empty deck optionally damages the avatar instead; a full hand
// burns the drawn card to the graveyard.
func (rt *Runtime) DrawCards(ctx context.Context, side *Side, n int) error {
	for i := 0; i < n; i++ {
		if err := rt.drawOne(ctx, side); err != nil {
			return err
		}
	}
	return rt.RefreshNextCard(ctx, side)
}

func (rt *Runtime) drawOne(ctx context.Context, side *Side) error {
	if len(side.Deck) == 0 {
		if rt.State.Mode.DealDamageToAvatarOnEmptyDeck {
			return rt.DamageAvatar(ctx, side, 1)
		}
		return nil
	}
	top := side.Deck[0]
	side.Deck = side.Deck[1:]
	if err := rt.store.DeleteDeckCard(ctx, top.ID); err != nil {
		return err
	}

	if len(side.Hand) >= rt.State.Mode.MaxCardsInHand {
		gc := &model.GraveyardCard{CardRelation: top.CardRelation}
		gc.ID = 0
		if err := rt.store.AddGraveyardCard(ctx, gc); err != nil {
			return err
		}
		side.Graveyard = append(side.Graveyard, gc)
		rt.State.Events.RecordPlayerOnly(side.Idx(), EventDrawCards, map[string]any{
			"burned":         true,
			"battle_card_id": top.BattleCardID,
			"custom_id":      top.Card.CustomID,
		})
		rt.State.Events.RecordOpponentOnly(side.Idx(), EventDrawCards, map[string]any{
			"burned": true,
			"count":  1,
		})
		return nil
	}

	hc := &model.HandCard{CardRelation: top.CardRelation}
	hc.ID = 0
	if err := rt.store.AddHandCard(ctx, hc); err != nil {
		return err
	}
	side.Hand = append(side.Hand, hc)
	rt.State.Events.RecordPlayerOnly(side.Idx(), EventDrawCards, map[string]any{
		"battle_card_id": hc.BattleCardID,
		"custom_id":      hc.Card.CustomID,
		"hp":             hc.HP,
		"attack":         hc.Attack,
	})
	rt.State.Events.RecordOpponentOnly(side.Idx(), EventDrawCards, map[string]any{
		"count": 1,
	})
	return nil
}

// RefreshNextCard re-peeks the top of the deck into the cached snapshot and
// tells the owner, when the mode reveals the next card.
func (rt *Runtime) RefreshNextCard(ctx context.Context, side *Side) error {
	if !rt.State.Mode.ShowNextCardFromDeck {
		return nil
	}
	ps := rt.State.Snapshot.Player(side.Player.ID)
	if len(side.Deck) == 0 {
		ps.Deck.NextCard = nil
		rt.State.Events.RecordPlayerOnly(side.Idx(), EventNextCardInDeck, map[string]any{})
		return nil
	}
	top := side.Deck[0]
	ps.Deck.NextCard = &cache.CardSummary{
		ID:          top.Card.ID,
		CustomID:    top.Card.CustomID,
		Name:        top.Card.Name,
		Description: top.Card.Description,
		Rarity:      top.Card.Rarity,
		Type:        string(top.Card.Type),
		HP:          top.HP,
		Attack:      top.Attack,
		Element:     string(top.Card.Element),
	}
	rt.State.Events.RecordPlayerOnly(side.Idx(), EventNextCardInDeck, map[string]any{
		"battle_card_id": top.BattleCardID,
		"custom_id":      top.Card.CustomID,
	})
	return nil
}

// DamageTile applies damage to a tile's occupant, honoring barrier and
// protect enchantments, and resolves death. Returns the damage actually
// dealt.
func (rt *Runtime) DamageTile(ctx context.Context, owner *Side, tile *model.Tile, amount int) (int, error) {
	if !tile.Occupied() || amount <= 0 {
		return 0, nil
	}
	mirror := rt.State.Mirror(tile)

	if tile.HasEnchantment(model.KeywordBarrier) {
		if err := rt.ench.RemoveKeywordFromTile(ctx, tile, mirror, model.KeywordBarrier); err != nil {
			return 0, err
		}
		rt.State.Events.Record(owner.Idx(), EventEnchantmentRemoved, map[string]any{
			"battle_card_id": tile.BattleCardID,
			"keyword":        string(model.KeywordBarrier),
		})
		return 0, nil
	}
	for _, e := range tile.Enchantments {
		if e.Protect != nil && amount > *e.Protect {
			amount = *e.Protect
		}
	}

	tile.HP -= amount
	if err := rt.store.SaveTile(ctx, tile); err != nil {
		return 0, err
	}
	rt.State.Events.Record(owner.Idx(), EventMinionDamage, map[string]any{
		"battle_card_id": tile.BattleCardID,
		"damage":         amount,
		"hp":             tile.HPWithEnchantments(),
	})
	if tile.HPWithEnchantments() <= 0 {
		if err := rt.KillTile(ctx, owner, tile); err != nil {
			return 0, err
		}
	}
	return amount, nil
}

// KillTile resolves an occupant's death: mummy revival, last-breath hook,
// graveyard move, tile flush, death trigger.
func (rt *Runtime) KillTile(ctx context.Context, owner *Side, tile *model.Tile) error {
	if !tile.Occupied() {
		return nil
	}
	mirror := rt.State.Mirror(tile)

	if tile.HasEnchantment(model.KeywordMummy) && !tile.RemoveMummy {
		if err := rt.ench.RemoveKeywordFromTile(ctx, tile, mirror, model.KeywordMummy); err != nil {
			return err
		}
		tile.HP = 1
		tile.RemoveMummy = true
		if err := rt.store.SaveTile(ctx, tile); err != nil {
			return err
		}
		rt.State.Events.Record(owner.Idx(), EventCardUpdate, map[string]any{
			"battle_card_id": tile.BattleCardID,
			"hp":             tile.HPWithEnchantments(),
			"mummy_revived":  true,
		})
		return nil
	}

	dead := *tile
	rt.recordHistory(ctx, owner, tile.CardID, model.HistoryDeath)

	behaviorCard := tile.OriginalCard
	if behaviorCard == nil {
		behaviorCard = tile.Card
	}
	if !tile.RemoveLastBreath && !dead.HasEnchantment(model.KeywordCensor) {
		if b, err := Resolve(behaviorCard.CustomID); err == nil {
			if dier, ok := b.(Dier); ok {
				if err := dier.AfterDeath(ctx, rt, owner, &dead); err != nil {
					return fmt.Errorf("after death %s: %w", behaviorCard.CustomID, err)
				}
			}
		} else {
			rt.logger.Error("no behavior registered for dying card",
				zap.String("custom_id", behaviorCard.CustomID),
				zap.Int64("battle_id", rt.State.Battle.ID),
			)
		}
	}

	gc := &model.GraveyardCard{CardRelation: model.CardRelation{
		HP:             dead.Card.HP,
		Attack:         dead.Card.Attack,
		BattleCardID:   dead.BattleCardID,
		BattlePlayerID: owner.Player.ID,
		CardID:         dead.CardID,
		Card:           dead.Card,
	}}
	if rt.State.Mode.IsGraveyardEnabled {
		if err := rt.store.AddGraveyardCard(ctx, gc); err != nil {
			return err
		}
		owner.Graveyard = append(owner.Graveyard, gc)
	}

	if err := rt.ench.FlushTile(ctx, tile, mirror); err != nil {
		return err
	}
	// Flush zeroes the counter along with the occupant; the tile's death
	// tally outlives individual occupants.
	deaths := tile.CardDeathCount
	tile.Flush()
	tile.CardDeathCount = deaths + 1
	if err := rt.store.SaveTile(ctx, tile); err != nil {
		return err
	}
	rt.State.Events.Record(owner.Idx(), EventMinionDestroy, map[string]any{
		"battle_card_id": dead.BattleCardID,
		"tile_id":        tile.ID,
	})

	rt.queue(occurrence{kind: occFriendlyCreatureDeath, side: owner, tile: &dead})
	return nil
}

// DamageAvatar applies damage to a player's avatar and completes the battle
// when hp reaches zero.
func (rt *Runtime) DamageAvatar(ctx context.Context, victim *Side, amount int) error {
	if amount <= 0 {
		return nil
	}
	victim.Player.HP -= amount
	if victim.Player.HP < 0 {
		victim.Player.HP = 0
	}
	if err := rt.store.SavePlayerHP(ctx, victim.Player.ID, victim.Player.HP); err != nil {
		return err
	}
	rt.State.Events.Record(victim.Idx(), EventPlayerDamage, map[string]any{
		"player_idx": victim.Idx(),
		"damage":     amount,
		"hp":         victim.Player.HP,
	})
	if victim.Player.HP == 0 {
		rt.State.Events.Record(victim.Idx(), EventPlayerDestroy, map[string]any{
			"player_idx": victim.Idx(),
		})
		return rt.Complete(ctx, rt.State.Opponent(victim), model.EndPlayerKilled)
	}
	rt.queue(occurrence{kind: occAvatarDamage, side: victim, amount: amount})
	return nil
}

// HealAvatar restores avatar hp, capped at the hp limit.
func (rt *Runtime) HealAvatar(ctx context.Context, side *Side, amount int) error {
	if amount <= 0 {
		return nil
	}
	side.Player.HP += amount
	if side.Player.HP > side.Player.HPLimit {
		side.Player.HP = side.Player.HPLimit
	}
	if err := rt.store.SavePlayerHP(ctx, side.Player.ID, side.Player.HP); err != nil {
		return err
	}
	rt.State.Events.Record(side.Idx(), EventPlayerHeal, map[string]any{
		"player_idx": side.Idx(),
		"heal":       amount,
		"hp":         side.Player.HP,
	})
	return nil
}

// AddKeywordToTile attaches a keyword enchantment to an occupied tile and
// announces it. turns <= 0 makes it permanent.
func (rt *Runtime) AddKeywordToTile(ctx context.Context, tile *model.Tile, keyword model.EnchantKeyword, typ model.EnchantType, turns int) error {
	ench := enchant.Keyword(keyword, typ, turns)
	if err := rt.ench.AddToTile(ctx, tile, rt.State.Mirror(tile), ench); err != nil {
		return err
	}
	rt.State.Events.Record(rt.State.Battle.TurnIdx, EventEnchantmentApplied, map[string]any{
		"battle_card_id": tile.BattleCardID,
		"tile_id":        tile.ID,
		"keyword":        string(keyword),
		"turns":          turns,
	})
	return nil
}

// EnsnareTiles locks the given tiles out of attacking for one turn.
func (rt *Runtime) EnsnareTiles(ctx context.Context, tiles []*model.Tile) error {
	for _, tile := range tiles {
		if !tile.Occupied() {
			continue
		}
		if err := rt.AddKeywordToTile(ctx, tile, model.KeywordEnsnare, model.EnchantDebuff, 1); err != nil {
			return err
		}
	}
	return nil
}

// BuffTile folds hp/attack deltas into the tile's stat buff and announces
// the new effective values.
func (rt *Runtime) BuffTile(ctx context.Context, tile *model.Tile, hpDelta, attackDelta int) error {
	mirror := rt.State.Mirror(tile)
	if hpDelta != 0 {
		if err := rt.ench.AddHPToTile(ctx, tile, mirror, hpDelta); err != nil {
			return err
		}
	}
	if attackDelta != 0 {
		if err := rt.ench.AddAttackToTile(ctx, tile, mirror, attackDelta); err != nil {
			return err
		}
	}
	rt.State.Events.Record(rt.State.Battle.TurnIdx, EventCardUpdate, map[string]any{
		"battle_card_id": tile.BattleCardID,
		"hp":             tile.HPWithEnchantments(),
		"attack":         tile.AttackWithEnchantments(),
	})
	if tile.HPWithEnchantments() <= 0 {
		if _, owner := rt.State.TileByID(tile.ID); owner != nil {
			return rt.KillTile(ctx, owner, tile)
		}
	}
	return nil
}

// SpellAttackTiles deals spell damage to every given tile.
func (rt *Runtime) SpellAttackTiles(ctx context.Context, tiles []*model.Tile, damage int) error {
	for _, tile := range tiles {
		_, owner := rt.State.TileByID(tile.ID)
		if owner == nil {
			continue
		}
		if _, err := rt.DamageTile(ctx, owner, tile, damage); err != nil {
			return err
		}
	}
	return nil
}

// MoveCardFromTileToHand bounces a tile's occupant back to its owner's hand
// with base stats restored. A full hand burns the card instead.
func (rt *Runtime) MoveCardFromTileToHand(ctx context.Context, owner *Side, tile *model.Tile) error {
	if !tile.Occupied() {
		return nil
	}
	rel := model.CardRelation{
		HP:             tile.Card.HP,
		Attack:         tile.Card.Attack,
		BattleCardID:   tile.BattleCardID,
		BattlePlayerID: owner.Player.ID,
		CardID:         tile.CardID,
		Card:           tile.Card,
	}
	if err := rt.ench.FlushTile(ctx, tile, rt.State.Mirror(tile)); err != nil {
		return err
	}
	tile.Flush()
	if err := rt.store.SaveTile(ctx, tile); err != nil {
		return err
	}

	if len(owner.Hand) >= rt.State.Mode.MaxCardsInHand {
		gc := &model.GraveyardCard{CardRelation: rel}
		if err := rt.store.AddGraveyardCard(ctx, gc); err != nil {
			return err
		}
		owner.Graveyard = append(owner.Graveyard, gc)
		rt.State.Events.Record(owner.Idx(), EventMinionDestroy, map[string]any{
			"battle_card_id": rel.BattleCardID,
			"burned":         true,
		})
		return nil
	}
	hc := &model.HandCard{CardRelation: rel}
	if err := rt.store.AddHandCard(ctx, hc); err != nil {
		return err
	}
	owner.Hand = append(owner.Hand, hc)
	rt.State.Events.Record(owner.Idx(), EventCardUpdate, map[string]any{
		"battle_card_id": rel.BattleCardID,
		"returned_to_hand": true,
	})
	return nil
}

// SetTileElement changes a tile's element, recomputing the elemental buff.
func (rt *Runtime) SetTileElement(ctx context.Context, tile *model.Tile, element model.Element) error {
	tile.Element = element
	if err := rt.store.SaveTile(ctx, tile); err != nil {
		return err
	}
	rt.State.Events.Record(rt.State.Battle.TurnIdx, EventTileUpdateElement, map[string]any{
		"tile_id": tile.ID,
		"element": string(element),
	})
	return rt.RecomputeTileBuff(ctx, tile)
}

// RecomputeTileBuff enforces the elemental buff rule: exactly one element
// buff (+1 attack) exists iff the tile is occupied and its element matches
// the occupant's non-neutral element. Called on every element or occupant
// change. The element buff is its own record; ability-granted stat buffs
// live under tile_buff and recompute never touches them.
func (rt *Runtime) RecomputeTileBuff(ctx context.Context, tile *model.Tile) error {
	mirror := rt.State.Mirror(tile)
	wantBuff := tile.Occupied() &&
		tile.Element != model.ElementNeutral &&
		tile.Card.Element == tile.Element
	hasBuff := tile.HasEnchantment(model.KeywordElementBuff)

	switch {
	case wantBuff && !hasBuff:
		buff := &model.Enchantment{
			Keyword:           model.KeywordElementBuff,
			Type:              model.EnchantBuff,
			AffectsAttack:     true,
			AttackChangeValue: 1,
		}
		return rt.ench.AddToTile(ctx, tile, mirror, buff)
	case !wantBuff && hasBuff:
		return rt.ench.RemoveKeywordFromTile(ctx, tile, mirror, model.KeywordElementBuff)
	}
	return nil
}

// MysteryDisappear consumes an activated mystery: removed from the active
// set, buried, announced to both sides.
func (rt *Runtime) MysteryDisappear(ctx context.Context, slot MysterySlot) error {
	side := slot.Side
	for i, mc := range side.Mysteries {
		if mc.ID == slot.Card.ID {
			side.Mysteries = append(side.Mysteries[:i], side.Mysteries[i+1:]...)
			break
		}
	}
	if err := rt.store.RemoveMysteryCard(ctx, slot.Card.ID); err != nil {
		return err
	}
	if rt.State.Mode.IsGraveyardEnabled {
		gc := &model.GraveyardCard{CardRelation: slot.Card.CardRelation}
		gc.ID = 0
		if err := rt.store.AddGraveyardCard(ctx, gc); err != nil {
			return err
		}
		side.Graveyard = append(side.Graveyard, gc)
	}
	rt.recordHistory(ctx, side, slot.Card.CardID, model.HistoryMysteryActivated)
	rt.State.Events.Record(side.Idx(), EventMysteryActivated, map[string]any{
		"battle_card_id": slot.Card.BattleCardID,
		"custom_id":      slot.Card.Card.CustomID,
	})
	return nil
}

// DestroyMystery removes an unactivated face-down mystery, burying it
// without firing it.
func (rt *Runtime) DestroyMystery(ctx context.Context, owner *Side, mc *model.MysteryCard) error {
	for i, cur := range owner.Mysteries {
		if cur.ID == mc.ID {
			owner.Mysteries = append(owner.Mysteries[:i], owner.Mysteries[i+1:]...)
			break
		}
	}
	if err := rt.store.RemoveMysteryCard(ctx, mc.ID); err != nil {
		return err
	}
	if rt.State.Mode.IsGraveyardEnabled {
		gc := &model.GraveyardCard{CardRelation: mc.CardRelation}
		gc.ID = 0
		if err := rt.store.AddGraveyardCard(ctx, gc); err != nil {
			return err
		}
		owner.Graveyard = append(owner.Graveyard, gc)
	}
	rt.State.Events.Record(owner.Idx(), EventMinionDestroy, map[string]any{
		"battle_card_id": mc.BattleCardID,
		"mystery":        true,
	})
	return nil
}

// RandomTiles draws up to n tiles uniformly without replacement.
func (rt *Runtime) RandomTiles(tiles []*model.Tile, n int) []*model.Tile {
	if len(tiles) == 0 || n <= 0 {
		return nil
	}
	shuffled := make([]*model.Tile, len(tiles))
	copy(shuffled, tiles)
	rt.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
