// Package enchant maintains enchantments across their three homes: the
// durable store, the in-memory battle state and the cached snapshot mirror.
// Every mutation goes through the Engine so the three never drift.
package enchant

import (
	"context"
	"fmt"

	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// Store is the durable side of the engine. *repository.EnchantmentRepo
// satisfies it.
type Store interface {
	Create(ctx context.Context, e *model.Enchantment) error
	Update(ctx context.Context, e *model.Enchantment) error
	Delete(ctx context.Context, id int64) error
	DeleteByTile(ctx context.Context, tileID int64) error
}

// Engine applies and removes enchantments.
type Engine struct {
	store Store
}

// NewEngine wires the engine over a durable store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// AddToTile attaches an enchantment to a tile, persisting it and mirroring it
// into the snapshot.
func (e *Engine) AddToTile(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot, ench *model.Enchantment) error {
	ench.TileID = &tile.ID
	ench.BattlePlayerID = &tile.BattlePlayerID
	if err := e.store.Create(ctx, ench); err != nil {
		return err
	}
	tile.Enchantments = append(tile.Enchantments, ench)
	if mirror != nil {
		mirror.Enchantments[ench.ID] = &cache.EnchantmentSummary{
			ID:      ench.ID,
			Keyword: string(ench.Keyword),
			Type:    string(ench.Type),
			Active:  true,
		}
	}
	return nil
}

// AddToHandCard attaches an enchantment to a card still in hand.
func (e *Engine) AddToHandCard(ctx context.Context, hc *model.HandCard, ench *model.Enchantment) error {
	ench.CardHandID = &hc.ID
	ench.BattlePlayerID = &hc.BattlePlayerID
	if err := e.store.Create(ctx, ench); err != nil {
		return err
	}
	hc.Enchantments = append(hc.Enchantments, ench)
	return nil
}

// RemoveFromTile detaches one enchantment from a tile everywhere it lives.
func (e *Engine) RemoveFromTile(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot, enchID int64) error {
	if err := e.store.Delete(ctx, enchID); err != nil {
		return err
	}
	for i, ench := range tile.Enchantments {
		if ench.ID == enchID {
			tile.Enchantments = append(tile.Enchantments[:i], tile.Enchantments[i+1:]...)
			break
		}
	}
	if mirror != nil {
		delete(mirror.Enchantments, enchID)
	}
	return nil
}

// RemoveKeywordFromTile detaches every enchantment with the keyword.
func (e *Engine) RemoveKeywordFromTile(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot, keyword model.EnchantKeyword) error {
	kept := tile.Enchantments[:0]
	for _, ench := range tile.Enchantments {
		if ench.Keyword != keyword {
			kept = append(kept, ench)
			continue
		}
		if err := e.store.Delete(ctx, ench.ID); err != nil {
			return err
		}
		if mirror != nil {
			delete(mirror.Enchantments, ench.ID)
		}
	}
	tile.Enchantments = kept
	return nil
}

// FlushTile drops every enchantment from a tile, durable rows and mirror
// alike. Called when the occupant dies or returns to hand.
func (e *Engine) FlushTile(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot) error {
	if err := e.store.DeleteByTile(ctx, tile.ID); err != nil {
		return err
	}
	tile.Enchantments = nil
	if mirror != nil {
		for id := range mirror.Enchantments {
			delete(mirror.Enchantments, id)
		}
	}
	return nil
}

// tileBuff finds the tile's stat-delta enchantment, if present.
func tileBuff(tile *model.Tile) *model.Enchantment {
	for _, ench := range tile.Enchantments {
		if ench.Keyword == model.KeywordTileBuff {
			return ench
		}
	}
	return nil
}

// getOrCreateTileBuff returns the tile's single stat-delta enchantment,
// creating a zero-delta one on first use. A tile never carries two.
func (e *Engine) getOrCreateTileBuff(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot) (*model.Enchantment, error) {
	if buff := tileBuff(tile); buff != nil {
		return buff, nil
	}
	buff := &model.Enchantment{
		Keyword: model.KeywordTileBuff,
		Type:    model.EnchantBuff,
	}
	if err := e.AddToTile(ctx, tile, mirror, buff); err != nil {
		return nil, fmt.Errorf("create tile buff: %w", err)
	}
	return buff, nil
}

// AddHPToTile folds an hp delta into the tile's stat buff.
func (e *Engine) AddHPToTile(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot, delta int) error {
	buff, err := e.getOrCreateTileBuff(ctx, tile, mirror)
	if err != nil {
		return err
	}
	buff.AffectsHP = true
	buff.HPChangeValue += delta
	return e.store.Update(ctx, buff)
}

// AddAttackToTile folds an attack delta into the tile's stat buff.
func (e *Engine) AddAttackToTile(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot, delta int) error {
	buff, err := e.getOrCreateTileBuff(ctx, tile, mirror)
	if err != nil {
		return err
	}
	buff.AffectsAttack = true
	buff.AttackChangeValue += delta
	return e.store.Update(ctx, buff)
}

// CountdownTile decrements the turn counters of a tile's timed enchantments
// and removes the expired ones. Permanent enchantments are untouched.
func (e *Engine) CountdownTile(ctx context.Context, tile *model.Tile, mirror *cache.TileSnapshot) error {
	kept := tile.Enchantments[:0]
	for _, ench := range tile.Enchantments {
		if ench.Infinite() {
			kept = append(kept, ench)
			continue
		}
		*ench.Turns--
		if *ench.Turns > 0 {
			if err := e.store.Update(ctx, ench); err != nil {
				return err
			}
			kept = append(kept, ench)
			continue
		}
		if err := e.store.Delete(ctx, ench.ID); err != nil {
			return err
		}
		if mirror != nil {
			delete(mirror.Enchantments, ench.ID)
		}
	}
	tile.Enchantments = kept
	return nil
}

// CountdownHandCard decrements the counters of a hand card's timed
// enchantments and removes the expired ones.
func (e *Engine) CountdownHandCard(ctx context.Context, hc *model.HandCard) error {
	kept := hc.Enchantments[:0]
	for _, ench := range hc.Enchantments {
		if ench.Infinite() {
			kept = append(kept, ench)
			continue
		}
		*ench.Turns--
		if *ench.Turns > 0 {
			if err := e.store.Update(ctx, ench); err != nil {
				return err
			}
			kept = append(kept, ench)
			continue
		}
		if err := e.store.Delete(ctx, ench.ID); err != nil {
			return err
		}
	}
	hc.Enchantments = kept
	return nil
}

// Keyword builds a keyword-only enchantment. turns <= 0 makes it permanent.
func Keyword(keyword model.EnchantKeyword, typ model.EnchantType, turns int) *model.Enchantment {
	ench := &model.Enchantment{Keyword: keyword, Type: typ}
	if turns > 0 {
		ench.Turns = &turns
	}
	return ench
}

// Protect builds a damage-cap enchantment. Each hit against the enchanted
// card deals at most cap damage.
func Protect(cap, turns int) *model.Enchantment {
	ench := Keyword(model.KeywordProtect, model.EnchantBuff, turns)
	ench.Protect = &cap
	return ench
}
