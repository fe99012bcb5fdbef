package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// EnchantmentRepo persists enchantment rows attached to tiles or hand cards.
type EnchantmentRepo struct {
	db DBTX
}

const enchantmentColumns = `id, turns, tile_id, card_hand_id, battle_player_id,
	keyword, type, affects_hp, affects_attack, hp_change_value, attack_change_value, protect`

func scanEnchantment(row pgx.Row) (*model.Enchantment, error) {
	var e model.Enchantment
	err := row.Scan(
		&e.ID, &e.Turns, &e.TileID, &e.CardHandID, &e.BattlePlayerID,
		&e.Keyword, &e.Type, &e.AffectsHP, &e.AffectsAttack,
		&e.HPChangeValue, &e.AttackChangeValue, &e.Protect,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan enchantment: %w", err)
	}
	return &e, nil
}

// Create inserts an enchantment row and fills in the generated id.
func (r *EnchantmentRepo) Create(ctx context.Context, e *model.Enchantment) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO enchantments (turns, tile_id, card_hand_id, battle_player_id, keyword, type, affects_hp, affects_attack, hp_change_value, attack_change_value, protect)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		e.Turns, e.TileID, e.CardHandID, e.BattlePlayerID,
		e.Keyword, e.Type, e.AffectsHP, e.AffectsAttack,
		e.HPChangeValue, e.AttackChangeValue, e.Protect,
	)
	if err := row.Scan(&e.ID); err != nil {
		return fmt.Errorf("create enchantment: %w", err)
	}
	return nil
}

// Update writes back the mutable enchantment fields.
func (r *EnchantmentRepo) Update(ctx context.Context, e *model.Enchantment) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE enchantments SET
			turns = $2, affects_hp = $3, affects_attack = $4,
			hp_change_value = $5, attack_change_value = $6, protect = $7
		WHERE id = $1`,
		e.ID, e.Turns, e.AffectsHP, e.AffectsAttack,
		e.HPChangeValue, e.AttackChangeValue, e.Protect,
	)
	if err != nil {
		return fmt.Errorf("update enchantment %d: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an enchantment row.
func (r *EnchantmentRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM enchantments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete enchantment %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByTile removes every enchantment attached to a tile, typically when
// the tile is flushed.
func (r *EnchantmentRepo) DeleteByTile(ctx context.Context, tileID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM enchantments WHERE tile_id = $1`, tileID)
	if err != nil {
		return fmt.Errorf("delete enchantments for tile %d: %w", tileID, err)
	}
	return nil
}

// ListByTile returns a tile's enchantments, oldest first.
func (r *EnchantmentRepo) ListByTile(ctx context.Context, tileID int64) ([]*model.Enchantment, error) {
	return r.list(ctx, `SELECT `+enchantmentColumns+` FROM enchantments WHERE tile_id = $1 ORDER BY id`, tileID)
}

// ListByHandCard returns a hand card's enchantments, oldest first.
func (r *EnchantmentRepo) ListByHandCard(ctx context.Context, cardHandID int64) ([]*model.Enchantment, error) {
	return r.list(ctx, `SELECT `+enchantmentColumns+` FROM enchantments WHERE card_hand_id = $1 ORDER BY id`, cardHandID)
}

// ListByPlayer returns every enchantment owned by one seat, oldest first.
// Turn-countdown processing walks this list.
func (r *EnchantmentRepo) ListByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.Enchantment, error) {
	return r.list(ctx, `SELECT `+enchantmentColumns+` FROM enchantments WHERE battle_player_id = $1 ORDER BY id`, battlePlayerID)
}

func (r *EnchantmentRepo) list(ctx context.Context, sql string, arg any) ([]*model.Enchantment, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("list enchantments: %w", err)
	}
	defer rows.Close()

	var enchs []*model.Enchantment
	for rows.Next() {
		e, err := scanEnchantment(rows)
		if err != nil {
			return nil, err
		}
		enchs = append(enchs, e)
	}
	return enchs, rows.Err()
}
