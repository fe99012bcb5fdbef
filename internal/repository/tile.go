package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// TileRepo persists board tiles. A tile row lives for the whole battle; its
// occupant fields are nulled when the tile is flushed back to FREE.
type TileRepo struct {
	db DBTX
}

const tileSelect = `
	SELECT t.id, t.hp, t.attack, t."order", t.battle_card_id,
	       t.clear_description, t.remove_mummy, t.remove_last_breath,
	       t.battle_player_id, t.card_id, t.element, t.state,
	       t.card_death_count, t.original_card_id,
	       c.id, c.custom_id, c.name, c.description, c.rarity, c.type,
	       c.targeting, c.targeting_scope, c.element, c.hp, c.attack, c.enabled,
	       oc.id, oc.custom_id, oc.name, oc.description, oc.rarity, oc.type,
	       oc.targeting, oc.targeting_scope, oc.element, oc.hp, oc.attack, oc.enabled
	FROM tiles t
	LEFT JOIN cards c ON c.id = t.card_id
	LEFT JOIN cards oc ON oc.id = t.original_card_id`

func scanTile(row pgx.Row) (*model.Tile, error) {
	var t model.Tile
	var cardID, originalCardID *int64
	var card, original nullableCard
	err := row.Scan(
		&t.ID, &t.HP, &t.Attack, &t.Order, &t.BattleCardID,
		&t.ClearDescription, &t.RemoveMummy, &t.RemoveLastBreath,
		&t.BattlePlayerID, &cardID, &t.Element, &t.State,
		&t.CardDeathCount, &originalCardID,
		&card.id, &card.customID, &card.name, &card.description, &card.rarity, &card.typ,
		&card.targeting, &card.targetingScope, &card.element, &card.hp, &card.attack, &card.enabled,
		&original.id, &original.customID, &original.name, &original.description, &original.rarity, &original.typ,
		&original.targeting, &original.targetingScope, &original.element, &original.hp, &original.attack, &original.enabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tile: %w", err)
	}
	if cardID != nil {
		t.CardID = *cardID
		t.Card = card.toCard()
	}
	if originalCardID != nil {
		t.OriginalCardID = *originalCardID
		t.OriginalCard = original.toCard()
	}
	return &t, nil
}

// nullableCard holds the columns of a LEFT JOINed card row.
type nullableCard struct {
	id             *int64
	customID       *string
	name           *string
	description    *string
	rarity         *string
	typ            *string
	targeting      *string
	targetingScope *string
	element        *string
	hp             *int
	attack         *int
	enabled        *bool
}

func (n *nullableCard) toCard() *model.Card {
	if n.id == nil {
		return nil
	}
	return &model.Card{
		ID:             *n.id,
		CustomID:       *n.customID,
		Name:           *n.name,
		Description:    *n.description,
		Rarity:         *n.rarity,
		Type:           model.CardType(*n.typ),
		Targeting:      model.Targeting(*n.targeting),
		TargetingScope: model.TargetingScope(*n.targetingScope),
		Element:        model.Element(*n.element),
		HP:             *n.hp,
		Attack:         *n.attack,
		Enabled:        *n.enabled,
	}
}

// Create inserts a new tile row.
func (r *TileRepo) Create(ctx context.Context, t *model.Tile) error {
	var cardID, originalCardID *int64
	if t.CardID != 0 {
		cardID = &t.CardID
	}
	if t.OriginalCardID != 0 {
		originalCardID = &t.OriginalCardID
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO tiles (hp, attack, "order", battle_card_id, clear_description, remove_mummy, remove_last_breath, battle_player_id, card_id, element, state, card_death_count, original_card_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id`,
		t.HP, t.Attack, t.Order, t.BattleCardID,
		t.ClearDescription, t.RemoveMummy, t.RemoveLastBreath,
		t.BattlePlayerID, cardID, t.Element, t.State, t.CardDeathCount, originalCardID,
	)
	if err := row.Scan(&t.ID); err != nil {
		return fmt.Errorf("create tile: %w", err)
	}
	return nil
}

// GetByID fetches one tile with its occupant and enchantments.
func (r *TileRepo) GetByID(ctx context.Context, id int64) (*model.Tile, error) {
	row := r.db.QueryRow(ctx, tileSelect+` WHERE t.id = $1`, id)
	t, err := scanTile(row)
	if err != nil {
		return nil, err
	}
	enchs, err := (&EnchantmentRepo{db: r.db}).ListByTile(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Enchantments = enchs
	return t, nil
}

// ListByPlayer returns the player's tile row in board order, enchantments
// attached.
func (r *TileRepo) ListByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.Tile, error) {
	rows, err := r.db.Query(ctx,
		tileSelect+` WHERE t.battle_player_id = $1 ORDER BY t."order"`,
		battlePlayerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tiles for player %d: %w", battlePlayerID, err)
	}
	defer rows.Close()

	var tiles []*model.Tile
	for rows.Next() {
		t, err := scanTile(rows)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	enchRepo := &EnchantmentRepo{db: r.db}
	for _, t := range tiles {
		enchs, err := enchRepo.ListByTile(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Enchantments = enchs
	}
	return tiles, nil
}

// Update writes back every mutable tile field.
func (r *TileRepo) Update(ctx context.Context, t *model.Tile) error {
	var cardID, originalCardID *int64
	if t.CardID != 0 {
		cardID = &t.CardID
	}
	if t.OriginalCardID != 0 {
		originalCardID = &t.OriginalCardID
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE tiles SET
			hp = $2, attack = $3, battle_card_id = $4,
			clear_description = $5, remove_mummy = $6, remove_last_breath = $7,
			card_id = $8, element = $9, state = $10,
			card_death_count = $11, original_card_id = $12
		WHERE id = $1`,
		t.ID, t.HP, t.Attack, t.BattleCardID,
		t.ClearDescription, t.RemoveMummy, t.RemoveLastBreath,
		cardID, t.Element, t.State, t.CardDeathCount, originalCardID,
	)
	if err != nil {
		return fmt.Errorf("update tile %d: %w", t.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
