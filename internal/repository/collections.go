package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// The deck, hand, graveyard and active-mystery tables share one row shape.
// relationRepo carries the queries common to all four; the typed repos wrap
// it and add their own semantics.
type relationRepo struct {
	db    DBTX
	table string
}

func (r *relationRepo) selectSQL() string {
	return fmt.Sprintf(`
		SELECT t.id, t.hp, t.attack, t."order", t.battle_card_id,
		       t.clear_description, t.remove_mummy, t.remove_last_breath,
		       t.battle_player_id, t.card_id,
		       c.id, c.custom_id, c.name, c.description, c.rarity, c.type,
		       c.targeting, c.targeting_scope, c.element, c.hp, c.attack, c.enabled
		FROM %s t JOIN cards c ON c.id = t.card_id`, r.table)
}

func scanRelation(row pgx.Row) (*model.CardRelation, error) {
	var rel model.CardRelation
	var card model.Card
	err := row.Scan(
		&rel.ID, &rel.HP, &rel.Attack, &rel.Order, &rel.BattleCardID,
		&rel.ClearDescription, &rel.RemoveMummy, &rel.RemoveLastBreath,
		&rel.BattlePlayerID, &rel.CardID,
		&card.ID, &card.CustomID, &card.Name, &card.Description, &card.Rarity,
		&card.Type, &card.Targeting, &card.TargetingScope, &card.Element,
		&card.HP, &card.Attack, &card.Enabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan card relation: %w", err)
	}
	rel.Card = &card
	return &rel, nil
}

func (r *relationRepo) listByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.CardRelation, error) {
	rows, err := r.db.Query(ctx,
		r.selectSQL()+` WHERE t.battle_player_id = $1 ORDER BY t."order"`,
		battlePlayerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list %s for player %d: %w", r.table, battlePlayerID, err)
	}
	defer rows.Close()

	var rels []*model.CardRelation
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

func (r *relationRepo) insert(ctx context.Context, rel *model.CardRelation) error {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO %s (hp, attack, "order", battle_card_id, clear_description, remove_mummy, remove_last_breath, battle_player_id, card_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`, r.table),
		rel.HP, rel.Attack, rel.Order, rel.BattleCardID,
		rel.ClearDescription, rel.RemoveMummy, rel.RemoveLastBreath,
		rel.BattlePlayerID, rel.CardID,
	)
	if err := row.Scan(&rel.ID); err != nil {
		return fmt.Errorf("insert into %s: %w", r.table, err)
	}
	return nil
}

// remove deletes a row and closes the order gap it leaves, keeping positions
// dense and gapless for the owning player.
func (r *relationRepo) remove(ctx context.Context, id int64) error {
	row := r.db.QueryRow(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE id = $1 RETURNING battle_player_id, "order"`, r.table), id)
	var playerID int64
	var order int
	if err := row.Scan(&playerID, &order); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("delete from %s: %w", r.table, err)
	}
	_, err := r.db.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET "order" = "order" - 1 WHERE battle_player_id = $1 AND "order" > $2`, r.table),
		playerID, order,
	)
	if err != nil {
		return fmt.Errorf("compact %s order: %w", r.table, err)
	}
	return nil
}

func (r *relationRepo) count(ctx context.Context, battlePlayerID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, fmt.Sprintf(
		`SELECT count(*) FROM %s WHERE battle_player_id = $1`, r.table), battlePlayerID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.table, err)
	}
	return n, nil
}

// DeckRepo persists the ordered draw pile.
type DeckRepo struct {
	db DBTX
}

// BulkCreate inserts a full dealt deck in order using one batch round trip.
func (r *DeckRepo) BulkCreate(ctx context.Context, cards []*model.DeckCard) error {
	if len(cards) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, dc := range cards {
		batch.Queue(`
			INSERT INTO card_deck (hp, attack, "order", battle_card_id, clear_description, remove_mummy, remove_last_breath, battle_player_id, card_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			dc.HP, dc.Attack, dc.Order, dc.BattleCardID,
			dc.ClearDescription, dc.RemoveMummy, dc.RemoveLastBreath,
			dc.BattlePlayerID, dc.CardID,
		)
	}
	br, ok := r.db.(interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	})
	if !ok {
		return errors.New("repository: connection does not support batching")
	}
	results := br.SendBatch(ctx, batch)
	defer results.Close()
	for _, dc := range cards {
		if err := results.QueryRow().Scan(&dc.ID); err != nil {
			return fmt.Errorf("bulk create deck: %w", err)
		}
	}
	return nil
}

// ListByPlayer returns the draw pile top first.
func (r *DeckRepo) ListByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.DeckCard, error) {
	rels, err := (&relationRepo{db: r.db, table: "card_deck"}).listByPlayer(ctx, battlePlayerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.DeckCard, len(rels))
	for i, rel := range rels {
		out[i] = &model.DeckCard{CardRelation: *rel}
	}
	return out, nil
}

// PopTop removes and returns the top card of the draw pile. ErrNotFound means
// the deck is empty.
func (r *DeckRepo) PopTop(ctx context.Context, battlePlayerID int64) (*model.DeckCard, error) {
	rr := &relationRepo{db: r.db, table: "card_deck"}
	row := r.db.QueryRow(ctx,
		rr.selectSQL()+` WHERE t.battle_player_id = $1 ORDER BY t."order" LIMIT 1`,
		battlePlayerID,
	)
	rel, err := scanRelation(row)
	if err != nil {
		return nil, err
	}
	if err := rr.remove(ctx, rel.ID); err != nil {
		return nil, err
	}
	return &model.DeckCard{CardRelation: *rel}, nil
}

// PeekTop returns the top card without removing it.
func (r *DeckRepo) PeekTop(ctx context.Context, battlePlayerID int64) (*model.DeckCard, error) {
	rr := &relationRepo{db: r.db, table: "card_deck"}
	row := r.db.QueryRow(ctx,
		rr.selectSQL()+` WHERE t.battle_player_id = $1 ORDER BY t."order" LIMIT 1`,
		battlePlayerID,
	)
	rel, err := scanRelation(row)
	if err != nil {
		return nil, err
	}
	return &model.DeckCard{CardRelation: *rel}, nil
}

// Count returns the number of cards left in the draw pile.
func (r *DeckRepo) Count(ctx context.Context, battlePlayerID int64) (int, error) {
	return (&relationRepo{db: r.db, table: "card_deck"}).count(ctx, battlePlayerID)
}

// HandRepo persists the ordered hand.
type HandRepo struct {
	db DBTX
}

// Add appends a card to the end of the hand.
func (r *HandRepo) Add(ctx context.Context, hc *model.HandCard) error {
	rr := &relationRepo{db: r.db, table: "card_hand"}
	n, err := rr.count(ctx, hc.BattlePlayerID)
	if err != nil {
		return err
	}
	hc.Order = n
	row := r.db.QueryRow(ctx, `
		INSERT INTO card_hand (hp, attack, "order", battle_card_id, clear_description, remove_mummy, remove_last_breath, battle_player_id, card_id, card_death_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		hc.HP, hc.Attack, hc.Order, hc.BattleCardID,
		hc.ClearDescription, hc.RemoveMummy, hc.RemoveLastBreath,
		hc.BattlePlayerID, hc.CardID, hc.CardDeathCount,
	)
	if err := row.Scan(&hc.ID); err != nil {
		return fmt.Errorf("insert hand card: %w", err)
	}
	return nil
}

// ListByPlayer returns the hand in display order, with enchantments attached.
func (r *HandRepo) ListByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.HandCard, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.hp, t.attack, t."order", t.battle_card_id,
		       t.clear_description, t.remove_mummy, t.remove_last_breath,
		       t.battle_player_id, t.card_id, t.card_death_count,
		       c.id, c.custom_id, c.name, c.description, c.rarity, c.type,
		       c.targeting, c.targeting_scope, c.element, c.hp, c.attack, c.enabled
		FROM card_hand t JOIN cards c ON c.id = t.card_id
		WHERE t.battle_player_id = $1 ORDER BY t."order"`,
		battlePlayerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list hand for player %d: %w", battlePlayerID, err)
	}
	defer rows.Close()

	var hand []*model.HandCard
	for rows.Next() {
		var hc model.HandCard
		var card model.Card
		err := rows.Scan(
			&hc.ID, &hc.HP, &hc.Attack, &hc.Order, &hc.BattleCardID,
			&hc.ClearDescription, &hc.RemoveMummy, &hc.RemoveLastBreath,
			&hc.BattlePlayerID, &hc.CardID, &hc.CardDeathCount,
			&card.ID, &card.CustomID, &card.Name, &card.Description, &card.Rarity,
			&card.Type, &card.Targeting, &card.TargetingScope, &card.Element,
			&card.HP, &card.Attack, &card.Enabled,
		)
		if err != nil {
			return nil, fmt.Errorf("scan hand card: %w", err)
		}
		hc.Card = &card
		hand = append(hand, &hc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	enchRepo := &EnchantmentRepo{db: r.db}
	for _, hc := range hand {
		enchs, err := enchRepo.ListByHandCard(ctx, hc.ID)
		if err != nil {
			return nil, err
		}
		hc.Enchantments = enchs
	}
	return hand, nil
}

// Remove deletes a hand card and compacts the remaining order values.
func (r *HandRepo) Remove(ctx context.Context, id int64) error {
	return (&relationRepo{db: r.db, table: "card_hand"}).remove(ctx, id)
}

// Count returns the current hand size.
func (r *HandRepo) Count(ctx context.Context, battlePlayerID int64) (int, error) {
	return (&relationRepo{db: r.db, table: "card_hand"}).count(ctx, battlePlayerID)
}

// UpdateStats writes back a hand card's mutable base stats.
func (r *HandRepo) UpdateStats(ctx context.Context, id int64, hp, attack, cardDeathCount int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE card_hand SET hp = $2, attack = $3, card_death_count = $4 WHERE id = $1`,
		id, hp, attack, cardDeathCount,
	)
	if err != nil {
		return fmt.Errorf("update hand card %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GraveyardRepo persists destroyed and consumed cards.
type GraveyardRepo struct {
	db DBTX
}

// Add appends a card to the graveyard.
func (r *GraveyardRepo) Add(ctx context.Context, gc *model.GraveyardCard) error {
	rr := &relationRepo{db: r.db, table: "card_graveyard"}
	n, err := rr.count(ctx, gc.BattlePlayerID)
	if err != nil {
		return err
	}
	gc.Order = n
	return rr.insert(ctx, &gc.CardRelation)
}

// ListByPlayer returns the graveyard in burial order.
func (r *GraveyardRepo) ListByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.GraveyardCard, error) {
	rels, err := (&relationRepo{db: r.db, table: "card_graveyard"}).listByPlayer(ctx, battlePlayerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.GraveyardCard, len(rels))
	for i, rel := range rels {
		out[i] = &model.GraveyardCard{CardRelation: *rel}
	}
	return out, nil
}

// MysteryRepo persists face-down active mysteries.
type MysteryRepo struct {
	db DBTX
}

// Add places a mystery face down.
func (r *MysteryRepo) Add(ctx context.Context, mc *model.MysteryCard) error {
	rr := &relationRepo{db: r.db, table: "card_active_mystery"}
	n, err := rr.count(ctx, mc.BattlePlayerID)
	if err != nil {
		return err
	}
	mc.Order = n
	return rr.insert(ctx, &mc.CardRelation)
}

// ListByPlayer returns the player's face-down mysteries in placement order.
func (r *MysteryRepo) ListByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.MysteryCard, error) {
	rels, err := (&relationRepo{db: r.db, table: "card_active_mystery"}).listByPlayer(ctx, battlePlayerID)
	if err != nil {
		return nil, err
	}
	out := make([]*model.MysteryCard, len(rels))
	for i, rel := range rels {
		out[i] = &model.MysteryCard{CardRelation: *rel}
	}
	return out, nil
}

// Remove deletes a triggered or discarded mystery.
func (r *MysteryRepo) Remove(ctx context.Context, id int64) error {
	return (&relationRepo{db: r.db, table: "card_active_mystery"}).remove(ctx, id)
}
