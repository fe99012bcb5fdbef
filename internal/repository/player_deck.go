package repository

import (
	"context"
	"fmt"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// PlayerDeckRepo resolves the deck a player has assembled for constructed
// modes. It is the battle manager's DeckProvider; the engine validates size
// and playability when the battle deals.
type PlayerDeckRepo struct {
	db DBTX
}

// DeckFor returns the cards of the player's active deck in slot order.
// Duplicates are expanded via the count column, so a deck row per distinct
// card suffices.
func (r *PlayerDeckRepo) DeckFor(ctx context.Context, playerID int64, _ *model.GameMode) ([]*model.Card, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.custom_id, c.name, c.description, c.rarity, c.type,
		       c.targeting, c.targeting_scope, c.element, c.hp, c.attack, c.enabled,
		       pdc.count
		FROM player_deck_cards pdc
		JOIN player_decks pd ON pd.id = pdc.player_deck_id
		JOIN cards c ON c.id = pdc.card_id
		WHERE pd.player_id = $1 AND pd.is_active
		ORDER BY pdc.position`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("load deck for player %d: %w", playerID, err)
	}
	defer rows.Close()

	var deck []*model.Card
	for rows.Next() {
		var c model.Card
		var count int
		err := rows.Scan(
			&c.ID, &c.CustomID, &c.Name, &c.Description, &c.Rarity,
			&c.Type, &c.Targeting, &c.TargetingScope, &c.Element,
			&c.HP, &c.Attack, &c.Enabled,
			&count,
		)
		if err != nil {
			return nil, fmt.Errorf("scan deck card: %w", err)
		}
		for i := 0; i < count; i++ {
			deck = append(deck, &c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load deck for player %d: %w", playerID, err)
	}
	return deck, nil
}
