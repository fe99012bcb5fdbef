package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mep3ab4ik/GoB/internal/model"
)

const gameModeColumns = `id, custom_id, title, description, "default",
	battlefield_timer_duration, start_battle_player_hp, max_cards_in_hand,
	start_cards_on_hand_count, max_tiles_per_player, max_cards_in_deck,
	is_graveyard_enabled, show_next_card_from_deck, is_random_generated_deck,
	deal_damage_to_avatar_on_empty_deck, battle_duration`

// GameModeRepo reads game mode configuration.
type GameModeRepo struct {
	db DBTX
}

func (r *GameModeRepo) scan(ctx context.Context, row pgx.Row) (*model.GameMode, error) {
	var m model.GameMode
	err := row.Scan(
		&m.ID, &m.CustomID, &m.Title, &m.Description, &m.Default,
		&m.BattlefieldTimerDuration, &m.StartBattlePlayerHP, &m.MaxCardsInHand,
		&m.StartCardsOnHandCount, &m.MaxTilesPerPlayer, &m.MaxCardsInDeck,
		&m.IsGraveyardEnabled, &m.ShowNextCardFromDeck, &m.IsRandomGeneratedDeck,
		&m.DealDamageToAvatarOnEmptyDeck, &m.BattleDuration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan game mode: %w", err)
	}
	if err := r.loadBlockedCards(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *GameModeRepo) loadBlockedCards(ctx context.Context, m *model.GameMode) error {
	rows, err := r.db.Query(ctx,
		`SELECT card_id FROM game_mode_blocked_cards WHERE game_mode_id = $1`, m.ID)
	if err != nil {
		return fmt.Errorf("load blocked cards for mode %d: %w", m.ID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		m.BlockedCardIDs = append(m.BlockedCardIDs, id)
	}
	return rows.Err()
}

// GetByID fetches one game mode with its blocked card set.
func (r *GameModeRepo) GetByID(ctx context.Context, id int64) (*model.GameMode, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameModeColumns+` FROM game_modes WHERE id = $1`, id)
	return r.scan(ctx, row)
}

// GetDefault fetches the mode flagged as the default.
func (r *GameModeRepo) GetDefault(ctx context.Context) (*model.GameMode, error) {
	row := r.db.QueryRow(ctx, `SELECT `+gameModeColumns+` FROM game_modes WHERE "default" LIMIT 1`)
	return r.scan(ctx, row)
}
