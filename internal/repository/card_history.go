package repository

import (
	"context"
	"fmt"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// CardHistoryRepo appends audit records of notable card events.
type CardHistoryRepo struct {
	db DBTX
}

// Create appends one history record.
func (r *CardHistoryRepo) Create(ctx context.Context, h *model.CardHistory) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO card_history (battle_id, battle_player_id, card_id, turn_number, record_type)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		h.BattleID, h.BattlePlayerID, h.CardID, h.TurnNumber, h.RecordType,
	)
	if err := row.Scan(&h.ID); err != nil {
		return fmt.Errorf("create card history: %w", err)
	}
	return nil
}

// ListByBattle returns a battle's history in insertion order.
func (r *CardHistoryRepo) ListByBattle(ctx context.Context, battleID int64) ([]*model.CardHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, battle_id, battle_player_id, card_id, turn_number, record_type
		FROM card_history WHERE battle_id = $1 ORDER BY id`,
		battleID,
	)
	if err != nil {
		return nil, fmt.Errorf("list card history for battle %d: %w", battleID, err)
	}
	defer rows.Close()

	var records []*model.CardHistory
	for rows.Next() {
		var h model.CardHistory
		if err := rows.Scan(&h.ID, &h.BattleID, &h.BattlePlayerID, &h.CardID, &h.TurnNumber, &h.RecordType); err != nil {
			return nil, fmt.Errorf("scan card history: %w", err)
		}
		records = append(records, &h)
	}
	return records, rows.Err()
}
