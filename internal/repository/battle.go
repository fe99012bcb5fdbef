package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mep3ab4ik/GoB/internal/model"
)

const battleColumns = `id, room_id, player1_ticket, player2_ticket, created_at,
	battle_start, battle_end, winner_player_id, end_type, state,
	turn_idx, turn_number, first_turn_idx, game_mode_id`

// BattleRepo persists battle lifecycle records.
type BattleRepo struct {
	db DBTX
}

func scanBattle(row pgx.Row) (*model.Battle, error) {
	var b model.Battle
	var endType *string
	err := row.Scan(
		&b.ID, &b.RoomID, &b.Player1Ticket, &b.Player2Ticket, &b.CreatedAt,
		&b.BattleStart, &b.BattleEnd, &b.WinnerPlayerID, &endType, &b.State,
		&b.TurnIdx, &b.TurnNumber, &b.FirstTurnIdx, &b.GameModeID,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan battle: %w", err)
	}
	if endType != nil {
		b.EndType = model.BattleEndType(*endType)
	}
	return &b, nil
}

// Create inserts a new battle in CREATED state and fills in the generated id
// and creation time.
func (r *BattleRepo) Create(ctx context.Context, b *model.Battle) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO battles (room_id, player1_ticket, player2_ticket, state, turn_idx, turn_number, first_turn_idx, game_mode_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		b.RoomID, b.Player1Ticket, b.Player2Ticket, b.State,
		b.TurnIdx, b.TurnNumber, b.FirstTurnIdx, b.GameModeID,
	)
	if err := row.Scan(&b.ID, &b.CreatedAt); err != nil {
		return fmt.Errorf("create battle: %w", err)
	}
	return nil
}

// GetByRoomID fetches a battle by its public room identifier.
func (r *BattleRepo) GetByRoomID(ctx context.Context, roomID string) (*model.Battle, error) {
	row := r.db.QueryRow(ctx, `SELECT `+battleColumns+` FROM battles WHERE room_id = $1`, roomID)
	return scanBattle(row)
}

// GetByID fetches a battle by primary key.
func (r *BattleRepo) GetByID(ctx context.Context, id int64) (*model.Battle, error) {
	row := r.db.QueryRow(ctx, `SELECT `+battleColumns+` FROM battles WHERE id = $1`, id)
	return scanBattle(row)
}

// Update writes back every mutable battle field.
func (r *BattleRepo) Update(ctx context.Context, b *model.Battle) error {
	var endType *string
	if b.EndType != "" {
		s := string(b.EndType)
		endType = &s
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE battles SET
			battle_start = $2, battle_end = $3, winner_player_id = $4,
			end_type = $5, state = $6, turn_idx = $7, turn_number = $8,
			first_turn_idx = $9
		WHERE id = $1`,
		b.ID, b.BattleStart, b.BattleEnd, b.WinnerPlayerID,
		endType, b.State, b.TurnIdx, b.TurnNumber, b.FirstTurnIdx,
	)
	if err != nil {
		return fmt.Errorf("update battle %d: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateState transitions only the lifecycle state column.
func (r *BattleRepo) UpdateState(ctx context.Context, id int64, state model.BattleState) error {
	tag, err := r.db.Exec(ctx, `UPDATE battles SET state = $2 WHERE id = $1`, id, state)
	if err != nil {
		return fmt.Errorf("update battle %d state: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
