package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// BattlePlayerRepo persists the per-seat player rows of a battle.
type BattlePlayerRepo struct {
	db DBTX
}

const battlePlayerColumns = `id, idx, battle_id, player_id, hp, hp_limit`

func scanBattlePlayer(row pgx.Row) (*model.BattlePlayer, error) {
	var p model.BattlePlayer
	err := row.Scan(&p.ID, &p.Idx, &p.BattleID, &p.PlayerID, &p.HP, &p.HPLimit)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan battle player: %w", err)
	}
	return &p, nil
}

// Create inserts a battle player row and fills in the generated id.
func (r *BattlePlayerRepo) Create(ctx context.Context, p *model.BattlePlayer) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO battle_players (idx, battle_id, player_id, hp, hp_limit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		p.Idx, p.BattleID, p.PlayerID, p.HP, p.HPLimit,
	)
	if err := row.Scan(&p.ID); err != nil {
		return fmt.Errorf("create battle player: %w", err)
	}
	return nil
}

// GetByBattleID returns both seats ordered by idx.
func (r *BattlePlayerRepo) GetByBattleID(ctx context.Context, battleID int64) ([]*model.BattlePlayer, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+battlePlayerColumns+` FROM battle_players WHERE battle_id = $1 ORDER BY idx`,
		battleID,
	)
	if err != nil {
		return nil, fmt.Errorf("get battle players for battle %d: %w", battleID, err)
	}
	defer rows.Close()

	var players []*model.BattlePlayer
	for rows.Next() {
		p, err := scanBattlePlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetByID fetches one battle player row.
func (r *BattlePlayerRepo) GetByID(ctx context.Context, id int64) (*model.BattlePlayer, error) {
	row := r.db.QueryRow(ctx, `SELECT `+battlePlayerColumns+` FROM battle_players WHERE id = $1`, id)
	return scanBattlePlayer(row)
}

// UpdateHP writes back the player's current hp.
func (r *BattlePlayerRepo) UpdateHP(ctx context.Context, id int64, hp int) error {
	tag, err := r.db.Exec(ctx, `UPDATE battle_players SET hp = $2 WHERE id = $1`, id, hp)
	if err != nil {
		return fmt.Errorf("update battle player %d hp: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
