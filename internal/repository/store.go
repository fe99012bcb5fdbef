package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the subset of pgx used by the repositories. Both *pgxpool.Pool and
// pgx.Tx satisfy it, so every repository method works inside or outside a
// transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store bundles every repository over a shared connection pool.
type Store struct {
	pool *pgxpool.Pool

	Cards        *CardRepo
	GameModes    *GameModeRepo
	Battles      *BattleRepo
	Players      *BattlePlayerRepo
	Decks        *DeckRepo
	PlayerDecks  *PlayerDeckRepo
	Hands        *HandRepo
	Graveyards   *GraveyardRepo
	Mysteries    *MysteryRepo
	Tiles        *TileRepo
	Enchantments *EnchantmentRepo
	History      *CardHistoryRepo
}

// NewStore wires the repositories over the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:         pool,
		Cards:        &CardRepo{db: pool},
		GameModes:    &GameModeRepo{db: pool},
		Battles:      &BattleRepo{db: pool},
		Players:      &BattlePlayerRepo{db: pool},
		Decks:        &DeckRepo{db: pool},
		PlayerDecks:  &PlayerDeckRepo{db: pool},
		Hands:        &HandRepo{db: pool},
		Graveyards:   &GraveyardRepo{db: pool},
		Mysteries:    &MysteryRepo{db: pool},
		Tiles:        &TileRepo{db: pool},
		Enchantments: &EnchantmentRepo{db: pool},
		History:      &CardHistoryRepo{db: pool},
	}
}

// WithTx runs fn against a Store whose repositories all share one
// transaction, committing on success and rolling back on error.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	t, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txStore := &Store{
		pool:         s.pool,
		Cards:        &CardRepo{db: t},
		GameModes:    &GameModeRepo{db: t},
		Battles:      &BattleRepo{db: t},
		Players:      &BattlePlayerRepo{db: t},
		Decks:        &DeckRepo{db: t},
		PlayerDecks:  &PlayerDeckRepo{db: t},
		Hands:        &HandRepo{db: t},
		Graveyards:   &GraveyardRepo{db: t},
		Mysteries:    &MysteryRepo{db: t},
		Tiles:        &TileRepo{db: t},
		Enchantments: &EnchantmentRepo{db: t},
		History:      &CardHistoryRepo{db: t},
	}
	if err := fn(txStore); err != nil {
		_ = t.Rollback(ctx)
		return err
	}
	if err := t.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *Store) Close() {
	s.pool.Close()
}
