package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("repository: not found")

const cardColumns = `id, custom_id, name, description, rarity, type, targeting, targeting_scope, element, hp, attack, enabled`

func scanCard(row pgx.Row) (*model.Card, error) {
	var c model.Card
	err := row.Scan(
		&c.ID, &c.CustomID, &c.Name, &c.Description, &c.Rarity,
		&c.Type, &c.Targeting, &c.TargetingScope, &c.Element,
		&c.HP, &c.Attack, &c.Enabled,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan card: %w", err)
	}
	return &c, nil
}

// CardRepo reads immutable card definitions.
type CardRepo struct {
	db DBTX
}

// GetByID fetches one card by primary key.
func (r *CardRepo) GetByID(ctx context.Context, id int64) (*model.Card, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = $1`, id)
	return scanCard(row)
}

// GetByCustomID fetches one card by its stable content identifier.
func (r *CardRepo) GetByCustomID(ctx context.Context, customID string) (*model.Card, error) {
	row := r.db.QueryRow(ctx, `SELECT `+cardColumns+` FROM cards WHERE custom_id = $1`, customID)
	return scanCard(row)
}

// ListEnabled returns every enabled card not present in the blocked set,
// ordered by id. Random deck generation draws from this pool.
func (r *CardRepo) ListEnabled(ctx context.Context, blockedIDs []int64) ([]*model.Card, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+cardColumns+` FROM cards WHERE enabled AND NOT (id = ANY($1)) ORDER BY id`,
		blockedIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("list enabled cards: %w", err)
	}
	defer rows.Close()

	var cards []*model.Card
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// GetByIDs fetches the given cards keyed by id. Missing ids are simply
// absent from the result.
func (r *CardRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*model.Card, error) {
	rows, err := r.db.Query(ctx, `SELECT `+cardColumns+` FROM cards WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get cards by ids: %w", err)
	}
	defer rows.Close()

	cards := make(map[int64]*model.Card, len(ids))
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards[c.ID] = c
	}
	return cards, rows.Err()
}
