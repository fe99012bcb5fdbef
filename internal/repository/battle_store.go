package repository

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// The engine talks to persistence through a narrow write-through contract.
// These delegating methods let *Store satisfy it without the engine knowing
// about individual repositories.

func (s *Store) CreateBattle(ctx context.Context, b *model.Battle) error { return s.Battles.Create(ctx, b) }
func (s *Store) SaveBattle(ctx context.Context, b *model.Battle) error   { return s.Battles.Update(ctx, b) }

func (s *Store) BattleByRoom(ctx context.Context, roomID string) (*model.Battle, error) {
	return s.Battles.GetByRoomID(ctx, roomID)
}

func (s *Store) CreatePlayer(ctx context.Context, p *model.BattlePlayer) error {
	return s.Players.Create(ctx, p)
}

func (s *Store) PlayersByBattle(ctx context.Context, battleID int64) ([]*model.BattlePlayer, error) {
	return s.Players.GetByBattleID(ctx, battleID)
}

func (s *Store) SavePlayerHP(ctx context.Context, battlePlayerID int64, hp int) error {
	return s.Players.UpdateHP(ctx, battlePlayerID, hp)
}

func (s *Store) ModeByID(ctx context.Context, id int64) (*model.GameMode, error) {
	return s.GameModes.GetByID(ctx, id)
}

func (s *Store) EnabledCards(ctx context.Context, blockedIDs []int64) ([]*model.Card, error) {
	return s.Cards.ListEnabled(ctx, blockedIDs)
}

func (s *Store) CreateDeck(ctx context.Context, cards []*model.DeckCard) error {
	return s.Decks.BulkCreate(ctx, cards)
}

func (s *Store) DeckByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.DeckCard, error) {
	return s.Decks.ListByPlayer(ctx, battlePlayerID)
}

func (s *Store) DeleteDeckCard(ctx context.Context, id int64) error {
	return (&relationRepo{db: s.Decks.db, table: "card_deck"}).remove(ctx, id)
}

func (s *Store) AddHandCard(ctx context.Context, hc *model.HandCard) error {
	return s.Hands.Add(ctx, hc)
}

func (s *Store) HandByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.HandCard, error) {
	return s.Hands.ListByPlayer(ctx, battlePlayerID)
}

func (s *Store) RemoveHandCard(ctx context.Context, id int64) error {
	return s.Hands.Remove(ctx, id)
}

func (s *Store) AddGraveyardCard(ctx context.Context, gc *model.GraveyardCard) error {
	return s.Graveyards.Add(ctx, gc)
}

func (s *Store) GraveyardByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.GraveyardCard, error) {
	return s.Graveyards.ListByPlayer(ctx, battlePlayerID)
}

func (s *Store) AddMysteryCard(ctx context.Context, mc *model.MysteryCard) error {
	return s.Mysteries.Add(ctx, mc)
}

func (s *Store) MysteriesByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.MysteryCard, error) {
	return s.Mysteries.ListByPlayer(ctx, battlePlayerID)
}

func (s *Store) RemoveMysteryCard(ctx context.Context, id int64) error {
	return s.Mysteries.Remove(ctx, id)
}

func (s *Store) CreateTile(ctx context.Context, t *model.Tile) error { return s.Tiles.Create(ctx, t) }
func (s *Store) SaveTile(ctx context.Context, t *model.Tile) error   { return s.Tiles.Update(ctx, t) }

func (s *Store) TilesByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.Tile, error) {
	return s.Tiles.ListByPlayer(ctx, battlePlayerID)
}

func (s *Store) AddHistory(ctx context.Context, h *model.CardHistory) error {
	return s.History.Create(ctx, h)
}
