package battle

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// Store is the durable persistence contract the engine writes through. Every
// mutation performed under the battle lock is mirrored here synchronously so
// cache and durable state never diverge past one locked operation.
// *repository.Store satisfies it.
type Store interface {
	CreateBattle(ctx context.Context, b *model.Battle) error
	SaveBattle(ctx context.Context, b *model.Battle) error
	BattleByRoom(ctx context.Context, roomID string) (*model.Battle, error)

	CreatePlayer(ctx context.Context, p *model.BattlePlayer) error
	PlayersByBattle(ctx context.Context, battleID int64) ([]*model.BattlePlayer, error)
	SavePlayerHP(ctx context.Context, battlePlayerID int64, hp int) error

	ModeByID(ctx context.Context, id int64) (*model.GameMode, error)
	EnabledCards(ctx context.Context, blockedIDs []int64) ([]*model.Card, error)

	CreateDeck(ctx context.Context, cards []*model.DeckCard) error
	DeckByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.DeckCard, error)
	DeleteDeckCard(ctx context.Context, id int64) error

	AddHandCard(ctx context.Context, hc *model.HandCard) error
	HandByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.HandCard, error)
	RemoveHandCard(ctx context.Context, id int64) error

	AddGraveyardCard(ctx context.Context, gc *model.GraveyardCard) error
	GraveyardByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.GraveyardCard, error)

	AddMysteryCard(ctx context.Context, mc *model.MysteryCard) error
	MysteriesByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.MysteryCard, error)
	RemoveMysteryCard(ctx context.Context, id int64) error

	CreateTile(ctx context.Context, t *model.Tile) error
	SaveTile(ctx context.Context, t *model.Tile) error
	TilesByPlayer(ctx context.Context, battlePlayerID int64) ([]*model.Tile, error)

	AddHistory(ctx context.Context, h *model.CardHistory) error
}
