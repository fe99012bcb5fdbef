package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G261: Return all enemy creatures with an ATK less than the number of
// Water tiles you control to their owner's hand.
type G261 struct{ spell }

func init() {
	battle.Register("G261", func() battle.Behavior { return &G261{spell{"G261"}} })
}

func (g *G261) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	enemy := rt.State.Opponent(ap.Side)
	if enemy == nil {
		return nil
	}
	waterTiles := 0
	for _, tile := range ap.Side.Tiles {
		if tile.Element == model.ElementWater {
			waterTiles++
		}
	}
	targets := make([]*model.Tile, 0, len(enemy.Tiles))
	for _, tile := range serfTiles(enemy, true) {
		if tile.AttackWithEnchantments() < waterTiles {
			targets = append(targets, tile)
		}
	}
	for _, tile := range targets {
		if err := rt.MoveCardFromTileToHand(ctx, enemy, tile); err != nil {
			return err
		}
	}
	return nil
}
