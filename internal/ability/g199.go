package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G199: Give a tile Shock. Both players draw a card.
type G199 struct{ spell }

func init() {
	battle.Register("G199", func() battle.Behavior { return &G199{spell{"G199"}} })
}

func (g *G199) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	if ap.Target != nil && ap.Target.Tile != nil {
		if err := rt.SetTileElement(ctx, ap.Target.Tile, model.ElementElectric); err != nil {
			return err
		}
	}
	if err := rt.DrawCards(ctx, ap.Side, 1); err != nil {
		return err
	}
	if enemy := rt.State.Opponent(ap.Side); enemy != nil {
		return rt.DrawCards(ctx, enemy, 1)
	}
	return nil
}
