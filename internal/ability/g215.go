package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G215: Deal 3 damage to 2 random creatures. Tiles occupied by those
// creatures gain Shock.
type G215 struct{ spell }

func init() {
	battle.Register("G215", func() battle.Behavior { return &G215{spell{"G215"}} })
}

func (g *G215) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	targets := rt.RandomTiles(bothSidesSerfTiles(rt.State, true), 2)
	if err := rt.SpellAttackTiles(ctx, targets, 3); err != nil {
		return err
	}
	for _, tile := range targets {
		if err := rt.SetTileElement(ctx, tile, model.ElementElectric); err != nil {
			return err
		}
	}
	return nil
}
