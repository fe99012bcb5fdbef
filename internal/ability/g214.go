package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
)

// G214: All creatures are returned to their owners' hands.
type G214 struct{ spell }

func init() {
	battle.Register("G214", func() battle.Behavior { return &G214{spell{"G214"}} })
}

func (g *G214) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	for _, side := range rt.State.Sides {
		if side == nil {
			continue
		}
		for _, tile := range serfTiles(side, false) {
			if err := rt.MoveCardFromTileToHand(ctx, side, tile); err != nil {
				return err
			}
		}
	}
	return nil
}
