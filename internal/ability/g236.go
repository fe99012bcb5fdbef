package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G236: Gains +3 ATK when on an Electric tile.
type G236 struct{ serf }

func init() {
	battle.Register("G236", func() battle.Behavior { return &G236{serf{"G236"}} })
}

func (g *G236) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	if ap.Tile.Element != model.ElementElectric {
		return nil
	}
	return rt.BuffTile(ctx, ap.Tile, 0, 3)
}
