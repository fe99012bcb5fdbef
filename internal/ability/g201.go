package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G201: Dig
// Last Breath: Give 2 random friendly tiles Dig.
type G201 struct{ serf }

func init() {
	battle.Register("G201", func() battle.Behavior { return &G201{serf{"G201"}} })
}

func (g *G201) AfterDeath(ctx context.Context, rt *battle.Runtime, side *battle.Side, dead *model.Tile) error {
	for _, tile := range rt.RandomTiles(side.Tiles, 2) {
		if err := rt.SetTileElement(ctx, tile, model.ElementEarth); err != nil {
			return err
		}
	}
	return nil
}
