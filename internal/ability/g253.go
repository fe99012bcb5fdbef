package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G253: Destroy a creature with less than 4 ATK. Gain 4 Health.
type G253 struct{ spell }

func init() {
	battle.Register("G253", func() battle.Behavior { return &G253{spell{"G253"}} })
}

func (g *G253) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	var eligible []*model.Tile
	for _, tile := range bothSidesSerfTiles(rt.State, false) {
		if tile.AttackWithEnchantments() < 4 {
			eligible = append(eligible, tile)
		}
	}
	if picked := rt.RandomTiles(eligible, 1); len(picked) == 1 {
		_, owner := rt.State.TileByID(picked[0].ID)
		if owner != nil {
			if err := rt.KillTile(ctx, owner, picked[0]); err != nil {
				return err
			}
		}
	}
	return rt.HealAvatar(ctx, ap.Side, 4)
}
