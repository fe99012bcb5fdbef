package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G195: Mystery: When a friendly creature dies, Ensnare all enemy
// creatures.
type G195 struct{ mystery }

func init() {
	battle.Register("G195", func() battle.Behavior { return &G195{mystery{"G195"}} })
}

func (g *G195) OnFriendlyCreatureDeath(ctx context.Context, rt *battle.Runtime, slot battle.MysterySlot, dead *model.Tile) (bool, error) {
	enemy := rt.State.Opponent(slot.Side)
	if enemy == nil {
		return false, nil
	}
	if err := rt.EnsnareTiles(ctx, serfTiles(enemy, false)); err != nil {
		return false, err
	}
	return true, nil
}
