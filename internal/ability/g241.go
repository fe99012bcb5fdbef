package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G241: Burn
// Warcry: Ensnare a creature.
type G241 struct{ serf }

func init() {
	battle.Register("G241", func() battle.Behavior { return &G241{serf{"G241"}} })
}

func (g *G241) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	if ap.Target == nil || ap.Target.Tile == nil {
		return nil
	}
	return rt.EnsnareTiles(ctx, []*model.Tile{ap.Target.Tile})
}
