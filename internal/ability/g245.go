package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
)

// G245: Dig
// Warcry: Give a friendly creature +3 HP.
type G245 struct{ serf }

func init() {
	battle.Register("G245", func() battle.Behavior { return &G245{serf{"G245"}} })
}

func (g *G245) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	if ap.Target == nil || ap.Target.Tile == nil {
		return nil
	}
	return rt.BuffTile(ctx, ap.Target.Tile, 3, 0)
}
