package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G213: Aqua
// Insult
// Warcry: Give a creature Invisibility.
type G213 struct{ serf }

func init() {
	battle.Register("G213", func() battle.Behavior { return &G213{serf{"G213"}} })
}

func (g *G213) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	if err := rt.AddKeywordToTile(ctx, ap.Tile, model.KeywordInsult, model.EnchantBuff, 0); err != nil {
		return err
	}
	if ap.Target != nil && ap.Target.Tile != nil {
		return rt.AddKeywordToTile(ctx, ap.Target.Tile, model.KeywordInvisible, model.EnchantBuff, 0)
	}
	return nil
}
