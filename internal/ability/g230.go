package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G230: Dig
// Warcry: Give a creature +1/+1 for each Earth card you have in hand.
type G230 struct{ serf }

func init() {
	battle.Register("G230", func() battle.Behavior { return &G230{serf{"G230"}} })
}

func (g *G230) IsWarcry() bool { return true }

func (g *G230) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	if ap.Target == nil || ap.Target.Tile == nil {
		return nil
	}
	buff := 0
	for _, hc := range ap.Side.Hand {
		if hc.Card.Element == model.ElementEarth {
			buff++
		}
	}
	if buff == 0 {
		return nil
	}
	return rt.BuffTile(ctx, ap.Target.Tile, buff, buff)
}
