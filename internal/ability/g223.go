package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G223: MIA for 2 turns.
// Aqua
type G223 struct{ serf }

func init() {
	battle.Register("G223", func() battle.Behavior { return &G223{serf{"G223"}} })
}

func (g *G223) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	// Counters tick at each of the owner's turn ends, so 3 covers two full
	// rounds for both players.
	return rt.AddKeywordToTile(ctx, ap.Tile, model.KeywordMIA, model.EnchantDebuff, 3)
}
