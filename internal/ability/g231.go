package ability

import (
	"context"

	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// G231: Warcry: Destroy all enemy Mystery cards.
type G231 struct{ serf }

func init() {
	battle.Register("G231", func() battle.Behavior { return &G231{serf{"G231"}} })
}

func (g *G231) AfterAppear(ctx context.Context, rt *battle.Runtime, ap battle.Appear) error {
	enemy := rt.State.Opponent(ap.Side)
	if enemy == nil {
		return nil
	}
	mysteries := make([]*model.MysteryCard, len(enemy.Mysteries))
	copy(mysteries, enemy.Mysteries)
	for _, mc := range mysteries {
		if err := rt.DestroyMystery(ctx, enemy, mc); err != nil {
			return err
		}
	}
	return nil
}
