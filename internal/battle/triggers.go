package battle

import (
	"context"

	"go.uber.org/zap"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// occurrenceKind names the trigger points mysteries can react to.
type occurrenceKind int

const (
	occFriendlyCreatureDeath occurrenceKind = iota
	occCreaturePlay
	occSpellPlayed
	occAvatarDamage
	occAwakeFromMIA
)

// occurrence is one trigger-eligible thing that happened during the current
// action. side is the seat the occurrence belongs to: the dead creature's
// owner, the playing seat, the damaged avatar's seat.
type occurrence struct {
	kind   occurrenceKind
	side   *Side
	tile   *model.Tile
	card   *model.Card
	amount int
	warcry bool
}

// queue appends an occurrence for the trigger pipeline. Actions call it;
// the pipeline drains it after the primary hook returns.
func (rt *Runtime) queue(occ occurrence) {
	rt.pending = append(rt.pending, occ)
}

// ResolveTriggers drains the pending occurrence queue against the currently
// active mysteries. Reactive hooks may queue further occurrences; the loop
// is bounded because an activated mystery disappears and each mystery fires
// at most once per occurrence.
func (rt *Runtime) ResolveTriggers(ctx context.Context) error {
	for len(rt.pending) > 0 {
		occ := rt.pending[0]
		rt.pending = rt.pending[1:]
		if err := rt.resolveOne(ctx, occ); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) resolveOne(ctx context.Context, occ occurrence) error {
	if rt.State.Battle.State.IsTerminal() {
		rt.pending = nil
		return nil
	}
	for _, side := range rt.State.Sides {
		if side == nil {
			continue
		}
		// Snapshot the list: an activated mystery removes itself mid-walk.
		mysteries := make([]*model.MysteryCard, len(side.Mysteries))
		copy(mysteries, side.Mysteries)
		for _, mc := range mysteries {
			if !rt.mysteryStillActive(side, mc) {
				continue
			}
			behavior, err := Resolve(mc.Card.CustomID)
			if err != nil {
				rt.logger.Error("active mystery has no registered behavior",
					zap.String("custom_id", mc.Card.CustomID),
					zap.Int64("battle_id", rt.State.Battle.ID),
				)
				continue
			}
			slot := MysterySlot{Side: side, Card: mc}
			activated, err := rt.react(ctx, behavior, slot, occ)
			if err != nil {
				return err
			}
			if activated {
				if err := rt.MysteryDisappear(ctx, slot); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// react dispatches one occurrence to one mystery's matching hook, enforcing
// the ownership relation each hook implies.
func (rt *Runtime) react(ctx context.Context, behavior Behavior, slot MysterySlot, occ occurrence) (bool, error) {
	switch occ.kind {
	case occFriendlyCreatureDeath:
		r, ok := behavior.(FriendlyCreatureDeathReactor)
		if !ok || slot.Side != occ.side {
			return false, nil
		}
		return r.OnFriendlyCreatureDeath(ctx, rt, slot, occ.tile)

	case occCreaturePlay:
		if occ.warcry && slot.Side == occ.side {
			if r, ok := behavior.(WarcryPlayReactor); ok {
				return r.OnPlayFriendlyCreatureWithWarcry(ctx, rt, slot, occ.tile)
			}
		}
		if slot.Side != occ.side {
			if r, ok := behavior.(OpponentCreaturePlayReactor); ok {
				return r.OnOpponentCreaturePlay(ctx, rt, slot, occ.tile)
			}
		}
		return false, nil

	case occSpellPlayed:
		r, ok := behavior.(SpellPlayedReactor)
		if !ok {
			return false, nil
		}
		return r.OnAnySpellCardPlayed(ctx, rt, slot, occ.card)

	case occAvatarDamage:
		r, ok := behavior.(AvatarDamageReactor)
		if !ok || slot.Side != occ.side {
			return false, nil
		}
		return r.OnPlayerAvatarDamage(ctx, rt, slot, occ.side, occ.amount)

	case occAwakeFromMIA:
		r, ok := behavior.(AwakeFromMIAReactor)
		if !ok || slot.Side != occ.side {
			return false, nil
		}
		return r.OnAwakeFromMIA(ctx, rt, slot, occ.tile)
	}
	return false, nil
}

func (rt *Runtime) mysteryStillActive(side *Side, mc *model.MysteryCard) bool {
	for _, cur := range side.Mysteries {
		if cur.ID == mc.ID {
			return true
		}
	}
	return false
}
