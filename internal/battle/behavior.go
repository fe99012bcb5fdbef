package battle

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mep3ab4ik/GoB/internal/model"
)

// ErrCardAbilityNotFound means no behavior is registered for a card's custom
// id. It is a content-integrity condition, not a player-facing error: cards
// without a registered behavior must never be marked enabled.
var ErrCardAbilityNotFound = errors.New("battle: card ability not found")

// Behavior is the resolved implementation of one card definition. Concrete
// behaviors additionally implement whichever capability interfaces below
// apply to them.
type Behavior interface {
	CustomID() string
}

// Target is the player-chosen target of a targeted card: a tile on either
// side, or a player avatar.
type Target struct {
	Tile   *model.Tile
	Side   *Side
	Avatar bool
}

// Appear describes one card arriving in play: the acting side, the tile a
// serf was placed on (nil for spells and mysteries) and the chosen target.
type Appear struct {
	Side   *Side
	Tile   *model.Tile
	Target *Target
}

// Appearer fires when the card is played from hand onto a tile, or when a
// spell resolves against its target.
type Appearer interface {
	AfterAppear(ctx context.Context, rt *Runtime, ap Appear) error
}

// Dier fires when the card's tile occupant dies. Last-breath effects live
// here.
type Dier interface {
	AfterDeath(ctx context.Context, rt *Runtime, side *Side, tile *model.Tile) error
}

// WarcryCard marks a serf whose AfterAppear is a warcry, which other
// mysteries can react to.
type WarcryCard interface {
	IsWarcry() bool
}

// MysterySlot is a face-down mystery under trigger evaluation: the owning
// side plus the active-mystery row.
type MysterySlot struct {
	Side *Side
	Card *model.MysteryCard
}

// Reactive mystery hooks. Each returns whether the mystery activated; an
// activated mystery disappears and triggers at most once per originating
// event.
type (
	FriendlyCreatureDeathReactor interface {
		OnFriendlyCreatureDeath(ctx context.Context, rt *Runtime, slot MysterySlot, dead *model.Tile) (bool, error)
	}
	OpponentCreaturePlayReactor interface {
		OnOpponentCreaturePlay(ctx context.Context, rt *Runtime, slot MysterySlot, played *model.Tile) (bool, error)
	}
	WarcryPlayReactor interface {
		OnPlayFriendlyCreatureWithWarcry(ctx context.Context, rt *Runtime, slot MysterySlot, played *model.Tile) (bool, error)
	}
	SpellPlayedReactor interface {
		OnAnySpellCardPlayed(ctx context.Context, rt *Runtime, slot MysterySlot, spell *model.Card) (bool, error)
	}
	AvatarDamageReactor interface {
		OnPlayerAvatarDamage(ctx context.Context, rt *Runtime, slot MysterySlot, victim *Side, amount int) (bool, error)
	}
	AwakeFromMIAReactor interface {
		OnAwakeFromMIA(ctx context.Context, rt *Runtime, slot MysterySlot, tile *model.Tile) (bool, error)
	}
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func() Behavior)
)

// Register binds a behavior constructor to a card custom id. Called from
// init functions of the ability package; duplicate registration panics since
// it is a programming error.
func Register(customID string, ctor func() Behavior) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[customID]; dup {
		panic(fmt.Sprintf("battle: duplicate behavior registration for %s", customID))
	}
	registry[customID] = ctor
}

// Resolve returns a fresh behavior instance for the card custom id.
func Resolve(customID string) (Behavior, error) {
	registryMu.RLock()
	ctor, ok := registry[customID]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCardAbilityNotFound, customID)
	}
	return ctor(), nil
}

// Registered reports whether a behavior exists for the custom id. Deck
// validation and the card enabled flag are gated on it.
func Registered(customID string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[customID]
	return ok
}
