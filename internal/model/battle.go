package model

import "time"

// Battle is the canonical record of one match between two players.
type Battle struct {
	ID            int64
	RoomID        string
	Player1Ticket string
	Player2Ticket string
	CreatedAt     time.Time
	BattleStart   *time.Time
	BattleEnd     *time.Time
	// WinnerPlayerID is nil until completion, and stays nil for a declared draw.
	WinnerPlayerID *int64
	EndType        BattleEndType
	State          BattleState
	// TurnIdx is the seat (1 or 2) whose turn it currently is.
	TurnIdx int
	// TurnNumber increments only after both seats have completed a turn.
	TurnNumber   int
	FirstTurnIdx int
	GameModeID   int64
}

// Complete moves the battle to COMPLETED with the given winner (nil for a
// declared draw) and stamps the end time.
func (b *Battle) Complete(winnerPlayerID *int64, now time.Time) {
	b.State = BattleCompleted
	b.WinnerPlayerID = winnerPlayerID
	b.BattleEnd = &now
}

// BattlePlayer is one side of a battle. It owns the four ordered card
// collections and the fixed tile row for that side.
type BattlePlayer struct {
	ID       int64
	Idx      int // seat index, 1 or 2
	BattleID int64
	PlayerID int64
	HP       int
	HPLimit  int
}

// CardRelation is the shape shared by every card-instance row: a card placed
// in a deck, hand, graveyard, active-mystery slot or on a tile. HP and Attack
// are base values independent of enchantments.
type CardRelation struct {
	ID     int64
	HP     int
	Attack int
	// Order is the dense, gapless position within the owning collection.
	Order int
	// BattleCardID is unique within a battle and follows the card instance
	// across deck/hand/tile moves. Zero means unassigned (e.g. a free tile).
	BattleCardID     int
	ClearDescription bool
	RemoveMummy      bool
	RemoveLastBreath bool
	BattlePlayerID   int64
	CardID           int64
	Card             *Card
}

// DeckCard is a card still in a player's draw pile.
type DeckCard struct {
	CardRelation
}

// HandCard is a card held in a player's hand.
type HandCard struct {
	CardRelation
	CardDeathCount int
	Enchantments   []*Enchantment
}

// GraveyardCard is a destroyed or consumed card.
type GraveyardCard struct {
	CardRelation
}

// MysteryCard is a face-down mystery waiting for its trigger.
type MysteryCard struct {
	CardRelation
}

// Tile is one board slot on a player's side. A free tile carries no card and
// no battle card id.
type Tile struct {
	CardRelation
	Element        Element
	State          TileState
	CardDeathCount int
	// OriginalCard survives the occupant becoming a copy of another card, so
	// triggers keyed to the original definition still fire.
	OriginalCardID int64
	OriginalCard   *Card
	Enchantments   []*Enchantment
}

// Occupied reports whether a card sits on the tile.
func (t *Tile) Occupied() bool {
	return t.State != TileFree && t.Card != nil
}

// AttackWithEnchantments folds attack-affecting enchantments over the base
// attack. The result never goes below zero.
func (t *Tile) AttackWithEnchantments() int {
	attack := t.Attack
	for _, e := range t.Enchantments {
		if e.AffectsAttack {
			attack += e.AttackChangeValue
		}
	}
	if attack < 0 {
		return 0
	}
	return attack
}

// HPWithEnchantments folds hp-affecting enchantments over the base hp.
func (t *Tile) HPWithEnchantments() int {
	hp := t.HP
	for _, e := range t.Enchantments {
		if e.AffectsHP {
			hp += e.HPChangeValue
		}
	}
	return hp
}

// HasEnchantment reports whether any enchantment with the keyword is attached.
func (t *Tile) HasEnchantment(keyword EnchantKeyword) bool {
	for _, e := range t.Enchantments {
		if e.Keyword == keyword {
			return true
		}
	}
	return false
}

// Flush clears the tile back to FREE: card, battle card id, stats, death
// counter and every enchantment are dropped.
func (t *Tile) Flush() {
	t.Card = nil
	t.CardID = 0
	t.OriginalCard = nil
	t.OriginalCardID = 0
	t.BattleCardID = 0
	t.State = TileFree
	t.HP = 0
	t.Attack = 0
	t.CardDeathCount = 0
	t.ClearDescription = false
	t.RemoveMummy = false
	t.RemoveLastBreath = false
	t.Enchantments = nil
}

// AttackWithEnchantments folds attack-affecting enchantments over a hand
// card's base attack.
func (h *HandCard) AttackWithEnchantments() int {
	attack := h.Attack
	for _, e := range h.Enchantments {
		if e.AffectsAttack {
			attack += e.AttackChangeValue
		}
	}
	return attack
}

// HPWithEnchantments folds hp-affecting enchantments over a hand card's base hp.
func (h *HandCard) HPWithEnchantments() int {
	hp := h.HP
	for _, e := range h.Enchantments {
		if e.AffectsHP {
			hp += e.HPChangeValue
		}
	}
	return hp
}

// Enchantment is a timed or permanent buff/debuff attached to exactly one of
// a tile or a hand card.
type Enchantment struct {
	ID int64
	// Turns is the remaining-turn counter; nil means the enchantment is
	// permanent until explicitly removed.
	Turns          *int
	TileID         *int64
	CardHandID     *int64
	BattlePlayerID *int64
	Keyword        EnchantKeyword
	Type           EnchantType
	AffectsHP      bool
	AffectsAttack  bool
	HPChangeValue  int
	AttackChangeValue int
	// Protect caps the damage the enchanted card takes per hit; nil means no cap.
	Protect *int
}

// Infinite reports whether the enchantment has no turn countdown.
func (e *Enchantment) Infinite() bool {
	return e.Turns == nil
}
