package model

// Card is the immutable definition of a card. Instances placed in decks,
// hands, graveyards and on tiles reference a Card and carry their own
// mutable copies of attack/hp.
type Card struct {
	ID          int64
	CustomID    string // stable content identifier, e.g. "G241"
	Name        string
	Description string
	Rarity      string
	Type        CardType
	Targeting   Targeting
	// TargetingScope is only meaningful for targeted spells and targeted
	// warcry creatures.
	TargetingScope TargetingScope
	Element        Element
	HP             int
	Attack         int
	// Enabled is gated on a registered ability implementation existing for
	// CustomID. A card without one must never enter a deck.
	Enabled bool
}

// RequiresTarget reports whether playing this card must name a target tile.
func (c *Card) RequiresTarget() bool {
	return c.Targeting == TargetingTarget
}

// GameMode configures deck sizes, timers and optional rules for a battle.
type GameMode struct {
	ID                          int64
	CustomID                    string
	Title                       string
	Description                 string
	Default                     bool
	BattlefieldTimerDuration    int // seconds per turn
	StartBattlePlayerHP         int
	MaxCardsInHand              int
	StartCardsOnHandCount       int
	MaxTilesPerPlayer           int
	MaxCardsInDeck              int
	IsGraveyardEnabled          bool
	ShowNextCardFromDeck        bool
	IsRandomGeneratedDeck       bool
	DealDamageToAvatarOnEmptyDeck bool
	BattleDuration              int // seconds, absolute battle length
	BlockedCardIDs              []int64
}

// CardHistory is an audit record of a notable card event within a battle.
type CardHistory struct {
	ID             int64
	BattleID       int64
	BattlePlayerID int64
	CardID         int64
	TurnNumber     int
	RecordType     HistoryRecordType
}
