package model

// BattleState tracks the lifecycle of a battle record.
type BattleState string

const (
	BattleCreated           BattleState = "CREATED"            // battle record exists, nobody attached
	BattleJoined            BattleState = "JOINED"             // first player's session attached
	BattleClosed            BattleState = "CLOSED"             // second player allocated, pre-start
	BattleActive            BattleState = "ACTIVE"             // both sides connected, battle running
	BattleCompleted         BattleState = "COMPLETED"          // battle is over, winner resolved or draw declared
	BattleDiscarded         BattleState = "DISCARDED"          // abandoned or unresolvable battle
	BattleAwaitingReconnect BattleState = "AWAITING_RECONNECT" // one side disconnected, grace period running
)

// IsActive reports whether the battle still accepts gameplay traffic.
func (s BattleState) IsActive() bool {
	switch s {
	case BattleActive, BattleAwaitingReconnect, BattleJoined:
		return true
	}
	return false
}

// IsTerminal reports whether the battle reached a final state.
func (s BattleState) IsTerminal() bool {
	return s == BattleCompleted || s == BattleDiscarded
}

// BattleEndType records how a completed battle ended.
type BattleEndType string

const (
	EndPlayerKilled       BattleEndType = "player_killed"
	EndPlayerDisconnected BattleEndType = "player_disconnected"
	EndPlayerSurrendered  BattleEndType = "player_surrendered"
	EndBattleDuration     BattleEndType = "battle_duration"
)

// TileState tracks the occupancy lifecycle of a single board slot.
type TileState string

const (
	TileFree   TileState = "FREE"   // no card on the tile
	TileAsleep TileState = "ASLEEP" // card placed this turn, cannot act yet
	TileActive TileState = "ACTIVE" // occupant may act
	TileUsed   TileState = "USED"   // occupant acted this turn
	TileLocked TileState = "LOCKED" // disabled by an effect
)

// Element is the elemental affinity of a tile or card.
type Element string

const (
	ElementNeutral  Element = "NEUTRAL"
	ElementWater    Element = "WATER"
	ElementFire     Element = "FIRE"
	ElementEarth    Element = "EARTH"
	ElementElectric Element = "ELECTRIC"
)

// CardType distinguishes the three playable card categories.
type CardType string

const (
	CardSerf    CardType = "serf"    // creature occupying a tile
	CardSpell   CardType = "spell"   // one-shot effect
	CardMystery CardType = "mystery" // face-down reactive card
)

// Targeting says whether playing the card requires an explicit target.
type Targeting string

const (
	TargetingRegular Targeting = "regular"
	TargetingTarget  Targeting = "target"
)

// TargetingScope narrows which tiles/avatars a targeted card may select.
type TargetingScope string

const (
	ScopeOnlyOpponentTiles      TargetingScope = "only_opponent_tiles"
	ScopeOnlyOpponentCreatures  TargetingScope = "only_opponent_creatures"
	ScopeOnlyOpponentAvatar     TargetingScope = "only_opponent_avatar"
	ScopeOnlyOpponentEverything TargetingScope = "only_opponent_everything"
	ScopeOnlyPlayerTiles        TargetingScope = "only_player_tiles"
	ScopeOnlyPlayerCreatures    TargetingScope = "only_player_creatures"
	ScopeOnlyPlayerAvatar       TargetingScope = "only_player_avatar"
	ScopeOnlyPlayerEverything   TargetingScope = "only_player_everything"
	ScopeBothPlayerTiles        TargetingScope = "both_player_tiles"
	ScopeBothPlayerCreatures    TargetingScope = "both_player_creatures"
	ScopeBothPlayerAvatars      TargetingScope = "both_player_avatars"
	ScopeBothPlayerEverything   TargetingScope = "both_player_everything"
)

// AllowsFriendly reports whether the scope admits targets on the acting
// player's side of the board.
func (s TargetingScope) AllowsFriendly() bool {
	switch s {
	case ScopeOnlyPlayerTiles, ScopeOnlyPlayerCreatures, ScopeOnlyPlayerAvatar, ScopeOnlyPlayerEverything,
		ScopeBothPlayerTiles, ScopeBothPlayerCreatures, ScopeBothPlayerAvatars, ScopeBothPlayerEverything:
		return true
	}
	return false
}

// AllowsOpponent reports whether the scope admits targets on the opposing side.
func (s TargetingScope) AllowsOpponent() bool {
	switch s {
	case ScopeOnlyOpponentTiles, ScopeOnlyOpponentCreatures, ScopeOnlyOpponentAvatar, ScopeOnlyOpponentEverything,
		ScopeBothPlayerTiles, ScopeBothPlayerCreatures, ScopeBothPlayerAvatars, ScopeBothPlayerEverything:
		return true
	}
	return false
}

// EnchantKeyword is the fixed vocabulary of enchantment effects.
type EnchantKeyword string

const (
	KeywordWarcry      EnchantKeyword = "warcry"
	KeywordCensor      EnchantKeyword = "censor"
	KeywordLeech       EnchantKeyword = "leech"
	KeywordInsult      EnchantKeyword = "insult"
	KeywordPounce      EnchantKeyword = "pounce"
	KeywordBarrier     EnchantKeyword = "barrier"
	KeywordUntouchable EnchantKeyword = "untouchable"
	KeywordMummy       EnchantKeyword = "mummy"
	KeywordEnsnare     EnchantKeyword = "ensnare"
	KeywordMIA         EnchantKeyword = "mia"
	KeywordTileBuff    EnchantKeyword = "tile_buff"
	KeywordElementBuff EnchantKeyword = "element_buff"
	KeywordProtect     EnchantKeyword = "protect"
	KeywordInvisible   EnchantKeyword = "invisible"
)

// EnchantType classifies an enchantment as beneficial or harmful.
type EnchantType string

const (
	EnchantBuff   EnchantType = "buff"
	EnchantDebuff EnchantType = "debuff"
)

// HistoryRecordType tags card audit records.
type HistoryRecordType string

const (
	HistoryPlacedOnTile     HistoryRecordType = "PLACED_ON_TILE"
	HistoryAttack           HistoryRecordType = "ATTACK"
	HistoryMysteryActivated HistoryRecordType = "MYSTERY_ACTIVATED"
	HistorySpellPlayed      HistoryRecordType = "SPELL_PLAYED"
	HistoryDeath            HistoryRecordType = "DEATH"
)
