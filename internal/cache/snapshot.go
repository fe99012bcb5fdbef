package cache

import "time"

// CardSummary is the client-facing shape of a revealed card, used for the
// next-card-from-deck peek.
type CardSummary struct {
	ID          int64  `json:"id"`
	CustomID    string `json:"custom_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Rarity      string `json:"rarity"`
	Type        string `json:"type"`
	HP          int    `json:"hp"`
	Attack      int    `json:"attack"`
	Element     string `json:"element"`
}

// DeckSnapshot carries the cached peek at the top of a player's deck.
type DeckSnapshot struct {
	NextCard *CardSummary `json:"next_card,omitempty"`
}

// EnchantmentSummary mirrors one durable enchantment row for fast trigger
// checks. It must be created and deleted in lockstep with the durable record.
type EnchantmentSummary struct {
	ID      int64  `json:"id"`
	Keyword string `json:"keyword"`
	Type    string `json:"type"`
	Active  bool   `json:"active"`
}

// TileSnapshot is the cached mirror of one tile's enchantment set.
type TileSnapshot struct {
	ID           int64                        `json:"id"`
	Enchantments map[int64]*EnchantmentSummary `json:"enchantments"`
}

// NewTileSnapshot creates an empty mirror for a tile.
func NewTileSnapshot(id int64) *TileSnapshot {
	return &TileSnapshot{ID: id, Enchantments: make(map[int64]*EnchantmentSummary)}
}

// HasKeyword reports whether any mirrored enchantment carries the keyword.
func (t *TileSnapshot) HasKeyword(keyword string) bool {
	for _, e := range t.Enchantments {
		if e.Keyword == keyword && e.Active {
			return true
		}
	}
	return false
}

// PlayerSnapshot is the per-side transient state.
type PlayerSnapshot struct {
	ID    int64                  `json:"id"`
	Deck  DeckSnapshot           `json:"deck"`
	Tiles map[int64]*TileSnapshot `json:"tiles"`
}

// Snapshot is the fast-path per-battle state kept in the cache store. It is
// only read and written while holding the battle's exclusive lock.
type Snapshot struct {
	Players          map[int64]*PlayerSnapshot `json:"players"`
	RoundStartedAt   int64                     `json:"round_started_at"`
	LastBattleCardID int                       `json:"last_battle_card_id"`
}

// NewSnapshot builds the initial snapshot for a freshly created battle.
func NewSnapshot(playerIDs ...int64) *Snapshot {
	s := &Snapshot{
		Players:        make(map[int64]*PlayerSnapshot, len(playerIDs)),
		RoundStartedAt: time.Now().Unix(),
	}
	for _, id := range playerIDs {
		s.Players[id] = &PlayerSnapshot{ID: id, Tiles: make(map[int64]*TileSnapshot)}
	}
	return s
}

// Player returns the snapshot side for the given player id, creating it if
// the battle was cached before the side joined.
func (s *Snapshot) Player(playerID int64) *PlayerSnapshot {
	p, ok := s.Players[playerID]
	if !ok {
		p = &PlayerSnapshot{ID: playerID, Tiles: make(map[int64]*TileSnapshot)}
		s.Players[playerID] = p
	}
	if p.Tiles == nil {
		p.Tiles = make(map[int64]*TileSnapshot)
	}
	return p
}

// Tile returns the mirror for the tile, creating it on first touch.
func (s *Snapshot) Tile(playerID, tileID int64) *TileSnapshot {
	p := s.Player(playerID)
	t, ok := p.Tiles[tileID]
	if !ok {
		t = NewTileSnapshot(tileID)
		p.Tiles[tileID] = t
	}
	return t
}

// MarkRoundStarted stamps the beginning of the current round.
func (s *Snapshot) MarkRoundStarted(now time.Time) {
	s.RoundStartedAt = now.Unix()
}

// NextBattleCardID advances and returns the battle-wide card id counter.
func (s *Snapshot) NextBattleCardID() int {
	s.LastBattleCardID++
	return s.LastBattleCardID
}
