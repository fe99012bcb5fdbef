package battle

import (
	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/model"
)

// Side is one seat's full in-memory state: the player row plus the four
// ordered card collections and the tile row.
type Side struct {
	Player    *model.BattlePlayer
	Deck      []*model.DeckCard
	Hand      []*model.HandCard
	Graveyard []*model.GraveyardCard
	Mysteries []*model.MysteryCard
	Tiles     []*model.Tile
}

// Idx returns the seat index, 1 or 2.
func (s *Side) Idx() int {
	return s.Player.Idx
}

// TileByID finds a tile on this side by its row id.
func (s *Side) TileByID(id int64) *model.Tile {
	for _, t := range s.Tiles {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// HandCardByBattleCardID finds a hand card by its battle-scoped id.
func (s *Side) HandCardByBattleCardID(battleCardID int) *model.HandCard {
	for _, hc := range s.Hand {
		if hc.BattleCardID == battleCardID {
			return hc
		}
	}
	return nil
}

// OccupiedTiles returns this side's tiles that carry a card.
func (s *Side) OccupiedTiles() []*model.Tile {
	var out []*model.Tile
	for _, t := range s.Tiles {
		if t.Occupied() {
			out = append(out, t)
		}
	}
	return out
}

// FreeTiles returns this side's empty tiles.
func (s *Side) FreeTiles() []*model.Tile {
	var out []*model.Tile
	for _, t := range s.Tiles {
		if t.State == model.TileFree {
			out = append(out, t)
		}
	}
	return out
}

// State is the authoritative in-memory battle state. It is only touched
// while the battle's exclusive lock is held; every mutation is written
// through to the durable store and the cached snapshot before the lock is
// released.
type State struct {
	Battle   *model.Battle
	Mode     *model.GameMode
	Sides    [2]*Side
	Snapshot *cache.Snapshot
	Events   *EventLog
}

// SideByIdx returns the seat by index (1 or 2), nil when not yet attached.
func (st *State) SideByIdx(idx int) *Side {
	if idx < 1 || idx > 2 {
		return nil
	}
	return st.Sides[idx-1]
}

// SideByPlayerID resolves the seat occupied by the given player identity.
func (st *State) SideByPlayerID(playerID int64) *Side {
	for _, s := range st.Sides {
		if s != nil && s.Player.PlayerID == playerID {
			return s
		}
	}
	return nil
}

// Acting returns the seat whose turn it currently is.
func (st *State) Acting() *Side {
	return st.SideByIdx(st.Battle.TurnIdx)
}

// Opponent returns the seat facing the given one.
func (st *State) Opponent(s *Side) *Side {
	if s == nil {
		return nil
	}
	return st.SideByIdx(3 - s.Idx())
}

// TileByID searches both sides for a tile row id.
func (st *State) TileByID(id int64) (*model.Tile, *Side) {
	for _, s := range st.Sides {
		if s == nil {
			continue
		}
		if t := s.TileByID(id); t != nil {
			return t, s
		}
	}
	return nil, nil
}

// Mirror returns the cached enchantment mirror for a tile, creating it on
// first touch.
func (st *State) Mirror(t *model.Tile) *cache.TileSnapshot {
	if st.Snapshot == nil {
		return nil
	}
	return st.Snapshot.Tile(t.BattlePlayerID, t.ID)
}
