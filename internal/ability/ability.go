// Package ability holds the concrete card behaviors. Each card registers
// itself with the battle dispatcher under its custom id; importing this
// package (blank import from the server entry point) is what makes cards
// playable.
package ability

import (
	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/model"
)

type serf struct{ id string }

func (s serf) CustomID() string { return s.id }

type spell struct{ id string }

func (s spell) CustomID() string { return s.id }

type mystery struct{ id string }

func (m mystery) CustomID() string { return m.id }

// serfTiles returns a side's occupied serf tiles, optionally skipping
// creatures that are missing in action.
func serfTiles(side *battle.Side, includeMIA bool) []*model.Tile {
	var out []*model.Tile
	for _, t := range side.OccupiedTiles() {
		if t.Card.Type != model.CardSerf {
			continue
		}
		if !includeMIA && t.HasEnchantment(model.KeywordMIA) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// bothSidesSerfTiles collects serf tiles across the whole board.
func bothSidesSerfTiles(st *battle.State, includeMIA bool) []*model.Tile {
	var out []*model.Tile
	for _, side := range st.Sides {
		if side == nil {
			continue
		}
		out = append(out, serfTiles(side, includeMIA)...)
	}
	return out
}
