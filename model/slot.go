package model

import (
	"fmt"
)

// Slot is a named roster position in a lineup, e.g. RB1 or FLEX. It is
// distinct from a player's natural position: a RB can start in RB1, RB2
// or FLEX depending on the week.
type Slot string

const (
	SLOT_QB    Slot = "QB"
	SLOT_RB1   Slot = "RB1"
	SLOT_RB2   Slot = "RB2"
	SLOT_RB3   Slot = "RB3"
	SLOT_WR1   Slot = "WR1"
	SLOT_WR2   Slot = "WR2"
	SLOT_WR3   Slot = "WR3"
	SLOT_WR4   Slot = "WR4"
	SLOT_TE    Slot = "TE"
	SLOT_FLEX  Slot = "FLEX"
	SLOT_FLEX2 Slot = "FLEX2"
	SLOT_K     Slot = "K"
	SLOT_DEF   Slot = "DEF"
	SLOT_IDP1  Slot = "IDP1"
	SLOT_IDP2  Slot = "IDP2"
	SLOT_IDP3  Slot = "IDP3"
)

// SlotOrder is the canonical display order. Leagues differ in which
// slots they actually use, so display code never assumes all of these
// are populated, see SlotsInUse.
var SlotOrder = []Slot{
	SLOT_QB,
	SLOT_RB1, SLOT_RB2, SLOT_RB3,
	SLOT_WR1, SLOT_WR2, SLOT_WR3, SLOT_WR4,
	SLOT_TE,
	SLOT_FLEX, SLOT_FLEX2,
	SLOT_K,
	SLOT_DEF,
	SLOT_IDP1, SLOT_IDP2, SLOT_IDP3,
}

// SlotsInUse returns, in canonical order, only the slots populated by at
// least one of the given lineups. Slots no lineup fills are omitted so a
// 2-WR league never shows an empty WR3 column.
func SlotsInUse(lineups []*Lineup) []Slot {
	used := make(map[Slot]bool)
	for _, l := range lineups {
		if l == nil {
			continue
		}
		for s := range l.Starters {
			used[s] = true
		}
	}

	result := make([]Slot, 0, len(used))
	for _, s := range SlotOrder {
		if used[s] {
			result = append(result, s)
		}
	}
	return result
}

// SlotAssigner turns a platform's repeated base slot names into numbered
// canonical slots: the first RB becomes RB1, the second RB2, and so on.
// All the platform adapters share this instead of keeping their own
// numbering logic.
type SlotAssigner struct {
	counts map[string]int
}

func NewSlotAssigner() *SlotAssigner {
	return &SlotAssigner{counts: make(map[string]int)}
}

// Next returns the canonical slot for the next occurrence of the given
// base name. QB, TE, K and DEF are single slots; RB, WR, FLEX and IDP
// get numbered. The numbering is stable regardless of which player ends
// up in the slot.
func (a *SlotAssigner) Next(base string) Slot {
	a.counts[base]++
	n := a.counts[base]

	switch base {
	case "QB", "TE", "K", "DEF":
		return Slot(base)
	case "FLEX":
		if n == 1 {
			return SLOT_FLEX
		}
		return Slot(fmt.Sprintf("FLEX%d", n))
	default:
		return Slot(fmt.Sprintf("%s%d", base, n))
	}
}
