package espn

import (
	"github.com/morganjb52/ffb/model"
)

// ESPN lineup-slot numbers as they appear in the embedded state blobs.
const (
	espnSlotQB    = 0
	espnSlotRB    = 2
	espnSlotRBWR  = 3
	espnSlotWR    = 4
	espnSlotWRTE  = 5
	espnSlotTE    = 6
	espnSlotOP    = 7
	espnSlotDT    = 8
	espnSlotDE    = 9
	espnSlotLB    = 10
	espnSlotDL    = 11
	espnSlotCB    = 12
	espnSlotS     = 13
	espnSlotDB    = 14
	espnSlotDST   = 16
	espnSlotK     = 17
	espnSlotBench = 20
	espnSlotIR    = 21
	espnSlotFlex  = 23
)

// slotBaseForID maps an ESPN lineup-slot number to the base slot name
// the SlotAssigner numbers. False means not a starting slot.
func slotBaseForID(id int) (string, bool) {
	switch id {
	case espnSlotQB:
		return "QB", true
	case espnSlotRB:
		return "RB", true
	case espnSlotWR:
		return "WR", true
	case espnSlotTE:
		return "TE", true
	case espnSlotFlex, espnSlotRBWR, espnSlotWRTE, espnSlotOP:
		return "FLEX", true
	case espnSlotK:
		return "K", true
	case espnSlotDST:
		return "DEF", true
	case espnSlotDT, espnSlotDE, espnSlotLB, espnSlotDL, espnSlotCB, espnSlotS, espnSlotDB:
		return "IDP", true
	default:
		return "", false
	}
}

// slotBaseForPosition is the fallback when only a position string was
// recovered (table and name-probe strategies carry no slot numbers).
func slotBaseForPosition(pos model.Position) string {
	switch pos {
	case model.POS_QB:
		return "QB"
	case model.POS_RB:
		return "RB"
	case model.POS_WR:
		return "WR"
	case model.POS_TE:
		return "TE"
	case model.POS_K:
		return "K"
	case model.POS_DEF:
		return "DEF"
	default:
		return "FLEX"
	}
}
