package sleeper

// slotBase maps a Sleeper roster-position identifier to the base slot
// name the SlotAssigner numbers. The second return is false only for
// bench-like identifiers; an unrecognized identifier still describes a
// starting slot and must consume its starter, otherwise every later
// slot assignment shifts by one. FLEX is the catch-all for those.
func slotBase(rp string) (string, bool) {
	switch rp {
	case "QB":
		return "QB", true
	case "RB":
		return "RB", true
	case "WR":
		return "WR", true
	case "TE":
		return "TE", true
	case "FLEX", "WRRB_FLEX", "REC_FLEX", "SUPER_FLEX":
		return "FLEX", true
	case "K":
		return "K", true
	case "DEF":
		return "DEF", true
	case "DL", "LB", "DB", "IDP_FLEX":
		return "IDP", true
	case "BN", "IR", "TAXI":
		return "", false
	default:
		return "FLEX", true
	}
}
