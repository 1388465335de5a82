package yahoo

// slotBase maps a Yahoo selected_position to a base slot name. The
// second return is false for non-starting positions; of those, "BN"
// goes to the bench and everything else (IR, NA) is dropped.
func slotBase(selected string) (string, bool) {
	switch selected {
	case "QB":
		return "QB", true
	case "RB":
		return "RB", true
	case "WR":
		return "WR", true
	case "TE":
		return "TE", true
	case "W/R/T", "W/R", "Q/W/R/T", "FLEX":
		return "FLEX", true
	case "K":
		return "K", true
	case "DEF":
		return "DEF", true
	case "D", "DB", "LB", "DL":
		return "IDP", true
	case "BN":
		return "BN", false
	default:
		return "", false
	}
}
