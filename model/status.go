package model

import (
	"strings"
)

type InjuryStatus string

const (
	STATUS_HEALTHY      InjuryStatus = "healthy"
	STATUS_QUESTIONABLE InjuryStatus = "questionable"
	STATUS_DOUBTFUL     InjuryStatus = "doubtful"
	STATUS_OUT          InjuryStatus = "out"
)

// ParseInjuryStatus is total: any input, including the empty string,
// maps to one of the four canonical statuses. Unrecognized values are
// treated as healthy rather than propagated.
func ParseInjuryStatus(s string) InjuryStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "q", "questionable":
		return STATUS_QUESTIONABLE
	case "d", "doubtful":
		return STATUS_DOUBTFUL
	case "o", "out", "ir", "injured reserve", "pup", "suspended":
		return STATUS_OUT
	default:
		return STATUS_HEALTHY
	}
}
