package model

import (
	"strings"
)

// Player is the canonical representation of a rostered player as
// produced by a platform adapter for a single sync. Adapters construct
// them and hand them off; nothing mutates a Player afterwards.
type Player struct {
	ID              string
	Name            string
	Position        Position
	Team            *NFLTeam
	Status          InjuryStatus
	ProjectedPoints float64
	ActualPoints    float64
}

// Take a full name, like "Deebo Samuel Sr." and return "Deebo Samuel".
func TrimNameSuffix(fullName string) string {
	suffixList := []string{
		"Jr.",
		"Sr.",
		"III",
		"II",
		"IV",
	}

	for _, s := range suffixList {
		fullName = strings.TrimSuffix(fullName, s)
	}

	return strings.TrimSpace(fullName)
}
