package model

import (
	"fmt"
	"time"
)

var (
	PlatformESPN    = "espn"
	PlatformSleeper = "sleeper"
	PlatformYahoo   = "yahoo"
	PlatformCBS     = "cbs" // recognized in the vocabulary, not yet supported
)

// PrefixedTeamID builds the globally unique team identifier used across
// platforms, e.g. "espn-12345". Raw platform IDs collide between
// platforms, prefixed ones do not.
func PrefixedTeamID(platform, rawID string) string {
	return fmt.Sprintf("%s-%s", platform, rawID)
}

type Record struct {
	Wins   int
	Losses int
	Ties   int
}

func (r Record) String() string {
	return fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.Ties)
}

// FantasyTeam is the canonical team entity. Adapters construct these,
// the caller owns them afterwards.
type FantasyTeam struct {
	ID         string // platform-prefixed, see PrefixedTeamID
	Name       string
	Platform   string
	LeagueID   string
	LeagueName string
	OwnerID    string
	Record     Record
	Season     int
	Active     bool

	// LastSync is the zero time for a team that has never synced.
	LastSync time.Time
}
