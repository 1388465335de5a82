package model

// LeagueSnapshot is the league metadata plus team list an adapter
// returns from a single getLeague call.
type LeagueSnapshot struct {
	ID       string
	Name     string
	Season   int
	Platform string
	Teams    []LeagueTeam
}

// LeagueTeam is one team's entry in a league snapshot, identified by
// the platform's raw team ID (not yet platform-prefixed).
type LeagueTeam struct {
	ID      string
	Name    string
	OwnerID string
	Record  Record
}

// FindTeam returns the team with the given raw ID, or nil.
func (l *LeagueSnapshot) FindTeam(id string) *LeagueTeam {
	for i := range l.Teams {
		if l.Teams[i].ID == id {
			return &l.Teams[i]
		}
	}
	return nil
}
