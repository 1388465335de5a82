// Package internal holds the XML shapes of the Yahoo fantasy API
// responses. Only the fields the client reads are declared.
package internal

type FantasyContent struct {
	League *League `xml:"league"`
	Team   *Team   `xml:"team"`
}

type League struct {
	Key       string     `xml:"league_key"`
	Name      string     `xml:"name"`
	Season    int        `xml:"season"`
	Standings *Standings `xml:"standings"`
}

type Standings struct {
	Teams *Teams `xml:"teams"`
}

type Teams struct {
	Teams []Team `xml:"team"`
}

type Team struct {
	Key           string         `xml:"team_key"`
	Name          string         `xml:"name"`
	Managers      *Managers      `xml:"managers"`
	TeamStandings *TeamStandings `xml:"team_standings"`
	Roster        *Roster        `xml:"roster"`
}

type Managers struct {
	Managers []Manager `xml:"manager"`
}

type Manager struct {
	ID       string `xml:"manager_id"`
	Nickname string `xml:"nickname"`
}

type TeamStandings struct {
	OutcomeTotals *OutcomeTotals `xml:"outcome_totals"`
}

type OutcomeTotals struct {
	Wins   int `xml:"wins"`
	Losses int `xml:"losses"`
	Ties   int `xml:"ties"`
}

type Roster struct {
	Week    int      `xml:"week"`
	Players *Players `xml:"players"`
}

type Players struct {
	Players []Player `xml:"player"`
}

type Player struct {
	Key               string            `xml:"player_key"`
	ID                string            `xml:"player_id"`
	Name              *PlayerName       `xml:"name"`
	TeamAbbr          string            `xml:"editorial_team_abbr"`
	TeamFullName      string            `xml:"editorial_team_full_name"`
	DisplayPosition   string            `xml:"display_position"`
	Status            string            `xml:"status"`
	SelectedPosition  *SelectedPosition `xml:"selected_position"`
	PlayerPoints      *PlayerPoints     `xml:"player_points"`
	ProjectedPoints   *PlayerPoints     `xml:"player_projected_points"`
}

type PlayerName struct {
	Full  string `xml:"full"`
	First string `xml:"first"`
	Last  string `xml:"last"`
}

type SelectedPosition struct {
	Position string `xml:"position"`
}

type PlayerPoints struct {
	Total float64 `xml:"total"`
}
