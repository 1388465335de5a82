package sleeper

import (
	"fmt"
	"strings"

	"github.com/morganjb52/ffb/model"
)

type sleeperLeague struct {
	LeagueID        string   `json:"league_id"`
	Name            string   `json:"name"`
	Season          string   `json:"season"`
	RosterPositions []string `json:"roster_positions"`
}

type sleeperUser struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Metadata    struct {
		TeamName string `json:"team_name"`
	} `json:"metadata"`
}

type sleeperRoster struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Starters []string `json:"starters"`
	Players  []string `json:"players"`
	Settings struct {
		Wins   int `json:"wins"`
		Losses int `json:"losses"`
		Ties   int `json:"ties"`
	} `json:"settings"`
}

type sleeperMatchup struct {
	RosterID      int                `json:"roster_id"`
	Points        float64            `json:"points"`
	PlayersPoints map[string]float64 `json:"players_points"`
}

type sleeperPlayer struct {
	ID           string `json:"player_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Position     string `json:"position"`
	Team         string `json:"team"`
	InjuryStatus string `json:"injury_status"`
}

type sleeperProjection struct {
	PtsPPR float64 `json:"pts_ppr"`
}

func findRoster(rosters []sleeperRoster, teamID string) *sleeperRoster {
	for i := range rosters {
		if fmt.Sprintf("%d", rosters[i].RosterID) == teamID {
			return &rosters[i]
		}
	}
	return nil
}

func buildSnapshot(leagueID string, league *sleeperLeague, users []sleeperUser, rosters []sleeperRoster) *model.LeagueSnapshot {
	userNames := make(map[string]string, len(users))
	for _, u := range users {
		name := u.Metadata.TeamName
		if name == "" {
			name = u.DisplayName
		}
		userNames[u.UserID] = name
	}

	snapshot := &model.LeagueSnapshot{
		ID:       leagueID,
		Name:     league.Name,
		Season:   parseSeason(league.Season),
		Platform: model.PlatformSleeper,
		Teams:    make([]model.LeagueTeam, 0, len(rosters)),
	}

	for _, r := range rosters {
		name := userNames[r.OwnerID]
		if name == "" {
			name = fmt.Sprintf("Team %d", r.RosterID)
		}
		snapshot.Teams = append(snapshot.Teams, model.LeagueTeam{
			ID:      fmt.Sprintf("%d", r.RosterID),
			Name:    name,
			OwnerID: r.OwnerID,
			Record: model.Record{
				Wins:   r.Settings.Wins,
				Losses: r.Settings.Losses,
				Ties:   r.Settings.Ties,
			},
		})
	}
	return snapshot
}

// assembleLineup zips the league's roster-position list with the
// roster's starter IDs. Sleeper keeps the two aligned: the nth starter
// fills the nth non-bench roster position, with "0" for an empty slot.
func assembleLineup(league *sleeperLeague, roster *sleeperRoster, directory map[string]sleeperPlayer,
	actuals map[string]float64, projections map[string]sleeperProjection,
	leagueID, teamID string, week, season int) *model.Lineup {

	lineup := &model.Lineup{
		ID:       fmt.Sprintf("%s-%s-%d", leagueID, teamID, week),
		TeamID:   teamID,
		Week:     week,
		Season:   season,
		Starters: make(map[model.Slot]model.Player),
	}

	starterIDs := make(map[string]bool, len(roster.Starters))
	assigner := model.NewSlotAssigner()
	starterIdx := 0
	for _, rp := range league.RosterPositions {
		base, ok := slotBase(rp)
		if !ok {
			continue // bench-like positions hold no starter
		}
		slot := assigner.Next(base)

		if starterIdx >= len(roster.Starters) {
			continue
		}
		playerID := roster.Starters[starterIdx]
		starterIdx++

		if playerID == "" || playerID == "0" {
			continue // empty slot this week
		}
		starterIDs[playerID] = true
		lineup.Starters[slot] = buildPlayer(playerID, directory, actuals, projections)
	}

	for _, playerID := range roster.Players {
		if starterIDs[playerID] {
			continue
		}
		lineup.Bench = append(lineup.Bench, buildPlayer(playerID, directory, actuals, projections))
	}

	lineup.RecomputeTotals()
	return lineup
}

func buildPlayer(id string, directory map[string]sleeperPlayer,
	actuals map[string]float64, projections map[string]sleeperProjection) model.Player {

	p := model.Player{
		ID:           id,
		ActualPoints: actuals[id],
	}
	if proj, ok := projections[id]; ok {
		p.ProjectedPoints = proj.PtsPPR
	}

	sp, ok := directory[id]
	if !ok {
		// Team defenses are keyed by abbreviation and often missing from
		// the player directory.
		p.Name = id
		p.Position = model.POS_DEF
		p.Team = model.ParseTeam(id)
		p.Status = model.STATUS_HEALTHY
		return p
	}

	p.Name = strings.TrimSpace(fmt.Sprintf("%s %s", sp.FirstName, sp.LastName))
	p.Position = model.ParsePosition(sp.Position)
	if p.Position == model.POS_UNKNOWN {
		// Never let an unmapped upstream position through; FLEX is the
		// catch-all pseudo-position.
		p.Position = model.POS_FLEX
	}
	p.Team = model.ParseTeam(sp.Team)
	p.Status = model.ParseInjuryStatus(sp.InjuryStatus)
	return p
}

func parseSeason(s string) int {
	var year int
	fmt.Sscanf(s, "%d", &year)
	return year
}
