package controller

import (
	"context"
	"fmt"

	"github.com/morganjb52/ffb/model"
)

type espnAdapter struct {
	c *controller
}

func (a *espnAdapter) requiredCredentials() []string {
	return []string{"teamUrl"}
}

func (a *espnAdapter) connect(ctx context.Context, credentials map[string]string) (*model.FantasyTeam, *model.Lineup, error) {
	// Login is optional here: a session persisted from an earlier run
	// works without fresh credentials.
	if username, password := credentials["username"], credentials["password"]; username != "" && password != "" {
		if err := a.c.espn.Authenticate(ctx, username, password); err != nil {
			return nil, nil, err
		}
	}

	team, lineup, err := a.c.espn.GetTeamFromURL(ctx, credentials["teamUrl"])
	if err != nil {
		return nil, nil, err
	}

	// The team page never names the league, so the standings page fills
	// that in. Best effort: a failed standings scrape still connects.
	if snapshot, err := a.c.espn.GetLeague(ctx, team.LeagueID, team.Season); err == nil {
		team.LeagueName = snapshot.Name
		if entry := snapshot.FindTeam(team.ID); entry != nil {
			team.OwnerID = entry.OwnerID
		}
	}

	return team, lineup, nil
}

func (a *espnAdapter) getLineup(ctx context.Context, team *model.FantasyTeam, week int) (*model.Lineup, error) {
	target := fmt.Sprintf("https://fantasy.espn.com/football/team?leagueId=%s&teamId=%s&seasonId=%d&scoringPeriodId=%d",
		team.LeagueID, rawTeamID(team), team.Season, week)

	_, lineup, err := a.c.espn.GetTeamFromURL(ctx, target)
	return lineup, err
}

func (a *espnAdapter) updateLineup(ctx context.Context, team *model.FantasyTeam, week int, partial map[model.Slot]model.Player) (bool, error) {
	return a.c.espn.UpdateLineup(ctx, team.LeagueID, rawTeamID(team), week, partial)
}

func (a *espnAdapter) disconnect(ctx context.Context) error {
	return a.c.espn.Session().Clear(ctx)
}
