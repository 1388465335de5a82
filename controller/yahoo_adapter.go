package controller

import (
	"context"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/platformerr"
	"github.com/morganjb52/ffb/platforms/yahoo"
)

type yahooAdapter struct {
	c *controller
}

func (a *yahooAdapter) requiredCredentials() []string {
	return []string{"accessToken", "leagueId", "teamId"}
}

func (a *yahooAdapter) connect(ctx context.Context, credentials map[string]string) (*model.FantasyTeam, *model.Lineup, error) {
	leagueID := credentials["leagueId"]
	teamKey := credentials["teamId"]
	httpClient := yahoo.BearerClient(ctx, credentials["accessToken"])

	snapshot, err := a.c.yahoo.GetLeague(httpClient, leagueID, 0)
	if err != nil {
		return nil, nil, err
	}

	entry := snapshot.FindTeam(teamKey)
	if entry == nil {
		return nil, nil, &platformerr.NotFoundError{Platform: model.PlatformYahoo, Kind: "team", ID: teamKey}
	}

	lineup, err := a.c.yahoo.GetTeamLineup(httpClient, leagueID, teamKey, connectWeek(credentials), snapshot.Season)
	if err != nil {
		return nil, nil, err
	}

	team := &model.FantasyTeam{
		ID:         teamKey,
		Name:       entry.Name,
		Platform:   model.PlatformYahoo,
		LeagueID:   leagueID,
		LeagueName: snapshot.Name,
		OwnerID:    entry.OwnerID,
		Record:     entry.Record,
		Season:     snapshot.Season,
		Active:     true,
	}
	return team, lineup, nil
}

func (a *yahooAdapter) getLineup(ctx context.Context, team *model.FantasyTeam, week int) (*model.Lineup, error) {
	token := a.c.credential(model.PlatformYahoo, "accessToken")
	if token == "" {
		return nil, &platformerr.AuthError{Platform: model.PlatformYahoo, Reason: "no access token on file"}
	}

	httpClient := yahoo.BearerClient(ctx, token)
	return a.c.yahoo.GetTeamLineup(httpClient, team.LeagueID, rawTeamID(team), week, team.Season)
}

func (a *yahooAdapter) updateLineup(ctx context.Context, team *model.FantasyTeam, week int, partial map[model.Slot]model.Player) (bool, error) {
	return a.c.yahoo.UpdateLineup(ctx, team.LeagueID, rawTeamID(team), week, partial)
}

func (a *yahooAdapter) disconnect(ctx context.Context) error {
	// the bearer token lives in the stored credentials, which the
	// controller drops on disconnect
	return nil
}
