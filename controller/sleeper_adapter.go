package controller

import (
	"context"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/platformerr"
)

type sleeperAdapter struct {
	c *controller
}

func (a *sleeperAdapter) requiredCredentials() []string {
	return []string{"leagueId", "teamId"}
}

func (a *sleeperAdapter) connect(ctx context.Context, credentials map[string]string) (*model.FantasyTeam, *model.Lineup, error) {
	leagueID := credentials["leagueId"]
	teamID := credentials["teamId"]

	snapshot, err := a.c.sleeper.GetLeague(ctx, leagueID, 0)
	if err != nil {
		return nil, nil, err
	}

	entry := snapshot.FindTeam(teamID)
	if entry == nil {
		return nil, nil, &platformerr.NotFoundError{Platform: model.PlatformSleeper, Kind: "team", ID: teamID}
	}

	lineup, err := a.c.sleeper.GetTeamLineup(ctx, leagueID, teamID, connectWeek(credentials), snapshot.Season)
	if err != nil {
		return nil, nil, err
	}

	team := &model.FantasyTeam{
		ID:         teamID,
		Name:       entry.Name,
		Platform:   model.PlatformSleeper,
		LeagueID:   leagueID,
		LeagueName: snapshot.Name,
		OwnerID:    entry.OwnerID,
		Record:     entry.Record,
		Season:     snapshot.Season,
		Active:     true,
	}
	return team, lineup, nil
}

func (a *sleeperAdapter) getLineup(ctx context.Context, team *model.FantasyTeam, week int) (*model.Lineup, error) {
	return a.c.sleeper.GetTeamLineup(ctx, team.LeagueID, rawTeamID(team), week, team.Season)
}

func (a *sleeperAdapter) updateLineup(ctx context.Context, team *model.FantasyTeam, week int, partial map[model.Slot]model.Player) (bool, error) {
	return a.c.sleeper.UpdateLineup(ctx, team.LeagueID, rawTeamID(team), week, partial)
}

func (a *sleeperAdapter) disconnect(ctx context.Context) error {
	// no session state to tear down, the sleeper read API is public
	return nil
}
