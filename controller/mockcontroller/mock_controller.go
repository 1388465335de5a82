package mockcontroller

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/morganjb52/ffb/model"
)

type C struct {
	mock.Mock
}

func (c *C) ConnectPlatform(ctx context.Context, platform string, credentials map[string]string) model.ConnectionResult {
	args := c.Called(ctx, platform, credentials)
	return args.Get(0).(model.ConnectionResult)
}

func (c *C) Disconnect(ctx context.Context, platform string) error {
	args := c.Called(ctx, platform)
	return args.Error(0)
}

func (c *C) GetTeam(teamID string) (*model.FantasyTeam, error) {
	args := c.Called(teamID)

	var team *model.FantasyTeam
	if args.Get(0) != nil {
		team = args.Get(0).(*model.FantasyTeam)
	}

	return team, args.Error(1)
}

func (c *C) ListTeams() []*model.FantasyTeam {
	args := c.Called()

	var teams []*model.FantasyTeam
	if args.Get(0) != nil {
		teams = args.Get(0).([]*model.FantasyTeam)
	}

	return teams
}

func (c *C) GetTeamLineup(ctx context.Context, teamID string, week int) (*model.Lineup, error) {
	args := c.Called(ctx, teamID, week)

	var lineup *model.Lineup
	if args.Get(0) != nil {
		lineup = args.Get(0).(*model.Lineup)
	}

	return lineup, args.Error(1)
}

func (c *C) UpdateTeamLineup(ctx context.Context, teamID string, week int, partial map[model.Slot]model.Player) (bool, error) {
	args := c.Called(ctx, teamID, week, partial)
	return args.Bool(0), args.Error(1)
}

func (c *C) SyncTeam(ctx context.Context, teamID string, week int) model.SyncResult {
	args := c.Called(ctx, teamID, week)
	return args.Get(0).(model.SyncResult)
}

func (c *C) OAuthStart(platform string) (string, error) {
	args := c.Called(platform)
	return args.String(0), args.Error(1)
}

func (c *C) OAuthExchange(ctx context.Context, state, code string) error {
	args := c.Called(ctx, state, code)
	return args.Error(0)
}

func (c *C) RunPeriodicSyncs(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup) {
	c.Called(frequency, shutdown, wg)
}
