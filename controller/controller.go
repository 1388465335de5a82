// Package controller routes lineup and connection operations to the
// right platform adapter without worrying about any web layers.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"golang.org/x/oauth2"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/espn"
	"github.com/morganjb52/ffb/platforms/platformerr"
	"github.com/morganjb52/ffb/platforms/sleeper"
	"github.com/morganjb52/ffb/platforms/yahoo"
)

// ErrTeamNotFound means the team ID was never connected, or its
// platform has been disconnected since.
var ErrTeamNotFound = errors.New("team is not connected")

// C encapsulates the business logic without worrying about any web
// layers. It is the single place where the platforms' heterogeneous
// failure types are flattened into uniform results.
type C interface {
	// ConnectPlatform validates the credentials, connects through the
	// platform's adapter and registers the resulting team. Adapter
	// errors never escape as errors; they come back in the result.
	ConnectPlatform(ctx context.Context, platform string, credentials map[string]string) model.ConnectionResult
	// Disconnect clears the platform's session and drops its teams.
	Disconnect(ctx context.Context, platform string) error

	GetTeam(teamID string) (*model.FantasyTeam, error)
	ListTeams() []*model.FantasyTeam

	GetTeamLineup(ctx context.Context, teamID string, week int) (*model.Lineup, error)
	// UpdateTeamLineup reports false without an error on platforms with
	// no lineup write support.
	UpdateTeamLineup(ctx context.Context, teamID string, week int, partial map[model.Slot]model.Player) (bool, error)
	// SyncTeam performs one refresh attempt and records the outcome,
	// successful or not, in a uniform shape.
	SyncTeam(ctx context.Context, teamID string, week int) model.SyncResult

	// OAuthStart returns the provider URL that begins the authorization
	// flow and records the state parameter for the callback.
	OAuthStart(platform string) (string, error)
	// OAuthExchange trades the callback code for a token and stores it
	// as the platform's accessToken credential.
	OAuthExchange(ctx context.Context, state, code string) error

	// RunPeriodicSyncs refreshes every connected team on a fixed cadence
	// until shutdown is closed. Each team is synced at the last week it
	// was loaded for.
	RunPeriodicSyncs(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup)
}

type controller struct {
	clock       clock.Clock
	sleeper     sleeper.Client
	yahoo       *yahoo.Client
	espn        *espn.Client
	yahooConfig *oauth2.Config

	mu          sync.Mutex
	teams       map[string]*model.FantasyTeam
	creds       map[string]map[string]string
	lastWeek    map[string]int
	oauthStates map[string]*oauthState
}

func New(clock clock.Clock, sleeper sleeper.Client, yahoo *yahoo.Client, espn *espn.Client, yahooConfig *oauth2.Config) (C, error) {
	c := &controller{
		clock:       clock,
		sleeper:     sleeper,
		yahoo:       yahoo,
		espn:        espn,
		yahooConfig: yahooConfig,
		teams:       make(map[string]*model.FantasyTeam),
		creds:       make(map[string]map[string]string),
		lastWeek:    make(map[string]int),
		oauthStates: make(map[string]*oauthState),
	}
	return c, nil
}

func (c *controller) ConnectPlatform(ctx context.Context, platform string, credentials map[string]string) model.ConnectionResult {
	adapter := getPlatformAdapter(platform, c)

	for _, key := range adapter.requiredCredentials() {
		if strings.TrimSpace(credentials[key]) == "" {
			// A credential stored earlier fills in for an omitted one;
			// this is how a token minted by the oauth flow gets used.
			if v := c.credential(platform, key); v != "" {
				credentials[key] = v
				continue
			}
			return model.ConnectionResult{
				Error: fmt.Sprintf("missing required credential %q for %s", key, platform),
			}
		}
	}

	team, lineup, err := adapter.connect(ctx, credentials)
	if err != nil {
		return model.ConnectionResult{Error: err.Error()}
	}

	// Raw platform IDs collide across platforms, prefixed ones do not.
	team.ID = model.PrefixedTeamID(platform, team.ID)
	lineup.TeamID = team.ID

	week := lineup.Week
	if !model.ValidWeek(week) {
		week = model.WeekMin
	}

	// The registry keeps its own copy. The caller owns the returned
	// team and reads it without holding c.mu.
	stored := *team

	c.mu.Lock()
	c.teams[team.ID] = &stored
	c.creds[platform] = credentials
	c.lastWeek[team.ID] = week
	c.mu.Unlock()

	return model.ConnectionResult{Success: true, Team: team, Lineup: lineup}
}

func (c *controller) Disconnect(ctx context.Context, platform string) error {
	adapter := getPlatformAdapter(platform, c)
	if err := adapter.disconnect(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.creds, platform)
	for id, t := range c.teams {
		if t.Platform == platform {
			delete(c.teams, id)
			delete(c.lastWeek, id)
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *controller) GetTeam(teamID string) (*model.FantasyTeam, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	team, ok := c.teams[teamID]
	if !ok {
		return nil, ErrTeamNotFound
	}

	// Registry entries are mutated under c.mu, so callers get a copy
	// they can read lock-free.
	t := *team
	return &t, nil
}

func (c *controller) ListTeams() []*model.FantasyTeam {
	c.mu.Lock()
	defer c.mu.Unlock()

	teams := make([]*model.FantasyTeam, 0, len(c.teams))
	for _, t := range c.teams {
		team := *t
		teams = append(teams, &team)
	}
	return teams
}

func (c *controller) GetTeamLineup(ctx context.Context, teamID string, week int) (*model.Lineup, error) {
	if !model.ValidWeek(week) {
		return nil, fmt.Errorf("invalid week %d", week)
	}

	team, err := c.GetTeam(teamID)
	if err != nil {
		return nil, err
	}

	return getPlatformAdapter(team.Platform, c).getLineup(ctx, team, week)
}

func (c *controller) UpdateTeamLineup(ctx context.Context, teamID string, week int, partial map[model.Slot]model.Player) (bool, error) {
	if !model.ValidWeek(week) {
		return false, fmt.Errorf("invalid week %d", week)
	}

	team, err := c.GetTeam(teamID)
	if err != nil {
		return false, err
	}

	return getPlatformAdapter(team.Platform, c).updateLineup(ctx, team, week, partial)
}

func (c *controller) SyncTeam(ctx context.Context, teamID string, week int) model.SyncResult {
	result := model.SyncResult{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		Timestamp: c.clock.Now().UTC(),
	}

	team, err := c.GetTeam(teamID)
	if err != nil {
		result.Message = err.Error()
		return result
	}
	result.Platform = team.Platform

	lineup, err := c.GetTeamLineup(ctx, teamID, week)
	if err != nil {
		result.Message = err.Error()
		return result
	}

	c.mu.Lock()
	if stored, ok := c.teams[teamID]; ok {
		stored.LastSync = result.Timestamp
	}
	c.lastWeek[teamID] = week
	c.mu.Unlock()

	result.Success = true
	result.Message = fmt.Sprintf("synced %d starters for week %d", len(lineup.Starters), week)
	return result
}

func (c *controller) RunPeriodicSyncs(frequency time.Duration, shutdown chan bool, wg *sync.WaitGroup) {
	ticker := time.NewTicker(frequency)
	defer ticker.Stop()
	defer wg.Done()

	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			c.mu.Lock()
			weeks := make(map[string]int, len(c.teams))
			for id := range c.teams {
				weeks[id] = c.lastWeek[id]
			}
			c.mu.Unlock()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			for id, week := range weeks {
				if result := c.SyncTeam(ctx, id, week); !result.Success {
					log.Printf("error syncing %s: %s", id, result.Message)
				}
			}
			cancel()
		}
	}
}

// credential reads one stored connect credential for a platform.
func (c *controller) credential(platform, key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds[platform][key]
}

// rawTeamID strips the platform prefix back off for adapter calls.
func rawTeamID(team *model.FantasyTeam) string {
	return strings.TrimPrefix(team.ID, team.Platform+"-")
}

// connectWeek is the week a fresh connection loads its lineup for.
func connectWeek(credentials map[string]string) int {
	if w, err := strconv.Atoi(credentials["week"]); err == nil && model.ValidWeek(w) {
		return w
	}
	return model.WeekMin
}

// When we need to make calls that are specific to a platform, grab a
// platform adapter and it will do it. This is internal to the
// controller package.
type platformAdapter interface {
	requiredCredentials() []string
	connect(ctx context.Context, credentials map[string]string) (*model.FantasyTeam, *model.Lineup, error)
	getLineup(ctx context.Context, team *model.FantasyTeam, week int) (*model.Lineup, error)
	updateLineup(ctx context.Context, team *model.FantasyTeam, week int, partial map[model.Slot]model.Player) (bool, error)
	disconnect(ctx context.Context) error
}

func getPlatformAdapter(platform string, c *controller) platformAdapter {
	switch platform {
	case model.PlatformSleeper:
		return &sleeperAdapter{c}
	case model.PlatformYahoo:
		return &yahooAdapter{c}
	case model.PlatformESPN:
		return &espnAdapter{c}
	default:
		return &nilPlatformAdapter{err: &platformerr.UnsupportedPlatformError{Platform: platform}}
	}
}

// nilPlatformAdapter exists so that we can always return an adapter and
// simplify the usage. It eliminates the need for an extra error check.
type nilPlatformAdapter struct {
	err error
}

func (a *nilPlatformAdapter) requiredCredentials() []string {
	return nil
}

func (a *nilPlatformAdapter) connect(ctx context.Context, credentials map[string]string) (*model.FantasyTeam, *model.Lineup, error) {
	return nil, nil, a.err
}

func (a *nilPlatformAdapter) getLineup(ctx context.Context, team *model.FantasyTeam, week int) (*model.Lineup, error) {
	return nil, a.err
}

func (a *nilPlatformAdapter) updateLineup(ctx context.Context, team *model.FantasyTeam, week int, partial map[model.Slot]model.Player) (bool, error) {
	return false, a.err
}

func (a *nilPlatformAdapter) disconnect(ctx context.Context) error {
	return a.err
}
