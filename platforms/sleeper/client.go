// Package sleeper talks to the public Sleeper API. Sleeper has no auth
// for reads, so Authenticate always succeeds and every operation is a
// plain JSON GET.
package sleeper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/morganjb52/ffb/model"
	"github.com/morganjb52/ffb/platforms/platformerr"
)

const SleeperURL = "https://api.sleeper.app"

const fetchTimeout = 8 * time.Second

type Client interface {
	Authenticate(ctx context.Context) error
	GetLeague(ctx context.Context, leagueID string, season int) (*model.LeagueSnapshot, error)
	GetTeamLineup(ctx context.Context, leagueID, teamID string, week, season int) (*model.Lineup, error)
	UpdateLineup(ctx context.Context, leagueID, teamID string, week int, partial map[model.Slot]model.Player) (bool, error)
}

type client struct {
	url        string
	httpClient *http.Client
}

func New() (Client, error) {
	return &client{
		url: SleeperURL,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}, nil
}

func NewForTest(url string) Client {
	return &client{
		url: url,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Authenticate is a no-op. The Sleeper read API is public.
func (c *client) Authenticate(ctx context.Context) error {
	return nil
}

func (c *client) GetLeague(ctx context.Context, leagueID string, season int) (*model.LeagueSnapshot, error) {
	var league sleeperLeague
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/league/%s", leagueID), &league); err != nil {
		return nil, c.fetchErr(leagueID, "", err)
	}
	if league.LeagueID == "" {
		return nil, &platformerr.NotFoundError{Platform: model.PlatformSleeper, Kind: "league", ID: leagueID}
	}

	var users []sleeperUser
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/league/%s/users", leagueID), &users); err != nil {
		return nil, c.fetchErr(leagueID, "", err)
	}

	var rosters []sleeperRoster
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/league/%s/rosters", leagueID), &rosters); err != nil {
		return nil, c.fetchErr(leagueID, "", err)
	}

	return buildSnapshot(leagueID, &league, users, rosters), nil
}

func (c *client) GetTeamLineup(ctx context.Context, leagueID, teamID string, week, season int) (*model.Lineup, error) {
	var league sleeperLeague
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/league/%s", leagueID), &league); err != nil {
		return nil, c.fetchErr(leagueID, teamID, err)
	}
	if league.LeagueID == "" {
		return nil, &platformerr.NotFoundError{Platform: model.PlatformSleeper, Kind: "league", ID: leagueID}
	}

	var rosters []sleeperRoster
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/league/%s/rosters", leagueID), &rosters); err != nil {
		return nil, c.fetchErr(leagueID, teamID, err)
	}

	roster := findRoster(rosters, teamID)
	if roster == nil {
		return nil, &platformerr.NotFoundError{Platform: model.PlatformSleeper, Kind: "team", ID: teamID}
	}

	var directory map[string]sleeperPlayer
	if err := c.getJSON(ctx, "/v1/players/nfl", &directory); err != nil {
		return nil, c.fetchErr(leagueID, teamID, err)
	}

	// Actual points come from the week's matchups, projections from the
	// projections feed. Both are best-effort: a missing feed just means
	// zero points, not a failed lineup.
	actuals := c.weekActuals(ctx, leagueID, teamID, week)
	projections := c.weekProjections(ctx, season, week)

	lineup := assembleLineup(&league, roster, directory, actuals, projections, leagueID, teamID, week, season)
	lineup.LastUpdated = time.Now().UTC()
	return lineup, nil
}

// UpdateLineup reports false: Sleeper exposes no public lineup write
// API. This is degraded functionality, not an error.
func (c *client) UpdateLineup(ctx context.Context, leagueID, teamID string, week int, partial map[model.Slot]model.Player) (bool, error) {
	return false, nil
}

func (c *client) weekActuals(ctx context.Context, leagueID, teamID string, week int) map[string]float64 {
	var matchups []sleeperMatchup
	if err := c.getJSON(ctx, fmt.Sprintf("/v1/league/%s/matchups/%d", leagueID, week), &matchups); err != nil {
		log.Printf("no sleeper matchup data for league %s week %d: %v", leagueID, week, err)
		return nil
	}

	for _, m := range matchups {
		if fmt.Sprintf("%d", m.RosterID) == teamID {
			return m.PlayersPoints
		}
	}
	return nil
}

func (c *client) weekProjections(ctx context.Context, season, week int) map[string]sleeperProjection {
	var projections map[string]sleeperProjection
	path := fmt.Sprintf("/projections/nfl/regular/%d/%d", season, week)
	if err := c.getJSON(ctx, path, &projections); err != nil {
		log.Printf("no sleeper projections for season %d week %d: %v", season, week, err)
		return nil
	}
	return projections
}

func (c *client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s%s", c.url, path), nil)
	if err != nil {
		return fmt.Errorf("error creating http request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error parsing response from sleeper: %w", err)
	}
	return nil
}

func (c *client) fetchErr(leagueID, teamID string, err error) error {
	return &platformerr.FetchError{
		Platform: model.PlatformSleeper,
		LeagueID: leagueID,
		TeamID:   teamID,
		Timeout:  isTimeout(err),
		Err:      err,
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
